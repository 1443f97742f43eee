package compiler

import (
	"fmt"
	"strings"

	"github.com/mattwparas/Rucket/internal/ir"
)

// ImplCycle reports contracts whose impl references form a cycle.
//
// A contract whose impl names another contract in the same manifest is
// layered over that contract's bound callable, so both stay enforced.
// Layering must be acyclic: there is nothing to bind first.
type ImplCycle struct {
	Path    []string `json:"path"`    // e.g. ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
}

func (c ImplCycle) Error() string {
	return c.Message
}

// BindOrder returns contract names ordered so that every contract comes
// after the contract its impl layers over. Ties keep declaration order.
//
// The algorithm:
//  1. Build the contract → layered-over-contract graph from impl fields
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// Tarjan emits components dependencies-first, which is the bind order.
func BindOrder(specs []ir.ContractSpec) ([]string, []ImplCycle) {
	graph, nodes := buildLayerGraph(specs)

	var order []string
	var cycles []ImplCycle
	for _, scc := range tarjanSCC(graph, nodes) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, sccToCycle(scc, graph))
			continue
		}
		order = append(order, scc[0])
	}
	return order, cycles
}

// layerGraph maps contract name → the contract it layers over (at most one).
type layerGraph map[string][]string

func buildLayerGraph(specs []ir.ContractSpec) (layerGraph, []string) {
	declared := make(map[string]bool, len(specs))
	for _, spec := range specs {
		declared[spec.Name] = true
	}

	graph := make(layerGraph, len(specs))
	nodes := make([]string, 0, len(specs))
	for _, spec := range specs {
		if _, seen := graph[spec.Name]; seen {
			continue
		}
		nodes = append(nodes, spec.Name)
		graph[spec.Name] = []string{}
		if declared[spec.Impl] {
			graph[spec.Name] = append(graph[spec.Name], spec.Impl)
		}
	}
	return graph, nodes
}

func hasSelfLoop(node string, graph layerGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm,
// visiting roots in the given node order so the result is deterministic.
func tarjanSCC(graph layerGraph, nodes []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// Root node: pop the component.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToCycle(scc []string, graph layerGraph) ImplCycle {
	if len(scc) == 1 {
		name := scc[0]
		return ImplCycle{
			Path:    []string{name, name},
			Message: fmt.Sprintf("contract %s layers over itself", name),
		}
	}

	path := cyclePath(scc, graph)
	return ImplCycle{
		Path:    path,
		Message: fmt.Sprintf("impl cycle detected: %s", strings.Join(path, " -> ")),
	}
}

// cyclePath follows edges inside the SCC from its first member back to it.
// Each node has a single outgoing edge, so the walk is unique.
func cyclePath(scc []string, graph layerGraph) []string {
	start := scc[len(scc)-1]
	path := []string{start}
	current := start
	for range scc {
		next := graph[current][0]
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
