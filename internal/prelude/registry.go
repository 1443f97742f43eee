package prelude

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
)

// Registry maps names to predicates and procedures.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	predicates map[string]*contract.Atomic
	procedures map[string]ir.Callable
}

// NewRegistry creates a registry holding the builtin predicates and
// procedures. Contract primitives are added by Install.
func NewRegistry() *Registry {
	r := &Registry{
		predicates: make(map[string]*contract.Atomic),
		procedures: make(map[string]ir.Callable),
	}
	for _, p := range contract.Builtins() {
		r.predicates[p.Name()] = p
	}
	for _, fn := range builtins() {
		r.procedures[fn.Name()] = fn
	}
	return r
}

// RegisterPredicate adds or replaces a named predicate.
func (r *Registry) RegisterPredicate(p *contract.Atomic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[p.Name()] = p
}

// RegisterProcedure adds or replaces a named procedure.
// Returns an error for unnamed callables.
func (r *Registry) RegisterProcedure(fn ir.Callable) error {
	if fn.Name() == "" {
		return fmt.Errorf("register procedure: callable has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procedures[fn.Name()] = fn
	return nil
}

// Predicate looks up a named predicate.
func (r *Registry) Predicate(name string) (*contract.Atomic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.predicates[name]
	return p, ok
}

// Procedure looks up a named procedure.
func (r *Registry) Procedure(name string) (ir.Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.procedures[name]
	return fn, ok
}

// Resolver adapts Procedure to ir.Resolver. Predicates resolve too, as
// their one-argument procedure form.
func (r *Registry) Resolver() ir.Resolver {
	return func(name string) (ir.Callable, bool) {
		if fn, ok := r.Procedure(name); ok {
			return fn, true
		}
		if p, ok := r.Predicate(name); ok {
			return predicateProcedure(p), true
		}
		return nil, false
	}
}

// PredicateNames returns registered predicate names in sorted order.
func (r *Registry) PredicateNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.predicates)
}

// ProcedureNames returns registered procedure names in sorted order.
func (r *Registry) ProcedureNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.procedures)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// predicateProcedure exposes an atomic contract as a one-argument procedure
// returning a boolean.
func predicateProcedure(p *contract.Atomic) ir.Callable {
	return ir.NewFunc(p.Name(), 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
		v, err := p.Check(ctx, args[0])
		if err != nil {
			return nil, err
		}
		return ir.NewBool(v == nil), nil
	})
}
