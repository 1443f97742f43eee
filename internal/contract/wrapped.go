package contract

import (
	"fmt"
	"strings"

	"github.com/mattwparas/Rucket/internal/ir"
)

// Wrapped pairs a procedure contract with the callable it guards.
// It is itself a Callable; see verify.go for the call-time algorithm.
type Wrapped struct {
	contract *Procedure
	fn       ir.Callable
	name     string
	loc      ir.Location
	binder   *Binder
}

// Name implements ir.Callable.
func (w *Wrapped) Name() string { return w.name }

// Arity implements ir.Callable. A wrapper declares one parameter per
// argument contract.
func (w *Wrapped) Arity() int { return w.contract.Arity() }

// Contract returns the attached procedure contract.
func (w *Wrapped) Contract() *Procedure { return w.contract }

// Underlying returns the guarded callable, which may itself be wrapped.
func (w *Wrapped) Underlying() ir.Callable { return w.fn }

// String implements fmt.Stringer.
func (w *Wrapped) String() string {
	return fmt.Sprintf("#<contracted-procedure:%s %s>", displayName(w.name), Render(w.contract))
}

// Attached returns the contract attached to fn, if fn is a wrapped callable.
func Attached(fn ir.Callable) (*Procedure, bool) {
	w, ok := fn.(*Wrapped)
	if !ok || w == nil {
		return nil, false
	}
	return w.contract, true
}

// AttachedValue is Attached for procedure values.
func AttachedValue(v ir.Value) (*Procedure, bool) {
	fn, ok := ir.AsCallable(v)
	if !ok {
		return nil, false
	}
	return Attached(fn)
}

// Lineage returns every ancestor of p in depth-first order, nearest first.
// The parent relation is acyclic by construction, so this terminates.
func Lineage(p *Procedure) []*Procedure {
	var out []*Procedure
	var walk func(*Procedure)
	walk = func(c *Procedure) {
		for _, parent := range c.parents {
			out = append(out, parent)
			walk(parent)
		}
	}
	walk(p)
	return out
}

// Describe renders the effective contract of fn and its composition
// history for help and introspection commands.
func Describe(fn ir.Callable) string {
	c, ok := Attached(fn)
	if !ok {
		return fmt.Sprintf("%s : no contract", displayName(fn.Name()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s : %s", displayName(fn.Name()), Render(c))
	if site := c.Site(); site != nil {
		fmt.Fprintf(&b, "\n  attached at: %s", site)
	}
	if lineage := Lineage(c); len(lineage) > 0 {
		b.WriteString("\n  composed over:")
		for _, parent := range lineage {
			fmt.Fprintf(&b, "\n    %s", Render(parent))
			if site := parent.Site(); site != nil {
				fmt.Fprintf(&b, " (%s)", site)
			}
		}
	}
	return b.String()
}
