package contract

import (
	"context"
	"fmt"
	"slices"

	"github.com/mattwparas/Rucket/internal/ir"
)

// Contract is a sealed interface over the two contract variants:
// *Atomic and *Procedure.
type Contract interface {
	fmt.Stringer
	contract() // Sealed - only Atomic and Procedure implement it
}

// Violation is the sentinel result of a failed check. A nil *Violation
// means the check passed. Violations are never raised by the checking
// primitive itself; callers attach position and blame before escalating.
type Violation struct {
	Message string
}

// Atomic is a contract checkable by one predicate applied to one value.
type Atomic struct {
	name string
	pred func(ctx context.Context, v ir.Value) (bool, error)
}

func (*Atomic) contract() {}

// Name returns the display name.
func (a *Atomic) Name() string { return a.name }

// String implements fmt.Stringer.
func (a *Atomic) String() string { return a.name }

// Flat creates an atomic contract from a Go predicate.
func Flat(name string, pred func(ir.Value) bool) *Atomic {
	return &Atomic{
		name: name,
		pred: func(_ context.Context, v ir.Value) (bool, error) {
			return pred(v), nil
		},
	}
}

// FromCallable creates an atomic contract from any unary host callable.
// The callable's result is interpreted by truthiness; its errors propagate
// out of Check unchanged. An empty name falls back to the callable's name.
func FromCallable(fn ir.Callable, name string) *Atomic {
	if name == "" {
		name = fn.Name()
	}
	if name == "" {
		name = "anonymous-predicate"
	}
	return &Atomic{
		name: name,
		pred: func(ctx context.Context, v ir.Value) (bool, error) {
			out, err := fn.Call(ctx, []ir.Value{v})
			if err != nil {
				return false, err
			}
			return ir.Truthy(out), nil
		},
	}
}

// MakeAtomic builds an atomic contract from a predicate-like value.
//
// An existing *Atomic is returned unchanged (no re-wrapping) and name is
// ignored. Go predicates, host callables and procedure values are wrapped.
// Anything else is a MALFORMED_CONTRACT error.
func MakeAtomic(v any, name string) (*Atomic, error) {
	switch p := v.(type) {
	case *Atomic:
		return p, nil
	case func(ir.Value) bool:
		return Flat(name, p), nil
	case ir.Callable:
		return FromCallable(p, name), nil
	case ir.Proc:
		if p.Fn != nil {
			return FromCallable(p.Fn, name), nil
		}
	case ir.Opaque:
		if a, ok := p.Payload.(*Atomic); ok {
			return a, nil
		}
	}
	return nil, NewMalformedError(fmt.Sprintf("cannot build an atomic contract from %s", describeAny(v)))
}

// Check applies the predicate to v. It is pure whenever the predicate is.
// Returns nil when v satisfies the contract.
func (a *Atomic) Check(ctx context.Context, v ir.Value) (*Violation, error) {
	ok, err := a.pred(ctx, v)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}
	return &Violation{Message: fmt.Sprintf("expected %s, found %s", a.name, ir.Format(v))}, nil
}

// Procedure is a contract over a callable: ordered argument contracts, one
// result contract, an optional binding site and the parent contracts
// recording prior compositions.
type Procedure struct {
	args    []Contract
	result  Contract
	site    *Site
	parents []*Procedure
}

func (*Procedure) contract() {}

// String implements fmt.Stringer using Render.
func (p *Procedure) String() string { return Render(p) }

// NewProcedure creates a procedure contract. No validation is performed;
// arity and values are only checked at call time.
func NewProcedure(args []Contract, result Contract) *Procedure {
	return &Procedure{args: slices.Clone(args), result: result}
}

// MakeProcedure builds a procedure contract from an ordered list of
// sub-contracts: the last element is the result contract and all preceding
// elements are argument contracts. Each element is coerced with Coerce.
func MakeProcedure(parts ...any) (*Procedure, error) {
	if len(parts) == 0 {
		return nil, NewMalformedError("procedure contract missing result position")
	}
	contracts := make([]Contract, len(parts))
	for i, part := range parts {
		c, err := Coerce(part)
		if err != nil {
			return nil, err
		}
		contracts[i] = c
	}
	last := len(contracts) - 1
	return NewProcedure(contracts[:last], contracts[last]), nil
}

// Make mirrors the make/c primitive: a contract is returned unchanged, a
// (predicate, name) pair builds an atomic contract, and anything else is
// treated as the parts of a procedure contract.
func Make(parts ...any) (Contract, error) {
	if len(parts) == 0 {
		return nil, NewMalformedError("make/c given no arguments")
	}
	if c, ok := asContract(parts[0]); ok && len(parts) == 1 {
		return c, nil
	}
	if len(parts) == 2 {
		if name, ok := nameOf(parts[1]); ok && isPredicateLike(parts[0]) {
			return MakeAtomic(parts[0], name)
		}
	}
	return MakeProcedure(parts...)
}

// Coerce converts a contract-like value into a Contract. Contracts pass
// through unchanged; predicate-like values become atomic contracts named
// after the callable. Anything else is a MALFORMED_CONTRACT error, never a
// silent pass.
func Coerce(v any) (Contract, error) {
	if c, ok := asContract(v); ok {
		return c, nil
	}
	if isPredicateLike(v) {
		return MakeAtomic(v, "")
	}
	return nil, NewMalformedError(fmt.Sprintf("expected a contract, found %s", describeAny(v)))
}

// Args returns a copy of the argument contracts.
func (p *Procedure) Args() []Contract { return slices.Clone(p.args) }

// Arity returns the number of argument contracts.
func (p *Procedure) Arity() int { return len(p.args) }

// Result returns the result contract.
func (p *Procedure) Result() Contract { return p.result }

// Site returns the binding site, or nil when the contract was never attached
// at an argument or result position.
func (p *Procedure) Site() *Site {
	if p.site == nil {
		return nil
	}
	s := *p.site
	return &s
}

// Parents returns the contracts this one was composed over, nearest first.
func (p *Procedure) Parents() []*Procedure { return slices.Clone(p.parents) }

// withSite returns a structural copy stamped with site. Nested procedure
// contracts are left as they are; Bind stamps them separately.
func (p *Procedure) withSite(site Site) *Procedure {
	cp := *p
	cp.site = &site
	return &cp
}

// withParent returns a copy with parent prepended to the parent list.
func (p *Procedure) withParent(parent *Procedure) *Procedure {
	cp := *p
	cp.parents = append([]*Procedure{parent}, p.parents...)
	return &cp
}

// stampNested returns a copy whose nested procedure contracts carry
// ARGUMENT/RESULT binding sites naming the function they were bound to.
func (p *Procedure) stampNested(name string) *Procedure {
	cp := *p
	cp.args = make([]Contract, len(p.args))
	for i, arg := range p.args {
		if nested, ok := arg.(*Procedure); ok && nested != nil {
			cp.args[i] = nested.withSite(Site{Kind: SiteArgument, Name: name, Position: i})
			continue
		}
		cp.args[i] = arg
	}
	if nested, ok := p.result.(*Procedure); ok && nested != nil {
		cp.result = nested.withSite(Site{Kind: SiteResult, Name: name, Position: -1})
	}
	return &cp
}

// isContract reports whether c is usable; nil interfaces and nil
// *Atomic or *Procedure pointers are malformed.
func isContract(c Contract) bool {
	_, ok := asContract(c)
	return ok
}

func asContract(v any) (Contract, bool) {
	switch c := v.(type) {
	case *Atomic:
		return c, c != nil
	case *Procedure:
		return c, c != nil
	case ir.Opaque:
		return asContract(c.Payload)
	}
	return nil, false
}

func isPredicateLike(v any) bool {
	switch p := v.(type) {
	case func(ir.Value) bool, ir.Callable:
		return true
	case ir.Proc:
		return p.Fn != nil
	}
	return false
}

func nameOf(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case ir.Symbol:
		return string(n), true
	case ir.String:
		return string(n), true
	}
	return "", false
}

func describeAny(v any) string {
	if val, ok := v.(ir.Value); ok {
		return ir.Format(val)
	}
	return fmt.Sprintf("%T", v)
}
