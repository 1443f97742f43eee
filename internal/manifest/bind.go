package manifest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mattwparas/Rucket/internal/compiler"
	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
	"github.com/mattwparas/Rucket/internal/prelude"
)

// Env holds the contracts of a manifest and the callables bound under
// them. Names resolve to bound contracts first, then to the registry.
//
// Thread-safety: Env is read-only after Bind and safe for concurrent use.
type Env struct {
	registry  *prelude.Registry
	binder    *contract.Binder
	specs     map[string]ir.ContractSpec
	contracts map[string]*contract.Procedure
	bound     map[string]ir.Callable
	order     []string
}

// BindError reports a manifest that cannot be bound.
type BindError struct {
	Contract string
	Message  string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %s", e.Contract, e.Message)
}

// Vocabulary exposes the registry's names to the compiler's validator.
func Vocabulary(reg *prelude.Registry) compiler.Vocabulary {
	return compiler.Vocabulary{
		Predicate: func(name string) bool {
			_, ok := reg.Predicate(name)
			return ok
		},
		Procedure: func(name string) bool {
			_, ok := reg.Procedure(name)
			return ok
		},
	}
}

// Bind resolves every contract in specs and binds each declared impl.
//
// A contract whose impl names another contract of the manifest is layered
// over that contract's bound callable, so it is bound after it. Contracts
// without an impl are resolved but left unbound.
func Bind(specs []ir.ContractSpec, reg *prelude.Registry, b *contract.Binder) (*Env, error) {
	order, cycles := compiler.BindOrder(specs)
	if len(cycles) > 0 {
		msgs := make([]string, len(cycles))
		for i, c := range cycles {
			msgs[i] = c.Message
		}
		return nil, &BindError{Contract: cycles[0].Path[0], Message: strings.Join(msgs, "; ")}
	}

	env := &Env{
		registry:  reg,
		binder:    b,
		specs:     make(map[string]ir.ContractSpec, len(specs)),
		contracts: make(map[string]*contract.Procedure, len(specs)),
		bound:     make(map[string]ir.Callable, len(specs)),
		order:     order,
	}
	for _, spec := range specs {
		if _, dup := env.specs[spec.Name]; dup {
			return nil, &BindError{Contract: spec.Name, Message: "duplicate contract name"}
		}
		env.specs[spec.Name] = spec
	}

	for _, name := range order {
		spec := env.specs[name]
		c, err := reg.ResolveProcedure(spec.Expr)
		if err != nil {
			return nil, &BindError{Contract: name, Message: err.Error()}
		}
		env.contracts[name] = c

		if spec.Impl == "" {
			continue
		}
		impl, ok := env.bound[spec.Impl]
		if !ok {
			impl, ok = reg.Procedure(spec.Impl)
		}
		if !ok {
			return nil, &BindError{Contract: name, Message: fmt.Sprintf("unknown implementation %q", spec.Impl)}
		}
		fn, err := b.Bind(c, impl, name)
		if err != nil {
			return nil, &BindError{Contract: name, Message: err.Error()}
		}
		env.bound[name] = fn
	}
	return env, nil
}

// Lookup returns the callable registered under name: a bound contract,
// or else a registry procedure.
func (e *Env) Lookup(name string) (ir.Callable, bool) {
	if fn, ok := e.bound[name]; ok {
		return fn, true
	}
	return e.registry.Resolver()(name)
}

// Resolver adapts Lookup to ir.Resolver for argument conversion.
func (e *Env) Resolver() ir.Resolver {
	return e.Lookup
}

// Contract returns the resolved contract declared under name.
func (e *Env) Contract(name string) (*contract.Procedure, bool) {
	c, ok := e.contracts[name]
	return c, ok
}

// Spec returns the compiled declaration of name.
func (e *Env) Spec(name string) (ir.ContractSpec, bool) {
	s, ok := e.specs[name]
	return s, ok
}

// Names returns the declared contract names in bind order.
func (e *Env) Names() []string {
	return append([]string(nil), e.order...)
}

// BoundNames returns the names of contracts with a bound impl, sorted.
func (e *Env) BoundNames() []string {
	names := make([]string, 0, len(e.bound))
	for name := range e.bound {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Binder returns the binder the environment was bound with.
func (e *Env) Binder() *contract.Binder {
	return e.binder
}

// Call invokes the callable registered under name.
func (e *Env) Call(ctx context.Context, name string, args []ir.Value) (ir.Value, error) {
	fn, ok := e.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown procedure %q", name)
	}
	return fn.Call(ctx, args)
}

// Describe renders the contract attached to name for a help listing.
// A disabled binder leaves callables uncontracted; the declared contract
// is shown instead.
func (e *Env) Describe(name string) (string, bool) {
	if fn, ok := e.bound[name]; ok {
		if _, attached := contract.Attached(fn); attached {
			return contract.Describe(fn), true
		}
	}
	c, ok := e.contracts[name]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s : %s", name, contract.Render(c)), true
}
