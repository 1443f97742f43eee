package ir

import (
	"context"
	"fmt"
)

// Variadic is the arity reported by callables that accept any number of arguments.
const Variadic = -1

// Callable is the uniform calling convention of the host runtime.
//
// Implementations must be comparable (pointer receivers) so procedure values
// can be compared by identity.
type Callable interface {
	// Name returns the display name used in diagnostics. May be empty.
	Name() string

	// Arity returns the declared number of parameters, or Variadic.
	Arity() int

	// Call invokes the callable. Errors propagate to the caller unchanged.
	Call(ctx context.Context, args []Value) (Value, error)
}

// Func is a Callable backed by a Go function.
type Func struct {
	name  string
	arity int
	fn    func(ctx context.Context, args []Value) (Value, error)
}

// NewFunc creates a host procedure with a fixed arity (or Variadic).
// Argument counts are checked before fn runs.
func NewFunc(name string, arity int, fn func(ctx context.Context, args []Value) (Value, error)) *Func {
	return &Func{name: name, arity: arity, fn: fn}
}

// Name implements Callable.
func (f *Func) Name() string { return f.name }

// Arity implements Callable.
func (f *Func) Arity() int { return f.arity }

// Call implements Callable.
func (f *Func) Call(ctx context.Context, args []Value) (Value, error) {
	if f.arity != Variadic && len(args) != f.arity {
		return nil, NewError(ErrArity,
			fmt.Sprintf("%s expects %d arguments, found %d", f.name, f.arity, len(args)),
			LocationFrom(ctx))
	}
	return f.fn(ctx, args)
}

// Predicate adapts a Go boolean function to a one-argument host procedure.
func Predicate(name string, pred func(Value) bool) *Func {
	return NewFunc(name, 1, func(_ context.Context, args []Value) (Value, error) {
		return Bool(pred(args[0])), nil
	})
}
