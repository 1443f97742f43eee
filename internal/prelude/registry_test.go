package prelude

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
)

func callNamed(t *testing.T, r *Registry, name string, args ...ir.Value) (ir.Value, error) {
	t.Helper()
	fn, ok := r.Procedure(name)
	require.True(t, ok, "procedure %s not registered", name)
	return fn.Call(context.Background(), args)
}

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	p, ok := r.Predicate("integer?")
	require.True(t, ok)
	assert.Same(t, contract.Integer, p)

	assert.Contains(t, r.PredicateNames(), "even?")
	assert.Contains(t, r.ProcedureNames(), "sum-is-ten?")
	assert.NotContains(t, r.ProcedureNames(), "bind/c", "primitives need Install")
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	r.RegisterPredicate(contract.Flat("tiny?", func(ir.Value) bool { return true }))
	_, ok := r.Predicate("tiny?")
	assert.True(t, ok)

	err := r.RegisterProcedure(ir.NewFunc("", 0, nil))
	assert.Error(t, err)
}

func TestRegistry_Resolver(t *testing.T) {
	resolve := NewRegistry().Resolver()

	fn, ok := resolve("add1")
	require.True(t, ok)
	assert.Equal(t, "add1", fn.Name())

	pred, ok := resolve("even?")
	require.True(t, ok)
	out, err := pred.Call(context.Background(), []ir.Value{ir.NewInt(4)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewBool(true), out)

	_, ok = resolve("missing")
	assert.False(t, ok)
}

func TestBuiltins_Arithmetic(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		args []ir.Value
		want ir.Value
	}{
		{"sum-is-ten?", []ir.Value{ir.NewInt(5), ir.NewInt(5)}, ir.NewBool(true)},
		{"sum-is-ten?", []ir.Value{ir.NewInt(5), ir.NewInt(4)}, ir.NewBool(false)},
		{"sum", []ir.Value{ir.NewInt(5), ir.NewInt(5)}, ir.NewInt(10)},
		{"+", []ir.Value{ir.NewInt(1), ir.NewInt(2), ir.NewInt(3)}, ir.NewInt(6)},
		{"+", nil, ir.NewInt(0)},
		{"add1", []ir.Value{ir.NewInt(1)}, ir.NewInt(2)},
		{"double", []ir.Value{ir.NewInt(3)}, ir.NewInt(6)},
		{"max", []ir.Value{ir.NewInt(3), ir.NewInt(9)}, ir.NewInt(9)},
		{"number->string", []ir.Value{ir.NewInt(42)}, ir.NewString("42")},
		{"not", []ir.Value{ir.NewBool(false)}, ir.NewBool(true)},
		{"length", []ir.Value{ir.NewList(ir.NewInt(1), ir.NewInt(2))}, ir.NewInt(2)},
		{"string-length", []ir.Value{ir.NewString("h\u00e9llo")}, ir.NewInt(5)},
		{"hash-keys", []ir.Value{ir.NewMap(ir.P(ir.NewSymbol("a"), ir.NewInt(1)))}, ir.NewList(ir.NewSymbol("a"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := callNamed(t, r, tt.name, tt.args...)
			require.NoError(t, err)
			assert.True(t, ir.Equal(tt.want, got), "got %s", ir.Format(got))
		})
	}
}

func TestBuiltins_TypeErrors(t *testing.T) {
	r := NewRegistry()

	_, err := callNamed(t, r, "add1", ir.NewString("a"))
	require.Error(t, err)
	var hostErr *ir.Error
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, ir.ErrType, hostErr.Kind)
	assert.Equal(t, `add1: argument 0: expected integer, found "a"`, hostErr.Message)

	_, err = callNamed(t, r, "add1")
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, ir.ErrArity, hostErr.Kind)
}

func TestBuiltins_HigherOrder(t *testing.T) {
	r := NewRegistry()
	add1, _ := r.Procedure("add1")
	double, _ := r.Procedure("double")

	out, err := callNamed(t, r, "call-with-two", ir.NewProc(double))
	require.NoError(t, err)
	assert.Equal(t, ir.NewInt(4), out)

	out, err = callNamed(t, r, "add1-after-two", ir.NewProc(add1))
	require.NoError(t, err)
	assert.Equal(t, ir.NewInt(4), out)

	out, err = callNamed(t, r, "map", ir.NewProc(double), ir.NewList(ir.NewInt(1), ir.NewInt(2)))
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.NewList(ir.NewInt(2), ir.NewInt(4)), out))

	adder, err := callNamed(t, r, "make-adder", ir.NewInt(10))
	require.NoError(t, err)
	fn, ok := ir.AsCallable(adder)
	require.True(t, ok)
	out, err = fn.Call(context.Background(), []ir.Value{ir.NewInt(5)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewInt(15), out)

	composed, err := callNamed(t, r, "compose", ir.NewProc(double), ir.NewProc(add1))
	require.NoError(t, err)
	fn, _ = ir.AsCallable(composed)
	out, err = fn.Call(context.Background(), []ir.Value{ir.NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewInt(8), out)
}
