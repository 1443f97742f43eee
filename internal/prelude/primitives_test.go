package prelude

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
)

func installed(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.Install(contract.NewBinder(contract.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	return r
}

func proc(t *testing.T, r *Registry, name string) ir.Value {
	t.Helper()
	fn, ok := r.Resolver()(name)
	require.True(t, ok, name)
	return ir.NewProc(fn)
}

func contractNamed(t *testing.T, r *Registry, name string) ir.Value {
	t.Helper()
	p, ok := r.Predicate(name)
	require.True(t, ok, name)
	return ContractValue(p)
}

// intIntBool builds (-> integer? integer? boolean?) through make-function/c.
func intIntBool(t *testing.T, r *Registry) ir.Value {
	t.Helper()
	c, err := callNamed(t, r, "make-function/c",
		contractNamed(t, r, "integer?"), contractNamed(t, r, "integer?"), contractNamed(t, r, "boolean?"))
	require.NoError(t, err)
	return c
}

func TestPrimitives_MakeC(t *testing.T) {
	r := installed(t)

	t.Run("contract passes through", func(t *testing.T) {
		in := contractNamed(t, r, "integer?")
		out, err := callNamed(t, r, "make/c", in)
		require.NoError(t, err)
		c, ok := AsContract(out)
		require.True(t, ok)
		assert.Same(t, contract.Integer, c)
	})

	t.Run("predicate and name", func(t *testing.T) {
		out, err := callNamed(t, r, "make/c", proc(t, r, "even?"), ir.NewSymbol("evenish"))
		require.NoError(t, err)
		s, err := callNamed(t, r, "contract->string", out)
		require.NoError(t, err)
		assert.Equal(t, ir.NewString("evenish"), s)
	})

	t.Run("procedure parts", func(t *testing.T) {
		out, err := callNamed(t, r, "make/c", contractNamed(t, r, "integer?"), proc(t, r, "even?"), contractNamed(t, r, "boolean?"))
		require.NoError(t, err)
		s, err := callNamed(t, r, "contract->string", out)
		require.NoError(t, err)
		assert.Equal(t, ir.NewString("(-> integer? even? boolean?)"), s)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := callNamed(t, r, "make/c", ir.NewInt(1), ir.NewInt(2))
		assert.True(t, contract.IsMalformedContract(err))
	})
}

func TestPrimitives_MakeFlatC(t *testing.T) {
	r := installed(t)

	out, err := callNamed(t, r, "make-flat/c", proc(t, r, "even?"), ir.NewSymbol("my-even"))
	require.NoError(t, err)
	c, ok := AsContract(out)
	require.True(t, ok)
	assert.Equal(t, "my-even", contract.Render(c))

	_, err = callNamed(t, r, "make-flat/c", proc(t, r, "even?"), ir.NewString("my-even"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected symbol")
}

func TestPrimitives_BindC(t *testing.T) {
	r := installed(t)
	c := intIntBool(t, r)

	bound, err := callNamed(t, r, "bind/c", c, proc(t, r, "sum-is-ten?"), ir.NewSymbol("test"))
	require.NoError(t, err)
	fn, ok := ir.AsCallable(bound)
	require.True(t, ok)
	assert.Equal(t, "test", fn.Name())

	out, err := fn.Call(context.Background(), []ir.Value{ir.NewInt(5), ir.NewInt(5)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewBool(true), out)

	_, err = fn.Call(context.Background(), []ir.Value{ir.NewString("a"), ir.NewInt(5)})
	assert.True(t, contract.IsArgumentViolation(err))

	of, err := callNamed(t, r, "contract-of", bound)
	require.NoError(t, err)
	s, err := callNamed(t, r, "contract->string", of)
	require.NoError(t, err)
	assert.Equal(t, ir.NewString("(-> integer? integer? boolean?)"), s)

	desc, err := callNamed(t, r, "describe", bound)
	require.NoError(t, err)
	assert.Equal(t, ir.NewString("test : (-> integer? integer? boolean?)"), desc)
}

func TestPrimitives_BindCLocation(t *testing.T) {
	r := installed(t)
	bound, err := callNamed(t, r, "bind/c", intIntBool(t, r), proc(t, r, "sum"), ir.NewSymbol("test"), ir.NewString("main.rkt:4:2"))
	require.NoError(t, err)

	fn, _ := ir.AsCallable(bound)
	_, err = fn.Call(context.Background(), []ir.Value{ir.NewInt(5), ir.NewInt(5)})
	ve, ok := contract.AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, contract.ErrCodeResultViolation, ve.Code)
	assert.Equal(t, ir.Location{Source: "main.rkt", Line: 4, Column: 2}, ve.Loc)
}

func TestPrimitives_BindCErrors(t *testing.T) {
	r := installed(t)

	_, err := callNamed(t, r, "bind/c", intIntBool(t, r))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind/c expects 2 to 4 arguments, found 1")

	_, err = callNamed(t, r, "bind/c", contractNamed(t, r, "integer?"), proc(t, r, "add1"))
	assert.True(t, contract.IsMalformedContract(err))

	_, err = callNamed(t, r, "bind/c", ir.NewInt(1), proc(t, r, "add1"))
	assert.True(t, contract.IsMalformedContract(err))

	_, err = callNamed(t, r, "bind/c", intIntBool(t, r), proc(t, r, "sum"), ir.NewSymbol("t"), ir.NewString("bogus"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid location")
}

func TestPrimitives_ContractOfPlain(t *testing.T) {
	r := installed(t)
	out, err := callNamed(t, r, "contract-of", proc(t, r, "add1"))
	require.NoError(t, err)
	assert.Equal(t, ir.NewBool(false), out)
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("C:/src/main.rkt:12:7")
	require.NoError(t, err)
	assert.Equal(t, ir.Location{Source: "C:/src/main.rkt", Line: 12, Column: 7}, loc)
	assert.Equal(t, "C:/src/main.rkt:12:7", loc.String())

	for _, bad := range []string{"main.rkt", "main.rkt:x:1", "main.rkt:1:0"} {
		_, err := ParseLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestContractValue_Format(t *testing.T) {
	assert.Equal(t, "#<contract:integer?>", ir.Format(ContractValue(contract.Integer)))
	_, ok := AsContract(ir.Opaque{Tag: "other", Payload: contract.Integer})
	assert.False(t, ok)
}
