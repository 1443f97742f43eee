package contract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattwparas/Rucket/internal/ir"
)

func TestBinder_Defaults(t *testing.T) {
	b := NewBinder()
	assert.True(t, b.Enabled())
	assert.NotNil(t, b.logger)
	assert.Equal(t, ir.NoLocation, b.defaultLoc)
}

func TestBind_Disabled(t *testing.T) {
	b := newTestBinder(WithEnabled(false))
	fn, err := b.Bind(intIntBool(), sum, "test")
	require.NoError(t, err)
	assert.Same(t, sum, fn, "disabled binder returns the callable unchanged")

	out, err := call(t, fn, ir.NewInt(5), ir.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, ir.NewInt(10), out)
}

func TestBind_NameFallsBackToCallable(t *testing.T) {
	fn, err := newTestBinder().Bind(intIntBool(), sumIsTen, "")
	require.NoError(t, err)
	assert.Equal(t, "sum-is-ten", fn.Name())
	assert.Equal(t, 2, fn.Arity())
}

func TestBind_Rejects(t *testing.T) {
	b := newTestBinder()

	_, err := b.Bind(nil, sum, "test")
	assert.True(t, IsMalformedContract(err))

	_, err = b.Bind(intIntBool(), nil, "test")
	assert.Error(t, err)
}

func TestBind_PackageLevel(t *testing.T) {
	fn, err := Bind(intIntBool(), sumIsTen, "test")
	require.NoError(t, err)
	_, ok := Attached(fn)
	assert.True(t, ok)
}

func TestBind_StampsTopLevelContractUntouched(t *testing.T) {
	c := applyEvenContract()
	fn, err := newTestBinder().Bind(c, applyEven(2), "apply-even")
	require.NoError(t, err)

	attached, ok := Attached(fn)
	require.True(t, ok)
	assert.NotSame(t, c, attached)
	assert.Nil(t, attached.Site())

	nested := attached.Args()[0].(*Procedure)
	require.NotNil(t, nested.Site())
	assert.Equal(t, "argument 0 of apply-even", nested.Site().String())

	assert.Nil(t, c.Args()[0].(*Procedure).Site(), "caller's contract is not mutated")
}

func TestBind_RebindRecordsParent(t *testing.T) {
	b := newTestBinder()
	first := NewProcedure([]Contract{Integer, Integer}, Integer)
	second := intIntBool()

	inner, err := b.Bind(first, sum, "sum")
	require.NoError(t, err)
	outer, err := b.Bind(second, inner, "test")
	require.NoError(t, err)

	attached, _ := Attached(outer)
	lineage := Lineage(attached)
	require.Len(t, lineage, 1)
	assert.Equal(t, Render(first), Render(lineage[0]))

	// Both contracts still enforce: the inner result passes integer? and
	// the outer one rejects it.
	_, err = call(t, outer, ir.NewInt(1), ir.NewInt(2))
	ve, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, "test", ve.Function)
	assert.Equal(t, ErrCodeResultViolation, ve.Code)
}

func TestBind_ReporterFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &recorder{err: errors.New("disk full")}

	b := NewBinder(WithReporter(rec), WithLogger(logger))
	fn, err := b.Bind(intIntBool(), sumIsTen, "test")
	require.NoError(t, err)

	_, err = call(t, fn, ir.NewString("a"), ir.NewInt(1))
	assert.True(t, IsArgumentViolation(err), "reporter failure never replaces the violation")
	assert.Len(t, rec.violations, 1)
	assert.Contains(t, logs.String(), "contract violation")
	assert.Contains(t, logs.String(), "failed to report contract violation")
	assert.Contains(t, logs.String(), "disk full")
}

// ============================================================================
// Introspection
// ============================================================================

func TestDescribe(t *testing.T) {
	assert.Equal(t, "sum : no contract", Describe(sum))

	b := newTestBinder()
	fn, err := b.Bind(intIntBool(), sumIsTen, "test")
	require.NoError(t, err)
	assert.Equal(t, "test : (-> integer? integer? boolean?)", Describe(fn))

	again, err := b.Bind(NewProcedure([]Contract{Any, Any}, Any), fn, "loose")
	require.NoError(t, err)
	assert.Equal(t,
		"loose : (-> any/c any/c any/c)\n  composed over:\n    (-> integer? integer? boolean?)",
		Describe(again))
}

func TestDescribe_ArgumentWrapper(t *testing.T) {
	var received ir.Callable
	impl := ir.NewFunc("impl", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
		received, _ = ir.AsCallable(args[0])
		return ir.NewInt(0), nil
	})
	fn, err := newTestBinder().Bind(applyEvenContract(), impl, "apply-even")
	require.NoError(t, err)

	_, err = call(t, fn, ir.NewProc(add1))
	require.NoError(t, err)
	assert.Equal(t, "add1 : (-> even? odd?)\n  attached at: argument 0 of apply-even", Describe(received))
}

func TestAttachedValue(t *testing.T) {
	fn, err := newTestBinder().Bind(intIntBool(), sumIsTen, "test")
	require.NoError(t, err)

	c, ok := AttachedValue(ir.NewProc(fn))
	require.True(t, ok)
	assert.Equal(t, "(-> integer? integer? boolean?)", Render(c))

	_, ok = AttachedValue(ir.NewInt(1))
	assert.False(t, ok)
	_, ok = AttachedValue(ir.NewProc(sum))
	assert.False(t, ok)
}

func TestWrapped_String(t *testing.T) {
	fn, err := newTestBinder().Bind(intIntBool(), sumIsTen, "test")
	require.NoError(t, err)
	assert.Equal(t, "#<contracted-procedure:test (-> integer? integer? boolean?)>", fn.(*Wrapped).String())
}
