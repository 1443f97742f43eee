package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattwparas/Rucket/internal/ir"
)

func satisfies(t *testing.T, c *Atomic, v ir.Value) bool {
	t.Helper()
	violation, err := c.Check(context.Background(), v)
	require.NoError(t, err)
	return violation == nil
}

func TestBuiltins(t *testing.T) {
	proc := ir.NewProc(ir.NewFunc("f", 0, nil))

	tests := []struct {
		c    *Atomic
		pass ir.Value
		fail ir.Value
	}{
		{Integer, ir.NewInt(1), ir.NewString("1")},
		{String, ir.NewString("s"), ir.NewSymbol("s")},
		{Symbol, ir.NewSymbol("s"), ir.NewString("s")},
		{Boolean, ir.NewBool(false), ir.NewInt(0)},
		{List, ir.NewList(), ir.NewMap()},
		{Map, ir.NewMap(), ir.NewList()},
		{Null, ir.Null{}, ir.NewList()},
		{Proc, proc, ir.NewSymbol("f")},
		{Even, ir.NewInt(4), ir.NewInt(3)},
		{Odd, ir.NewInt(-3), ir.NewInt(0)},
		{Positive, ir.NewInt(1), ir.NewInt(0)},
		{Negative, ir.NewInt(-1), ir.NewInt(0)},
		{Zero, ir.NewInt(0), ir.NewInt(1)},
		{NonNegative, ir.NewInt(0), ir.NewInt(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.c.Name(), func(t *testing.T) {
			assert.True(t, satisfies(t, tt.c, tt.pass))
			assert.False(t, satisfies(t, tt.c, tt.fail))
		})
	}

	assert.True(t, satisfies(t, Any, ir.Null{}))
	assert.Len(t, Builtins(), 15)
}

func TestListOf(t *testing.T) {
	c := ListOf(Integer)
	assert.Equal(t, "list-of(integer?)", c.Name())

	assert.True(t, satisfies(t, c, ir.NewList()))
	assert.True(t, satisfies(t, c, ir.NewList(ir.NewInt(1), ir.NewInt(2))))
	assert.False(t, satisfies(t, c, ir.NewList(ir.NewInt(1), ir.NewString("a"))))
	assert.False(t, satisfies(t, c, ir.NewInt(1)))
}

func TestNonEmptyListOf(t *testing.T) {
	c := NonEmptyListOf(Symbol)
	assert.Equal(t, "non-empty-list-of(symbol?)", c.Name())

	assert.False(t, satisfies(t, c, ir.NewList()))
	assert.True(t, satisfies(t, c, ir.NewList(ir.NewSymbol("a"))))
}

func TestMapOf(t *testing.T) {
	c := MapOf(Symbol, Integer)
	assert.Equal(t, "map-of(symbol?, integer?)", c.Name())

	good := ir.NewMap(ir.P(ir.NewSymbol("a"), ir.NewInt(1)), ir.P(ir.NewSymbol("b"), ir.NewInt(2)))
	badKey := ir.NewMap(ir.P(ir.NewString("a"), ir.NewInt(1)))
	badValue := ir.NewMap(ir.P(ir.NewSymbol("a"), ir.NewString("1")))

	assert.True(t, satisfies(t, c, good))
	assert.True(t, satisfies(t, c, ir.NewMap()))
	assert.False(t, satisfies(t, c, badKey))
	assert.False(t, satisfies(t, c, badValue))
	assert.False(t, satisfies(t, c, ir.NewList()))
}

func TestAndOrNot(t *testing.T) {
	evenPositive := And(Even, Positive)
	assert.Equal(t, "and(even?, positive?)", evenPositive.Name())
	assert.True(t, satisfies(t, evenPositive, ir.NewInt(2)))
	assert.False(t, satisfies(t, evenPositive, ir.NewInt(-2)))

	strOrSym := Or(String, Symbol)
	assert.Equal(t, "or(string?, symbol?)", strOrSym.Name())
	assert.True(t, satisfies(t, strOrSym, ir.NewSymbol("x")))
	assert.False(t, satisfies(t, strOrSym, ir.NewInt(1)))

	notNull := Not(Null)
	assert.Equal(t, "not(null?)", notNull.Name())
	assert.True(t, satisfies(t, notNull, ir.NewInt(1)))
	assert.False(t, satisfies(t, notNull, ir.Null{}))
}

func TestAnd_ShortCircuits(t *testing.T) {
	calls := 0
	counting := Flat("counting", func(ir.Value) bool {
		calls++
		return true
	})

	assert.False(t, satisfies(t, And(Integer, counting), ir.NewString("x")))
	assert.Equal(t, 0, calls)
}

func TestCombinators_PropagatePredicateErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := FromCallable(ir.NewFunc("failing?", 1, func(context.Context, []ir.Value) (ir.Value, error) {
		return nil, boom
	}), "")

	for _, c := range []*Atomic{ListOf(failing), Or(failing), Not(failing), MapOf(Any, failing)} {
		var v ir.Value = ir.NewList(ir.NewInt(1))
		if c.Name() == "map-of(any/c, failing?)" {
			v = ir.NewMap(ir.P(ir.NewInt(1), ir.NewInt(2)))
		}
		_, err := c.Check(context.Background(), v)
		assert.ErrorIs(t, err, boom, c.Name())
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		c    *Atomic
		name string
		pass []int64
		fail []int64
	}{
		{GreaterThan(5), "greater-than(5)", []int64{6}, []int64{5, 4}},
		{LessThan(5), "less-than(5)", []int64{4}, []int64{5}},
		{AtLeast(5), "at-least(5)", []int64{5, 6}, []int64{4}},
		{AtMost(5), "at-most(5)", []int64{5, -1}, []int64{6}},
		{Between(1, 10), "between(1, 10)", []int64{1, 10, 5}, []int64{0, 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.c.Name())
			for _, n := range tt.pass {
				assert.True(t, satisfies(t, tt.c, ir.NewInt(n)), "%d", n)
			}
			for _, n := range tt.fail {
				assert.False(t, satisfies(t, tt.c, ir.NewInt(n)), "%d", n)
			}
			assert.False(t, satisfies(t, tt.c, ir.NewString("5")))
		})
	}
}

func TestOneOf(t *testing.T) {
	c := OneOf(ir.NewSymbol("red"), ir.NewSymbol("green"), ir.NewInt(3))
	assert.Equal(t, "one-of('red, 'green, 3)", c.Name())

	assert.True(t, satisfies(t, c, ir.NewSymbol("green")))
	assert.True(t, satisfies(t, c, ir.NewInt(3)))
	assert.False(t, satisfies(t, c, ir.NewString("red")))
}
