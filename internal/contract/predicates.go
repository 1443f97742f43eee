package contract

import "github.com/mattwparas/Rucket/internal/ir"

// Builtin atomic contracts over host values.
var (
	Any       = Flat("any/c", func(ir.Value) bool { return true })
	Integer   = Flat("integer?", isType[ir.Int])
	String    = Flat("string?", isType[ir.String])
	Symbol    = Flat("symbol?", isType[ir.Symbol])
	Boolean   = Flat("boolean?", isType[ir.Bool])
	List      = Flat("list?", isType[ir.List])
	Map       = Flat("map?", isType[ir.Map])
	Null      = Flat("null?", isType[ir.Null])
	Proc      = Flat("procedure?", func(v ir.Value) bool {
		_, ok := ir.AsCallable(v)
		return ok
	})

	Even        = Flat("even?", intPredicate(func(n int64) bool { return n%2 == 0 }))
	Odd         = Flat("odd?", intPredicate(func(n int64) bool { return n%2 != 0 }))
	Positive    = Flat("positive?", intPredicate(func(n int64) bool { return n > 0 }))
	Negative    = Flat("negative?", intPredicate(func(n int64) bool { return n < 0 }))
	Zero        = Flat("zero?", intPredicate(func(n int64) bool { return n == 0 }))
	NonNegative = Flat("non-negative?", intPredicate(func(n int64) bool { return n >= 0 }))
)

// Builtins returns the builtin atomic contracts in a stable order.
func Builtins() []*Atomic {
	return []*Atomic{
		Any, Integer, String, Symbol, Boolean, List, Map, Null, Proc,
		Even, Odd, Positive, Negative, Zero, NonNegative,
	}
}

func isType[T ir.Value](v ir.Value) bool {
	_, ok := v.(T)
	return ok
}

func intPredicate(pred func(int64) bool) func(ir.Value) bool {
	return func(v ir.Value) bool {
		n, ok := v.(ir.Int)
		return ok && pred(int64(n))
	}
}
