package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mattwparas/Rucket/internal/ir"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SumIsTen returns a two-argument callable reporting whether its integer
// arguments add up to 10.
func SumIsTen() *ir.Func {
	return ir.NewFunc("sum-is-ten", 2, func(_ context.Context, args []ir.Value) (ir.Value, error) {
		a, b, err := twoInts("sum-is-ten", args)
		if err != nil {
			return nil, err
		}
		return ir.NewBool(a+b == 10), nil
	})
}

// Sum returns a two-argument callable that adds its integer arguments.
// Bound under a boolean result contract it breaks its own contract.
func Sum() *ir.Func {
	return ir.NewFunc("sum", 2, func(_ context.Context, args []ir.Value) (ir.Value, error) {
		a, b, err := twoInts("sum", args)
		if err != nil {
			return nil, err
		}
		return ir.NewInt(a + b), nil
	})
}

// Const returns a callable of the given arity that ignores its arguments.
func Const(name string, arity int, v ir.Value) *ir.Func {
	return ir.NewFunc(name, arity, func(context.Context, []ir.Value) (ir.Value, error) {
		return v, nil
	})
}

func twoInts(fn string, args []ir.Value) (int64, int64, error) {
	a, ok := args[0].(ir.Int)
	if !ok {
		return 0, 0, ir.NewError(ir.ErrType, fmt.Sprintf("%s: expected integer, found %s", fn, ir.Format(args[0])), ir.NoLocation)
	}
	b, ok := args[1].(ir.Int)
	if !ok {
		return 0, 0, ir.NewError(ir.ErrType, fmt.Sprintf("%s: expected integer, found %s", fn, ir.Format(args[1])), ir.NoLocation)
	}
	return int64(a), int64(b), nil
}
