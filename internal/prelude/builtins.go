package prelude

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattwparas/Rucket/internal/ir"
)

// builtins returns the host procedures available to manifests and scenarios
// by name.
func builtins() []ir.Callable {
	return []ir.Callable{
		ir.NewFunc("identity", 1, func(_ context.Context, args []ir.Value) (ir.Value, error) {
			return args[0], nil
		}),
		ir.NewFunc("+", ir.Variadic, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			var total int64
			for i, arg := range args {
				n, err := intArg(ctx, "+", i, arg)
				if err != nil {
					return nil, err
				}
				total += n
			}
			return ir.NewInt(total), nil
		}),
		intBinary("sum", func(x, y int64) ir.Value { return ir.NewInt(x + y) }),
		intBinary("sum-is-ten?", func(x, y int64) ir.Value { return ir.NewBool(x+y == 10) }),
		intBinary("max", func(x, y int64) ir.Value { return ir.NewInt(max(x, y)) }),
		intUnary("add1", func(n int64) ir.Value { return ir.NewInt(n + 1) }),
		intUnary("sub1", func(n int64) ir.Value { return ir.NewInt(n - 1) }),
		intUnary("double", func(n int64) ir.Value { return ir.NewInt(n * 2) }),
		intUnary("square", func(n int64) ir.Value { return ir.NewInt(n * n) }),
		intUnary("negate", func(n int64) ir.Value { return ir.NewInt(-n) }),
		intUnary("number->string", func(n int64) ir.Value { return ir.NewString(fmt.Sprint(n)) }),
		ir.NewFunc("not", 1, func(_ context.Context, args []ir.Value) (ir.Value, error) {
			return ir.NewBool(!ir.Truthy(args[0])), nil
		}),
		ir.NewFunc("list", ir.Variadic, func(_ context.Context, args []ir.Value) (ir.Value, error) {
			return ir.NewList(args...), nil
		}),
		ir.NewFunc("length", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			list, ok := args[0].(ir.List)
			if !ok {
				return nil, typeError(ctx, "length", 0, "list", args[0])
			}
			return ir.NewInt(int64(len(list))), nil
		}),
		ir.NewFunc("string-length", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			s, ok := args[0].(ir.String)
			if !ok {
				return nil, typeError(ctx, "string-length", 0, "string", args[0])
			}
			return ir.NewInt(int64(len([]rune(string(s))))), nil
		}),
		ir.NewFunc("string-upcase", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			s, ok := args[0].(ir.String)
			if !ok {
				return nil, typeError(ctx, "string-upcase", 0, "string", args[0])
			}
			return ir.NewString(strings.ToUpper(string(s))), nil
		}),
		ir.NewFunc("hash-keys", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			m, ok := args[0].(ir.Map)
			if !ok {
				return nil, typeError(ctx, "hash-keys", 0, "map", args[0])
			}
			keys := make([]ir.Value, len(m))
			for i, p := range m {
				keys[i] = p.Key
			}
			return ir.NewList(keys...), nil
		}),
		ir.NewFunc("call-with-two", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			f, err := procArg(ctx, "call-with-two", 0, args[0])
			if err != nil {
				return nil, err
			}
			return f.Call(ctx, []ir.Value{ir.NewInt(2)})
		}),
		// (lambda (f) (+ 1 (f 2)))
		ir.NewFunc("add1-after-two", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			f, err := procArg(ctx, "add1-after-two", 0, args[0])
			if err != nil {
				return nil, err
			}
			out, err := f.Call(ctx, []ir.Value{ir.NewInt(2)})
			if err != nil {
				return nil, err
			}
			n, err := intArg(ctx, "add1-after-two", 0, out)
			if err != nil {
				return nil, err
			}
			return ir.NewInt(n + 1), nil
		}),
		ir.NewFunc("map", 2, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			f, err := procArg(ctx, "map", 0, args[0])
			if err != nil {
				return nil, err
			}
			list, ok := args[1].(ir.List)
			if !ok {
				return nil, typeError(ctx, "map", 1, "list", args[1])
			}
			out := make([]ir.Value, len(list))
			for i, elem := range list {
				if out[i], err = f.Call(ctx, []ir.Value{elem}); err != nil {
					return nil, err
				}
			}
			return ir.NewList(out...), nil
		}),
		ir.NewFunc("make-adder", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			n, err := intArg(ctx, "make-adder", 0, args[0])
			if err != nil {
				return nil, err
			}
			return ir.NewProc(intUnary("", func(x int64) ir.Value { return ir.NewInt(x + n) })), nil
		}),
		ir.NewFunc("make-stringifier", 0, func(context.Context, []ir.Value) (ir.Value, error) {
			return ir.NewProc(intUnary("", func(x int64) ir.Value { return ir.NewString(fmt.Sprint(x)) })), nil
		}),
		ir.NewFunc("compose", 2, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			f, err := procArg(ctx, "compose", 0, args[0])
			if err != nil {
				return nil, err
			}
			g, err := procArg(ctx, "compose", 1, args[1])
			if err != nil {
				return nil, err
			}
			return ir.NewProc(ir.NewFunc("", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
				inner, err := g.Call(ctx, args)
				if err != nil {
					return nil, err
				}
				return f.Call(ctx, []ir.Value{inner})
			})), nil
		}),
	}
}

func intUnary(name string, fn func(int64) ir.Value) *ir.Func {
	return ir.NewFunc(name, 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
		n, err := intArg(ctx, name, 0, args[0])
		if err != nil {
			return nil, err
		}
		return fn(n), nil
	})
}

func intBinary(name string, fn func(x, y int64) ir.Value) *ir.Func {
	return ir.NewFunc(name, 2, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
		x, err := intArg(ctx, name, 0, args[0])
		if err != nil {
			return nil, err
		}
		y, err := intArg(ctx, name, 1, args[1])
		if err != nil {
			return nil, err
		}
		return fn(x, y), nil
	})
}

func intArg(ctx context.Context, fn string, pos int, v ir.Value) (int64, error) {
	n, ok := v.(ir.Int)
	if !ok {
		return 0, typeError(ctx, fn, pos, "integer", v)
	}
	return int64(n), nil
}

func procArg(ctx context.Context, fn string, pos int, v ir.Value) (ir.Callable, error) {
	f, ok := ir.AsCallable(v)
	if !ok {
		return nil, typeError(ctx, fn, pos, "procedure", v)
	}
	return f, nil
}

func typeError(ctx context.Context, fn string, pos int, want string, got ir.Value) error {
	if fn == "" {
		fn = "#<procedure>"
	}
	return ir.NewError(ir.ErrType,
		fmt.Sprintf("%s: argument %d: expected %s, found %s", fn, pos, want, ir.Format(got)),
		ir.LocationFrom(ctx))
}
