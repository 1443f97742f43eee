package prelude

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
)

// ContractTag tags opaque values that carry a contract.
const ContractTag = "contract"

// ContractValue wraps c as a script value.
func ContractValue(c contract.Contract) ir.Opaque {
	return ir.Opaque{Tag: ContractTag, Payload: c}
}

// AsContract extracts the contract carried by a script value.
func AsContract(v ir.Value) (contract.Contract, bool) {
	o, ok := v.(ir.Opaque)
	if !ok || o.Tag != ContractTag {
		return nil, false
	}
	c, ok := o.Payload.(contract.Contract)
	return c, ok
}

// Install registers the contract primitives, bound to b, as procedures.
func (r *Registry) Install(b *contract.Binder) {
	for _, fn := range Primitives(b) {
		// Primitives are always named.
		_ = r.RegisterProcedure(fn)
	}
}

// Primitives returns the contract primitives exposed to scripts.
func Primitives(b *contract.Binder) []ir.Callable {
	return []ir.Callable{
		ir.NewFunc("make/c", ir.Variadic, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			c, err := contract.Make(parts(args)...)
			if err != nil {
				return nil, ir.AttachLocation(err, ir.LocationFrom(ctx))
			}
			return ContractValue(c), nil
		}),
		ir.NewFunc("make-flat/c", 2, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			name, ok := args[1].(ir.Symbol)
			if !ok {
				return nil, typeError(ctx, "make-flat/c", 1, "symbol", args[1])
			}
			c, err := contract.MakeAtomic(part(args[0]), string(name))
			if err != nil {
				return nil, ir.AttachLocation(err, ir.LocationFrom(ctx))
			}
			return ContractValue(c), nil
		}),
		ir.NewFunc("make-function/c", ir.Variadic, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			c, err := contract.MakeProcedure(parts(args)...)
			if err != nil {
				return nil, ir.AttachLocation(err, ir.LocationFrom(ctx))
			}
			return ContractValue(c), nil
		}),
		ir.NewFunc("bind/c", ir.Variadic, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			return bindPrimitive(ctx, b, args)
		}),
		ir.NewFunc("contract->string", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			c, ok := AsContract(args[0])
			if !ok {
				return nil, typeError(ctx, "contract->string", 0, "contract", args[0])
			}
			return ir.NewString(contract.Render(c)), nil
		}),
		ir.NewFunc("contract-of", 1, func(_ context.Context, args []ir.Value) (ir.Value, error) {
			c, ok := contract.AttachedValue(args[0])
			if !ok {
				return ir.NewBool(false), nil
			}
			return ContractValue(c), nil
		}),
		ir.NewFunc("describe", 1, func(ctx context.Context, args []ir.Value) (ir.Value, error) {
			fn, err := procArg(ctx, "describe", 0, args[0])
			if err != nil {
				return nil, err
			}
			return ir.NewString(contract.Describe(fn)), nil
		}),
	}
}

// bindPrimitive implements (bind/c contract function [name] [location]).
func bindPrimitive(ctx context.Context, b *contract.Binder, args []ir.Value) (ir.Value, error) {
	if len(args) < 2 || len(args) > 4 {
		return nil, ir.NewError(ir.ErrArity,
			fmt.Sprintf("bind/c expects 2 to 4 arguments, found %d", len(args)),
			ir.LocationFrom(ctx))
	}

	c, ok := AsContract(args[0])
	if !ok {
		return nil, ir.AttachLocation(
			contract.NewMalformedError(fmt.Sprintf("bind/c: expected a contract, found %s", ir.Format(args[0]))),
			ir.LocationFrom(ctx))
	}
	p, ok := c.(*contract.Procedure)
	if !ok {
		return nil, ir.AttachLocation(
			contract.NewMalformedError(fmt.Sprintf("bind/c: expected a procedure contract, found %s", contract.Render(c))),
			ir.LocationFrom(ctx))
	}
	fn, err := procArg(ctx, "bind/c", 1, args[1])
	if err != nil {
		return nil, err
	}

	var name string
	if len(args) >= 3 {
		switch n := args[2].(type) {
		case ir.Symbol:
			name = string(n)
		case ir.String:
			name = string(n)
		default:
			return nil, typeError(ctx, "bind/c", 2, "symbol", args[2])
		}
	}

	var opts []contract.BindOption
	if len(args) == 4 {
		s, ok := args[3].(ir.String)
		if !ok {
			return nil, typeError(ctx, "bind/c", 3, "string", args[3])
		}
		loc, err := ParseLocation(string(s))
		if err != nil {
			return nil, ir.NewError(ir.ErrType, "bind/c: "+err.Error(), ir.LocationFrom(ctx))
		}
		opts = append(opts, contract.WithCallSite(loc))
	} else if loc := ir.LocationFrom(ctx); loc.IsValid() {
		opts = append(opts, contract.WithCallSite(loc))
	}

	wrapped, err := b.Bind(p, fn, name, opts...)
	if err != nil {
		return nil, err
	}
	return ir.NewProc(wrapped), nil
}

// ParseLocation parses "source:line:column" (the format Location.String
// renders). Line and column must be positive.
func ParseLocation(s string) (ir.Location, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return ir.NoLocation, fmt.Errorf("invalid location %q: want source:line:column", s)
	}
	col, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || col <= 0 {
		return ir.NoLocation, fmt.Errorf("invalid column in location %q", s)
	}
	line, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || line <= 0 {
		return ir.NoLocation, fmt.Errorf("invalid line in location %q", s)
	}
	return ir.Location{
		Source: strings.Join(parts[:len(parts)-2], ":"),
		Line:   line,
		Column: col,
	}, nil
}

// part converts a script value into something contract.Make understands.
func part(v ir.Value) any {
	if c, ok := AsContract(v); ok {
		return c
	}
	return v
}

func parts(args []ir.Value) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = part(arg)
	}
	return out
}
