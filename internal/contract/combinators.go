package contract

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattwparas/Rucket/internal/ir"
)

// Combinators build atomic contracts from simpler atomic contracts. Each
// derives its display name from its constituents, e.g.
// "map-of(symbol?, integer?)", so diagnostics never re-derive names.

// ListOf accepts lists whose every element satisfies elem.
func ListOf(elem *Atomic) *Atomic {
	return &Atomic{
		name: fmt.Sprintf("list-of(%s)", elem.name),
		pred: func(ctx context.Context, v ir.Value) (bool, error) {
			list, ok := v.(ir.List)
			if !ok {
				return false, nil
			}
			return all(ctx, elem, list)
		},
	}
}

// NonEmptyListOf accepts non-empty lists whose every element satisfies elem.
func NonEmptyListOf(elem *Atomic) *Atomic {
	return &Atomic{
		name: fmt.Sprintf("non-empty-list-of(%s)", elem.name),
		pred: func(ctx context.Context, v ir.Value) (bool, error) {
			list, ok := v.(ir.List)
			if !ok || len(list) == 0 {
				return false, nil
			}
			return all(ctx, elem, list)
		},
	}
}

// MapOf accepts maps whose keys satisfy key and whose values satisfy value.
func MapOf(key, value *Atomic) *Atomic {
	return &Atomic{
		name: fmt.Sprintf("map-of(%s, %s)", key.name, value.name),
		pred: func(ctx context.Context, v ir.Value) (bool, error) {
			m, ok := v.(ir.Map)
			if !ok {
				return false, nil
			}
			for _, p := range m {
				if ok, err := key.pred(ctx, p.Key); err != nil || !ok {
					return false, err
				}
				if ok, err := value.pred(ctx, p.Value); err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		},
	}
}

// And accepts values satisfying every contract, checked left to right.
func And(cs ...*Atomic) *Atomic {
	return &Atomic{
		name: fmt.Sprintf("and(%s)", joinNames(cs)),
		pred: func(ctx context.Context, v ir.Value) (bool, error) {
			for _, c := range cs {
				if ok, err := c.pred(ctx, v); err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		},
	}
}

// Or accepts values satisfying at least one contract, checked left to right.
func Or(cs ...*Atomic) *Atomic {
	return &Atomic{
		name: fmt.Sprintf("or(%s)", joinNames(cs)),
		pred: func(ctx context.Context, v ir.Value) (bool, error) {
			for _, c := range cs {
				ok, err := c.pred(ctx, v)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		},
	}
}

// Not accepts values that do not satisfy c.
func Not(c *Atomic) *Atomic {
	return &Atomic{
		name: fmt.Sprintf("not(%s)", c.name),
		pred: func(ctx context.Context, v ir.Value) (bool, error) {
			ok, err := c.pred(ctx, v)
			return !ok && err == nil, err
		},
	}
}

// OneOf accepts values structurally equal to one of the literals.
func OneOf(literals ...ir.Value) *Atomic {
	names := make([]string, len(literals))
	for i, lit := range literals {
		names[i] = ir.Format(lit)
	}
	return Flat(fmt.Sprintf("one-of(%s)", strings.Join(names, ", ")), func(v ir.Value) bool {
		for _, lit := range literals {
			if ir.Equal(lit, v) {
				return true
			}
		}
		return false
	})
}

// GreaterThan accepts integers strictly greater than n.
func GreaterThan(n int64) *Atomic {
	return Flat(fmt.Sprintf("greater-than(%d)", n), intPredicate(func(x int64) bool { return x > n }))
}

// LessThan accepts integers strictly less than n.
func LessThan(n int64) *Atomic {
	return Flat(fmt.Sprintf("less-than(%d)", n), intPredicate(func(x int64) bool { return x < n }))
}

// AtLeast accepts integers greater than or equal to n.
func AtLeast(n int64) *Atomic {
	return Flat(fmt.Sprintf("at-least(%d)", n), intPredicate(func(x int64) bool { return x >= n }))
}

// AtMost accepts integers less than or equal to n.
func AtMost(n int64) *Atomic {
	return Flat(fmt.Sprintf("at-most(%d)", n), intPredicate(func(x int64) bool { return x <= n }))
}

// Between accepts integers in the closed interval [lo, hi].
func Between(lo, hi int64) *Atomic {
	return Flat(fmt.Sprintf("between(%d, %d)", lo, hi), intPredicate(func(x int64) bool { return lo <= x && x <= hi }))
}

func all(ctx context.Context, elem *Atomic, list ir.List) (bool, error) {
	for _, v := range list {
		if ok, err := elem.pred(ctx, v); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func joinNames(cs []*Atomic) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}
