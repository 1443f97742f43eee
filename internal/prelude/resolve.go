package prelude

import (
	"fmt"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
)

// ResolveError reports a contract expression that cannot be turned into a
// contract. Path locates the offending node, e.g. "args[0].result".
type ResolveError struct {
	Path    string
	Message string
}

func (e *ResolveError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Resolve turns a declarative contract expression into a contract.
func (r *Registry) Resolve(e ir.ContractExpr) (contract.Contract, error) {
	return r.resolve(e, "")
}

// ResolveProcedure resolves e and requires a procedure contract, as Bind does.
func (r *Registry) ResolveProcedure(e ir.ContractExpr) (*contract.Procedure, error) {
	c, err := r.Resolve(e)
	if err != nil {
		return nil, err
	}
	p, ok := c.(*contract.Procedure)
	if !ok {
		return nil, &ResolveError{Message: fmt.Sprintf("expected a procedure contract, found %s", contract.Render(c))}
	}
	return p, nil
}

func (r *Registry) resolve(e ir.ContractExpr, path string) (contract.Contract, error) {
	switch e.Kind {
	case ir.ExprPredicate:
		p, ok := r.Predicate(e.Name)
		if !ok {
			return nil, &ResolveError{Path: path, Message: fmt.Sprintf("unknown predicate %q", e.Name)}
		}
		return p, nil

	case ir.ExprProcedure:
		if e.Result == nil {
			return nil, &ResolveError{Path: path, Message: "procedure contract missing result position"}
		}
		args := make([]contract.Contract, len(e.Args))
		for i, arg := range e.Args {
			c, err := r.resolve(arg, join(path, fmt.Sprintf("args[%d]", i)))
			if err != nil {
				return nil, err
			}
			args[i] = c
		}
		result, err := r.resolve(*e.Result, join(path, "result"))
		if err != nil {
			return nil, err
		}
		return contract.NewProcedure(args, result), nil

	case ir.ExprCombinator:
		return r.resolveCombinator(e, path)

	default:
		return nil, &ResolveError{Path: path, Message: fmt.Sprintf("unknown expression kind %q", e.Kind)}
	}
}

func (r *Registry) resolveCombinator(e ir.ContractExpr, path string) (contract.Contract, error) {
	shape, ok := ir.ValidCombinators[e.Name]
	if !ok {
		return nil, &ResolveError{Path: path, Message: fmt.Sprintf("unknown combinator %q", e.Name)}
	}
	path = join(path, e.Name)

	if shape.Bounds > 0 {
		if len(e.Bounds) != shape.Bounds {
			return nil, &ResolveError{Path: path, Message: fmt.Sprintf("expected %d bounds, found %d", shape.Bounds, len(e.Bounds))}
		}
		switch e.Name {
		case "greater-than":
			return contract.GreaterThan(e.Bounds[0]), nil
		case "less-than":
			return contract.LessThan(e.Bounds[0]), nil
		case "at-least":
			return contract.AtLeast(e.Bounds[0]), nil
		case "at-most":
			return contract.AtMost(e.Bounds[0]), nil
		case "between":
			if e.Bounds[0] > e.Bounds[1] {
				return nil, &ResolveError{Path: path, Message: fmt.Sprintf("empty interval [%d, %d]", e.Bounds[0], e.Bounds[1])}
			}
			return contract.Between(e.Bounds[0], e.Bounds[1]), nil
		}
	}

	if shape.Literals {
		if len(e.Literals) == 0 {
			return nil, &ResolveError{Path: path, Message: "one-of needs at least one literal"}
		}
		lits := make([]ir.Value, len(e.Literals))
		for i, lit := range e.Literals {
			v, err := ir.FromGo(lit, nil)
			if err != nil {
				return nil, &ResolveError{Path: fmt.Sprintf("%s[%d]", path, i), Message: err.Error()}
			}
			lits[i] = v
		}
		return contract.OneOf(lits...), nil
	}

	if (shape.Operands == -1 && len(e.Operands) == 0) || (shape.Operands > 0 && len(e.Operands) != shape.Operands) {
		return nil, &ResolveError{Path: path, Message: fmt.Sprintf("wrong number of operands: %d", len(e.Operands))}
	}
	ops := make([]*contract.Atomic, len(e.Operands))
	for i, operand := range e.Operands {
		opPath := fmt.Sprintf("%s[%d]", path, i)
		c, err := r.resolve(operand, opPath)
		if err != nil {
			return nil, err
		}
		atomic, ok := c.(*contract.Atomic)
		if !ok {
			return nil, &ResolveError{Path: opPath, Message: fmt.Sprintf("%s only combines atomic contracts, found %s", e.Name, contract.Render(c))}
		}
		ops[i] = atomic
	}

	switch e.Name {
	case "list-of":
		return contract.ListOf(ops[0]), nil
	case "non-empty-list-of":
		return contract.NonEmptyListOf(ops[0]), nil
	case "map-of":
		return contract.MapOf(ops[0], ops[1]), nil
	case "and":
		return contract.And(ops...), nil
	case "or":
		return contract.Or(ops...), nil
	case "not":
		return contract.Not(ops[0]), nil
	}
	return nil, &ResolveError{Path: path, Message: fmt.Sprintf("unsupported combinator %q", e.Name)}
}

func join(path, elem string) string {
	if path == "" {
		return elem
	}
	return path + "." + elem
}
