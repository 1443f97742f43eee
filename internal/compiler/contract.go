package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/mattwparas/Rucket/internal/ir"
)

// Compile error codes (E101-E104).
const (
	ErrCodeMissingResult     = "E101" // procedure contract without result
	ErrCodeUnknownCombinator = "E102" // struct key is not a combinator
	ErrCodeBadOperand        = "E103" // operand has the wrong shape
	ErrCodeFloatBound        = "E104" // float where an integer is required
)

// CompileManifest compiles every entry of the top-level "contract" struct,
// in declaration order. A manifest without one yields no specs.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`contract: test: { args: ["integer?"], result: "boolean?" }`)
//	specs, err := CompileManifest(v)
func CompileManifest(v cue.Value) ([]ir.ContractSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	contractsVal := v.LookupPath(cue.ParsePath("contract"))
	if !contractsVal.Exists() {
		return nil, nil
	}

	iter, err := contractsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.ContractSpec
	for iter.Next() {
		spec, err := CompileContract(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// CompileContract parses one contract declaration into a ContractSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the declaration struct itself, e.g. the value at
// path contract.test. Its label becomes the contract name.
func CompileContract(v cue.Value) (*ir.ContractSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.ContractSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].Unquoted()
	}

	var err error
	if spec.Doc, err = optionalString(v, "doc"); err != nil {
		return nil, err
	}
	if spec.Impl, err = optionalString(v, "impl"); err != nil {
		return nil, err
	}

	expr, err := compileProcedure(v, "contract."+spec.Name)
	if err != nil {
		return nil, err
	}
	spec.Expr = expr

	return spec, nil
}

// compileExpr converts one contract expression:
//
//	"integer?"                          predicate name
//	{args: [...], result: ...}          procedure contract
//	{"list-of": "integer?"}             combinator (single key)
func compileExpr(v cue.Value, field string) (ir.ContractExpr, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		name, err := v.String()
		if err != nil {
			return ir.ContractExpr{}, formatCUEError(err)
		}
		return ir.PredicateExpr(name), nil
	case cue.StructKind:
		if isProcedure(v) {
			return compileProcedure(v, field)
		}
		return compileCombinator(v, field)
	default:
		return ir.ContractExpr{}, &CompileError{
			Code:    ErrCodeBadOperand,
			Field:   field,
			Message: fmt.Sprintf("contract expression must be a predicate name, procedure or combinator, found %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func isProcedure(v cue.Value) bool {
	return v.LookupPath(cue.ParsePath("args")).Exists() || v.LookupPath(cue.ParsePath("result")).Exists()
}

// compileProcedure parses args (optional) and result (required).
func compileProcedure(v cue.Value, field string) (ir.ContractExpr, error) {
	resultVal := v.LookupPath(cue.ParsePath("result"))
	if !resultVal.Exists() {
		return ir.ContractExpr{}, &CompileError{
			Code:    ErrCodeMissingResult,
			Field:   field + ".result",
			Message: "procedure contract result is required",
			Pos:     v.Pos(),
		}
	}

	expr := ir.ContractExpr{Kind: ir.ExprProcedure}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		iter, err := argsVal.List()
		if err != nil {
			return ir.ContractExpr{}, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			arg, err := compileExpr(iter.Value(), fmt.Sprintf("%s.args[%d]", field, i))
			if err != nil {
				return ir.ContractExpr{}, err
			}
			expr.Args = append(expr.Args, arg)
		}
	}

	result, err := compileExpr(resultVal, field+".result")
	if err != nil {
		return ir.ContractExpr{}, err
	}
	expr.Result = &result

	return expr, nil
}

// compileCombinator parses a single-key struct naming a combinator.
func compileCombinator(v cue.Value, field string) (ir.ContractExpr, error) {
	iter, err := v.Fields()
	if err != nil {
		return ir.ContractExpr{}, formatCUEError(err)
	}

	var name string
	var operand cue.Value
	count := 0
	for iter.Next() {
		name, operand = iter.Selector().Unquoted(), iter.Value()
		count++
	}
	if count != 1 {
		return ir.ContractExpr{}, &CompileError{
			Code:    ErrCodeUnknownCombinator,
			Field:   field,
			Message: fmt.Sprintf("combinator struct must have exactly one key, found %d", count),
			Pos:     v.Pos(),
		}
	}

	shape, ok := ir.ValidCombinators[name]
	if !ok {
		return ir.ContractExpr{}, &CompileError{
			Code:    ErrCodeUnknownCombinator,
			Field:   field,
			Message: fmt.Sprintf("unknown combinator %q", name),
			Pos:     v.Pos(),
		}
	}

	field = field + "." + name
	expr := ir.ContractExpr{Kind: ir.ExprCombinator, Name: name}

	switch {
	case shape.Bounds == 1:
		n, err := intOperand(operand, field)
		if err != nil {
			return ir.ContractExpr{}, err
		}
		expr.Bounds = []int64{n}

	case shape.Bounds > 1:
		items, err := listOperand(operand, field, shape.Bounds)
		if err != nil {
			return ir.ContractExpr{}, err
		}
		for i, item := range items {
			n, err := intOperand(item, fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return ir.ContractExpr{}, err
			}
			expr.Bounds = append(expr.Bounds, n)
		}

	case shape.Literals:
		items, err := listOperand(operand, field, -1)
		if err != nil {
			return ir.ContractExpr{}, err
		}
		for i, item := range items {
			lit, err := literal(item, fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return ir.ContractExpr{}, err
			}
			expr.Literals = append(expr.Literals, lit)
		}

	case shape.Operands == 1:
		op, err := compileExpr(operand, field)
		if err != nil {
			return ir.ContractExpr{}, err
		}
		expr.Operands = []ir.ContractExpr{op}

	default:
		items, err := listOperand(operand, field, shape.Operands)
		if err != nil {
			return ir.ContractExpr{}, err
		}
		for i, item := range items {
			op, err := compileExpr(item, fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return ir.ContractExpr{}, err
			}
			expr.Operands = append(expr.Operands, op)
		}
	}

	return expr, nil
}

// listOperand returns the elements of a list operand. want < 0 accepts any
// non-empty list.
func listOperand(v cue.Value, field string, want int) ([]cue.Value, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Code:    ErrCodeBadOperand,
			Field:   field,
			Message: "operand must be a list",
			Pos:     v.Pos(),
		}
	}
	var items []cue.Value
	for iter.Next() {
		items = append(items, iter.Value())
	}
	if (want < 0 && len(items) == 0) || (want >= 0 && len(items) != want) {
		expected := fmt.Sprintf("%d", want)
		if want < 0 {
			expected = "at least 1"
		}
		return nil, &CompileError{
			Code:    ErrCodeBadOperand,
			Field:   field,
			Message: fmt.Sprintf("expected %s operands, found %d", expected, len(items)),
			Pos:     v.Pos(),
		}
	}
	return items, nil
}

// intOperand reads an integer bound. Floats are forbidden.
func intOperand(v cue.Value, field string) (int64, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return 0, formatCUEError(err)
		}
		return n, nil
	case cue.FloatKind, cue.NumberKind:
		return 0, &CompileError{
			Code:    ErrCodeFloatBound,
			Field:   field,
			Message: "float bounds are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return 0, &CompileError{
			Code:    ErrCodeBadOperand,
			Field:   field,
			Message: fmt.Sprintf("bound must be an int, found %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// literal converts a one-of literal into the plain Go form ir.FromGo accepts.
// Symbols are written as {sym: "name"}.
func literal(v cue.Value, field string) (any, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		return intOperand(v, field)
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil
	case cue.StructKind:
		sym, err := optionalString(v, ir.TagSymbol)
		if err != nil {
			return nil, err
		}
		if sym != "" {
			return map[string]any{ir.TagSymbol: sym}, nil
		}
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Code:    ErrCodeFloatBound,
			Field:   field,
			Message: "float literals are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	}
	return nil, &CompileError{
		Code:    ErrCodeBadOperand,
		Field:   field,
		Message: "literal must be a string, int, bool or {sym: name}",
		Pos:     v.Pos(),
	}
}

func optionalString(v cue.Value, name string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(name))
	if !fieldVal.Exists() {
		return "", nil
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
