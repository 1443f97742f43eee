package compiler

import (
	"fmt"
	"strings"

	"github.com/mattwparas/Rucket/internal/ir"
)

// Validation error codes (E100-E199). E101-E104 are shared with CompileError.
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// ContractSpec errors (E105-E112)
	ErrDuplicateName     = "E105" // duplicate contract name
	ErrEmptyName         = "E106" // contract name is empty
	ErrNotProcedure      = "E107" // top-level contract must be a procedure
	ErrUnknownPredicate  = "E108" // predicate name not in the vocabulary
	ErrUnknownImpl       = "E109" // impl names no procedure or contract
	ErrInvalidCombinator = "E110" // combinator operands have the wrong shape
	ErrEmptyInterval     = "E111" // between bounds out of order
	ErrImplCycle         = "E112" // impl layering forms a cycle
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Vocabulary reports which names a manifest may reference. A nil lookup
// skips the corresponding check.
type Vocabulary struct {
	Predicate func(name string) bool
	Procedure func(name string) bool
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports ContractSpec and []ContractSpec.
func Validate(v any, vocab Vocabulary) []ValidationError {
	switch spec := v.(type) {
	case []ir.ContractSpec:
		return validateManifest(spec, vocab)
	case *ir.ContractSpec:
		return validateContractSpec(spec, vocab, nil)
	case ir.ContractSpec:
		return validateContractSpec(&spec, vocab, nil)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateManifest(specs []ir.ContractSpec, vocab Vocabulary) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(specs))
	for _, spec := range specs {
		declared[spec.Name] = true
	}

	seen := make(map[string]bool, len(specs))
	for i := range specs {
		spec := &specs[i]
		// E105: duplicate contract name
		if seen[spec.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("contract[%d].name", i),
				Message: fmt.Sprintf("duplicate contract name: %q", spec.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[spec.Name] = true
		errs = append(errs, validateContractSpec(spec, vocab, declared)...)
	}

	// E112: impl layering must be acyclic
	_, cycles := BindOrder(specs)
	for _, cycle := range cycles {
		errs = append(errs, ValidationError{
			Field:   "contract." + cycle.Path[0] + ".impl",
			Message: cycle.Message,
			Code:    ErrImplCycle,
		})
	}

	return errs
}

func validateContractSpec(spec *ir.ContractSpec, vocab Vocabulary, declared map[string]bool) []ValidationError {
	var errs []ValidationError
	field := "contract." + spec.Name

	// E106: name is required
	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "contract name is required and must be non-empty",
			Code:    ErrEmptyName,
		})
	}

	// E107: only procedure contracts can be bound
	if spec.Expr.Kind != ir.ExprProcedure {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("top-level contract must be a procedure contract, found %s", spec.Expr.Kind),
			Code:    ErrNotProcedure,
		})
	}

	// E109: impl must name a procedure or another contract
	if spec.Impl != "" && !declared[spec.Impl] && vocab.Procedure != nil && !vocab.Procedure(spec.Impl) {
		errs = append(errs, ValidationError{
			Field:   field + ".impl",
			Message: fmt.Sprintf("unknown implementation %q", spec.Impl),
			Code:    ErrUnknownImpl,
		})
	}

	errs = append(errs, validateExpr(spec.Expr, field, vocab)...)
	return errs
}

func validateExpr(e ir.ContractExpr, field string, vocab Vocabulary) []ValidationError {
	var errs []ValidationError

	switch e.Kind {
	case ir.ExprPredicate:
		// E108: predicate must be known
		if vocab.Predicate != nil && !vocab.Predicate(e.Name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown predicate %q", e.Name),
				Code:    ErrUnknownPredicate,
			})
		}

	case ir.ExprProcedure:
		// E101: result is required
		if e.Result == nil {
			errs = append(errs, ValidationError{
				Field:   field + ".result",
				Message: "procedure contract result is required",
				Code:    ErrCodeMissingResult,
			})
		} else {
			errs = append(errs, validateExpr(*e.Result, field+".result", vocab)...)
		}
		for i, arg := range e.Args {
			errs = append(errs, validateExpr(arg, fmt.Sprintf("%s.args[%d]", field, i), vocab)...)
		}

	case ir.ExprCombinator:
		errs = append(errs, validateCombinator(e, field, vocab)...)

	default:
		errs = append(errs, ValidationError{
			Field:   field + ".kind",
			Message: fmt.Sprintf("unknown expression kind %q", e.Kind),
			Code:    ErrCodeBadOperand,
		})
	}

	return errs
}

func validateCombinator(e ir.ContractExpr, field string, vocab Vocabulary) []ValidationError {
	shape, ok := ir.ValidCombinators[e.Name]
	// E102: combinator must exist
	if !ok {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("unknown combinator %q", e.Name),
			Code:    ErrCodeUnknownCombinator,
		}}
	}

	var errs []ValidationError
	field = field + "." + e.Name

	// E110: operand shape
	switch {
	case shape.Bounds > 0 && len(e.Bounds) != shape.Bounds:
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("expected %d bounds, found %d", shape.Bounds, len(e.Bounds)),
			Code:    ErrInvalidCombinator,
		})
	case shape.Literals && len(e.Literals) == 0:
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "expected at least one literal",
			Code:    ErrInvalidCombinator,
		})
	case shape.Operands == -1 && len(e.Operands) == 0,
		shape.Operands > 0 && len(e.Operands) != shape.Operands:
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("wrong number of operands: %d", len(e.Operands)),
			Code:    ErrInvalidCombinator,
		})
	}

	// E111: between interval must be non-empty
	if e.Name == "between" && len(e.Bounds) == 2 && e.Bounds[0] > e.Bounds[1] {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("empty interval [%d, %d]", e.Bounds[0], e.Bounds[1]),
			Code:    ErrEmptyInterval,
		})
	}

	for i, op := range e.Operands {
		opField := fmt.Sprintf("%s[%d]", field, i)
		// E110: combinators only combine atomic contracts
		if op.Kind == ir.ExprProcedure {
			errs = append(errs, ValidationError{
				Field:   opField,
				Message: fmt.Sprintf("%s only combines atomic contracts", e.Name),
				Code:    ErrInvalidCombinator,
			})
			continue
		}
		errs = append(errs, validateExpr(op, opField, vocab)...)
	}

	return errs
}
