package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattwparas/Rucket/internal/ir"
)

func testVocabulary() Vocabulary {
	predicates := map[string]bool{"integer?": true, "boolean?": true, "even?": true, "odd?": true, "any/c": true}
	procedures := map[string]bool{"sum-is-ten?": true, "add1-after-two": true}
	return Vocabulary{
		Predicate: func(name string) bool { return predicates[name] },
		Procedure: func(name string) bool { return procedures[name] },
	}
}

func validSpec(name string) ir.ContractSpec {
	return ir.ContractSpec{
		Name: name,
		Impl: "sum-is-ten?",
		Expr: ir.ProcedureExpr(ir.PredicateExpr("boolean?"), ir.PredicateExpr("integer?"), ir.PredicateExpr("integer?")),
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Code
	}
	return out
}

// =============================================================================
// ContractSpec Validation Tests
// =============================================================================

func TestValidateContractSpecValid(t *testing.T) {
	errs := Validate(validSpec("test"), testVocabulary())
	assert.Empty(t, errs, "valid spec should have no errors")

	spec := validSpec("test")
	assert.Empty(t, Validate(&spec, testVocabulary()))
}

func TestValidateWithoutVocabulary(t *testing.T) {
	spec := validSpec("test")
	spec.Impl = "anything"
	spec.Expr.Args[0] = ir.PredicateExpr("made-up?")
	assert.Empty(t, Validate(spec, Vocabulary{}), "nil lookups skip name checks")
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("nope", Vocabulary{})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedIRType, errs[0].Code)
}

func TestValidateEmptyName(t *testing.T) {
	errs := Validate(validSpec("  "), testVocabulary())
	require.Len(t, errs, 1)
	assert.Equal(t, ErrEmptyName, errs[0].Code)
}

func TestValidateNotProcedure(t *testing.T) {
	spec := ir.ContractSpec{Name: "flat", Expr: ir.PredicateExpr("integer?")}
	errs := Validate(spec, testVocabulary())
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNotProcedure, errs[0].Code)
	assert.Equal(t, "contract.flat", errs[0].Field)
}

func TestValidateUnknownNames(t *testing.T) {
	spec := validSpec("test")
	spec.Impl = "missing-impl"
	spec.Expr.Args[1] = ir.PredicateExpr("float?")

	errs := Validate(spec, testVocabulary())
	assert.ElementsMatch(t, []string{ErrUnknownImpl, ErrUnknownPredicate}, codes(errs))
	for _, err := range errs {
		if err.Code == ErrUnknownPredicate {
			assert.Equal(t, "contract.test.args[1]", err.Field)
		}
	}
}

func TestValidateMissingResult(t *testing.T) {
	spec := ir.ContractSpec{
		Name: "broken",
		Expr: ir.ContractExpr{Kind: ir.ExprProcedure, Args: []ir.ContractExpr{ir.PredicateExpr("integer?")}},
	}
	errs := Validate(spec, testVocabulary())
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeMissingResult, errs[0].Code)
	assert.Equal(t, "contract.broken.result", errs[0].Field)
}

func TestValidateCombinators(t *testing.T) {
	tests := []struct {
		name string
		arg  ir.ContractExpr
		want string
	}{
		{"unknown", ir.CombinatorExpr("vector-of", ir.PredicateExpr("integer?")), ErrCodeUnknownCombinator},
		{"operand count", ir.CombinatorExpr("map-of", ir.PredicateExpr("integer?")), ErrInvalidCombinator},
		{"empty or", ir.CombinatorExpr("or"), ErrInvalidCombinator},
		{"bounds", ir.BoundedExpr("between", 1), ErrInvalidCombinator},
		{"empty one-of", ir.ContractExpr{Kind: ir.ExprCombinator, Name: "one-of"}, ErrInvalidCombinator},
		{"interval", ir.BoundedExpr("between", 9, 1), ErrEmptyInterval},
		{"procedure operand", ir.CombinatorExpr("not", ir.ProcedureExpr(ir.PredicateExpr("any/c"))), ErrInvalidCombinator},
		{"nested predicate", ir.CombinatorExpr("list-of", ir.PredicateExpr("float?")), ErrUnknownPredicate},
		{"bad kind", ir.ContractExpr{Kind: "lambda"}, ErrCodeBadOperand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ir.ContractSpec{Name: "c", Expr: ir.ProcedureExpr(ir.PredicateExpr("any/c"), tt.arg)}
			errs := Validate(spec, testVocabulary())
			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tt.want, errs[0].Code)
		})
	}
}

func TestValidateValidCombinators(t *testing.T) {
	spec := ir.ContractSpec{
		Name: "c",
		Expr: ir.ProcedureExpr(ir.PredicateExpr("any/c"),
			ir.CombinatorExpr("and", ir.PredicateExpr("integer?"), ir.BoundedExpr("at-least", 0)),
			ir.ContractExpr{Kind: ir.ExprCombinator, Name: "one-of", Literals: []any{"a"}},
		),
	}
	assert.Empty(t, Validate(spec, testVocabulary()))
}

// =============================================================================
// Manifest Validation Tests
// =============================================================================

func TestValidateManifestDuplicate(t *testing.T) {
	errs := Validate([]ir.ContractSpec{validSpec("test"), validSpec("test")}, testVocabulary())
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateName, errs[0].Code)
	assert.Equal(t, "contract[1].name", errs[0].Field)
}

func TestValidateManifestLayering(t *testing.T) {
	base := validSpec("base")
	strict := validSpec("strict")
	strict.Impl = "base"

	assert.Empty(t, Validate([]ir.ContractSpec{base, strict}, testVocabulary()),
		"impl may name another contract in the manifest")
}

func TestValidateManifestCycle(t *testing.T) {
	a := validSpec("a")
	a.Impl = "b"
	b := validSpec("b")
	b.Impl = "a"

	errs := Validate([]ir.ContractSpec{a, b}, testVocabulary())
	require.Len(t, errs, 1)
	assert.Equal(t, ErrImplCycle, errs[0].Code)
	assert.Equal(t, "impl cycle detected: a -> b -> a", errs[0].Message)
	assert.Equal(t, "contract.a.impl", errs[0].Field)
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "contract.x", Message: "bad", Code: ErrEmptyName}
	assert.Equal(t, "[E106] contract.x: bad", err.Error())

	err.Line = 3
	assert.Equal(t, "[E106] line 3: contract.x: bad", err.Error())
}
