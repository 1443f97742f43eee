package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattwparas/Rucket/internal/ir"
)

func compileSource(t *testing.T, src string) ([]ir.ContractSpec, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return CompileManifest(v)
}

func requireCompileError(t *testing.T, err error, code string) *CompileError {
	t.Helper()
	require.Error(t, err)
	var ce *CompileError
	require.True(t, errors.As(err, &ce), "expected CompileError, got %T: %v", err, err)
	assert.Equal(t, code, ce.Code)
	return ce
}

func TestCompileContractBasic(t *testing.T) {
	v := cuecontext.New().CompileString(`
		contract: test: {
			doc:    "sums to ten"
			impl:   "sum-is-ten?"
			args:   ["integer?", "integer?"]
			result: "boolean?"
		}
	`)
	require.NoError(t, v.Err())

	spec, err := CompileContract(v.LookupPath(cue.ParsePath("contract.test")))
	require.NoError(t, err)

	want := &ir.ContractSpec{
		Name: "test",
		Doc:  "sums to ten",
		Impl: "sum-is-ten?",
		Expr: ir.ProcedureExpr(ir.PredicateExpr("boolean?"), ir.PredicateExpr("integer?"), ir.PredicateExpr("integer?")),
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("CompileContract mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileManifestHigherOrder(t *testing.T) {
	specs, err := compileSource(t, `
		contract: {
			"apply-even": {
				impl: "add1-after-two"
				args: [{args: ["even?"], result: "odd?"}]
				result: "even?"
			}
			"make-adder": {
				args: ["integer?"]
				result: {args: ["integer?"], result: "integer?"}
			}
		}
	`)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "apply-even", specs[0].Name, "quoted labels are unquoted")
	want := ir.ProcedureExpr(ir.PredicateExpr("even?"),
		ir.ProcedureExpr(ir.PredicateExpr("odd?"), ir.PredicateExpr("even?")))
	if diff := cmp.Diff(want, specs[0].Expr); diff != "" {
		t.Errorf("apply-even mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "make-adder", specs[1].Name)
	assert.Empty(t, specs[1].Impl)
	require.NotNil(t, specs[1].Expr.Result)
	assert.Equal(t, ir.ExprProcedure, specs[1].Expr.Result.Kind)
}

func TestCompileManifestZeroArgs(t *testing.T) {
	specs, err := compileSource(t, `contract: thunk: result: "any/c"`)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Empty(t, specs[0].Expr.Args)
	assert.Equal(t, ir.PredicateExpr("any/c"), *specs[0].Expr.Result)
}

func TestCompileManifestCombinators(t *testing.T) {
	specs, err := compileSource(t, `
		contract: rich: {
			args: [
				{"list-of": "integer?"},
				{"map-of": ["symbol?", {"non-empty-list-of": "string?"}]},
				{"and": ["integer?", {"greater-than": 0}]},
				{"not": "null?"},
				{"between": [1, 10]},
				{"one-of": ["red", {sym: "green"}, 3, true]},
			]
			result: {"or": ["string?", "symbol?"]}
		}
	`)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	want := ir.ContractExpr{
		Kind: ir.ExprProcedure,
		Args: []ir.ContractExpr{
			ir.CombinatorExpr("list-of", ir.PredicateExpr("integer?")),
			ir.CombinatorExpr("map-of", ir.PredicateExpr("symbol?"),
				ir.CombinatorExpr("non-empty-list-of", ir.PredicateExpr("string?"))),
			ir.CombinatorExpr("and", ir.PredicateExpr("integer?"), ir.BoundedExpr("greater-than", 0)),
			ir.CombinatorExpr("not", ir.PredicateExpr("null?")),
			ir.BoundedExpr("between", 1, 10),
			{Kind: ir.ExprCombinator, Name: "one-of", Literals: []any{"red", map[string]any{"sym": "green"}, int64(3), true}},
		},
	}
	result := ir.CombinatorExpr("or", ir.PredicateExpr("string?"), ir.PredicateExpr("symbol?"))
	want.Result = &result

	if diff := cmp.Diff(want, specs[0].Expr); diff != "" {
		t.Errorf("combinator mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileManifestNoContracts(t *testing.T) {
	specs, err := compileSource(t, `other: 1`)
	require.NoError(t, err)
	assert.Empty(t, specs)
}

// =============================================================================
// Compile errors
// =============================================================================

func TestCompileMissingResult(t *testing.T) {
	_, err := compileSource(t, `contract: bad: args: ["integer?"]`)
	ce := requireCompileError(t, err, ErrCodeMissingResult)
	assert.Equal(t, "contract.bad.result", ce.Field)
	assert.True(t, ce.Pos.IsValid())
}

func TestCompileNestedMissingResult(t *testing.T) {
	_, err := compileSource(t, `
		contract: bad: {
			args: [{args: ["even?"]}]
			result: "any/c"
		}
	`)
	ce := requireCompileError(t, err, ErrCodeMissingResult)
	assert.Equal(t, "contract.bad.args[0].result", ce.Field)
}

func TestCompileUnknownCombinator(t *testing.T) {
	_, err := compileSource(t, `
		contract: bad: {
			args: [{"vector-of": "integer?"}]
			result: "any/c"
		}
	`)
	ce := requireCompileError(t, err, ErrCodeUnknownCombinator)
	assert.Contains(t, ce.Message, `unknown combinator "vector-of"`)
}

func TestCompileMultiKeyCombinator(t *testing.T) {
	_, err := compileSource(t, `
		contract: bad: {
			args: [{"list-of": "integer?", "not": "null?"}]
			result: "any/c"
		}
	`)
	ce := requireCompileError(t, err, ErrCodeUnknownCombinator)
	assert.Contains(t, ce.Message, "exactly one key, found 2")
}

func TestCompileBadOperands(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"number as contract", `5`, "contract expression must be"},
		{"map-of needs a list", `{"map-of": "integer?"}`, "operand must be a list"},
		{"map-of needs two", `{"map-of": ["integer?"]}`, "expected 2 operands, found 1"},
		{"and needs one", `{"and": []}`, "expected at least 1 operands, found 0"},
		{"bound must be int", `{"at-least": "five"}`, "bound must be an int"},
		{"one-of literal", `{"one-of": [[1]]}`, "literal must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileSource(t, `contract: bad: { args: [`+tt.arg+`], result: "any/c" }`)
			ce := requireCompileError(t, err, ErrCodeBadOperand)
			assert.Contains(t, ce.Message, tt.want)
		})
	}
}

func TestCompileFloatBound(t *testing.T) {
	_, err := compileSource(t, `contract: bad: { args: [{"greater-than": 1.5}], result: "any/c" }`)
	ce := requireCompileError(t, err, ErrCodeFloatBound)
	assert.Equal(t, "contract.bad.args[0].greater-than", ce.Field)

	_, err = compileSource(t, `contract: bad: { args: [{"one-of": [2.5]}], result: "any/c" }`)
	requireCompileError(t, err, ErrCodeFloatBound)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "contract.x", Message: "broken"}
	assert.Equal(t, "contract.x: broken", err.Error())
}

func TestFormatCUEErrorNil(t *testing.T) {
	assert.NoError(t, formatCUEError(nil))
}
