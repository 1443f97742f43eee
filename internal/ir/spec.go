package ir

// ContractSpec represents a compiled contract declaration from a manifest.
type ContractSpec struct {
	Name string       `json:"name"`
	Doc  string       `json:"doc,omitempty"`
	Impl string       `json:"impl,omitempty"` // builtin bound under this contract
	Expr ContractExpr `json:"expr"`
}

// ExprKind discriminates ContractExpr forms.
type ExprKind string

const (
	// ExprPredicate names a registered predicate, e.g. "integer?".
	ExprPredicate ExprKind = "predicate"

	// ExprProcedure is a procedure contract (args + result).
	ExprProcedure ExprKind = "procedure"

	// ExprCombinator applies a combinator to operands and/or bounds.
	ExprCombinator ExprKind = "combinator"
)

// ValidCombinators lists combinator names accepted in manifests with the
// number of contract operands each takes (-1 means one or more) and the
// number of integer bounds.
var ValidCombinators = map[string]CombinatorArity{
	"list-of":           {Operands: 1},
	"non-empty-list-of": {Operands: 1},
	"map-of":            {Operands: 2},
	"and":               {Operands: -1},
	"or":                {Operands: -1},
	"not":               {Operands: 1},
	"one-of":            {Literals: true},
	"greater-than":      {Bounds: 1},
	"less-than":         {Bounds: 1},
	"at-least":          {Bounds: 1},
	"at-most":           {Bounds: 1},
	"between":           {Bounds: 2},
}

// CombinatorArity describes the operand shape of a combinator.
type CombinatorArity struct {
	Operands int
	Bounds   int
	Literals bool
}

// ContractExpr is the declarative form of a contract.
// Exactly the fields relevant to Kind are populated.
type ContractExpr struct {
	Kind ExprKind `json:"kind"`

	// Name is the predicate name (ExprPredicate) or combinator name (ExprCombinator).
	Name string `json:"name,omitempty"`

	// Args and Result describe a procedure contract (ExprProcedure).
	Args   []ContractExpr `json:"args,omitempty"`
	Result *ContractExpr  `json:"result,omitempty"`

	// Operands are nested contracts of a combinator.
	Operands []ContractExpr `json:"operands,omitempty"`

	// Bounds are integer parameters of ordering combinators.
	Bounds []int64 `json:"bounds,omitempty"`

	// Literals are the accepted values of one-of.
	Literals []any `json:"literals,omitempty"`
}

// PredicateExpr creates a predicate reference.
func PredicateExpr(name string) ContractExpr {
	return ContractExpr{Kind: ExprPredicate, Name: name}
}

// ProcedureExpr creates a procedure contract expression.
func ProcedureExpr(result ContractExpr, args ...ContractExpr) ContractExpr {
	return ContractExpr{Kind: ExprProcedure, Args: args, Result: &result}
}

// CombinatorExpr creates a combinator application over operands.
func CombinatorExpr(name string, operands ...ContractExpr) ContractExpr {
	return ContractExpr{Kind: ExprCombinator, Name: name, Operands: operands}
}

// BoundedExpr creates an ordering combinator application.
func BoundedExpr(name string, bounds ...int64) ContractExpr {
	return ContractExpr{Kind: ExprCombinator, Name: name, Bounds: bounds}
}
