package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattwparas/Rucket/internal/ir"
)

// ErrorCode categorizes contract errors.
type ErrorCode string

const (
	// ErrCodeArityMismatch indicates the argument count disagrees with the
	// declared argument-contract count (or the underlying callable's arity).
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeArgumentViolation indicates a supplied value failed its contract.
	ErrCodeArgumentViolation ErrorCode = "ARGUMENT_VIOLATION"

	// ErrCodeResultViolation indicates a produced value failed its contract.
	ErrCodeResultViolation ErrorCode = "RESULT_VIOLATION"

	// ErrCodeMalformedContract indicates a non-contract reached a position
	// expecting a contract.
	ErrCodeMalformedContract ErrorCode = "MALFORMED_CONTRACT"
)

// ViolationError is the single structured error raised for one contract
// failure. Only the frame that detects the failure builds it; enclosing
// frames pass it through untouched.
type ViolationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Function is the display name of the wrapped callable.
	Function string

	// Contract is the rendered procedure contract being enforced.
	Contract string

	// Detail is the raw violation detail (e.g. "expected integer?, found \"a\"").
	Detail string

	// Blame attributes the failure.
	Blame Blame

	// Position is the argument index for argument violations, -1 otherwise.
	Position int

	// Expected and Actual are argument counts for arity mismatches.
	Expected int
	Actual   int

	// Loc is the call-site location context.
	Loc ir.Location
}

// Error implements the error interface.
func (e *ViolationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	switch e.Code {
	case ErrCodeArityMismatch:
		fmt.Fprintf(&b, "%s: %s", displayName(e.Function), e.Detail)
	case ErrCodeArgumentViolation:
		fmt.Fprintf(&b, "%s: contract violation in argument %d: %s (contract: %s, blaming: %s)",
			displayName(e.Function), e.Position, e.Detail, e.Contract, e.Blame)
	case ErrCodeResultViolation:
		fmt.Fprintf(&b, "%s: contract violation in result: %s (contract: %s, blaming: %s)",
			displayName(e.Function), e.Detail, e.Contract, e.Blame)
	default:
		b.WriteString(e.Detail)
	}
	if e.Loc.IsValid() {
		fmt.Fprintf(&b, " at %s", e.Loc)
	}
	return b.String()
}

// Location implements ir.Located.
func (e *ViolationError) Location() ir.Location {
	return e.Loc
}

// NewMalformedError creates a MALFORMED_CONTRACT error.
func NewMalformedError(detail string) *ViolationError {
	return &ViolationError{
		Code:     ErrCodeMalformedContract,
		Detail:   detail,
		Position: -1,
	}
}

func newArityError(function, rendered string, expected, actual int, detail string, loc ir.Location) *ViolationError {
	return &ViolationError{
		Code:     ErrCodeArityMismatch,
		Function: function,
		Contract: rendered,
		Detail:   detail,
		Blame:    Blame{Party: BlameCaller},
		Position: -1,
		Expected: expected,
		Actual:   actual,
		Loc:      loc,
	}
}

// IsArityMismatch returns true if err is an arity mismatch.
// Uses errors.As to handle wrapped errors.
func IsArityMismatch(err error) bool {
	return hasCode(err, ErrCodeArityMismatch)
}

// IsArgumentViolation returns true if err is an argument violation.
func IsArgumentViolation(err error) bool {
	return hasCode(err, ErrCodeArgumentViolation)
}

// IsResultViolation returns true if err is a result violation.
func IsResultViolation(err error) bool {
	return hasCode(err, ErrCodeResultViolation)
}

// IsMalformedContract returns true if err is a malformed contract error.
func IsMalformedContract(err error) bool {
	return hasCode(err, ErrCodeMalformedContract)
}

// AsViolation extracts the ViolationError from err.
func AsViolation(err error) (*ViolationError, bool) {
	var ve *ViolationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func hasCode(err error, code ErrorCode) bool {
	ve, ok := AsViolation(err)
	return ok && ve.Code == code
}
