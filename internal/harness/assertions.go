package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mattwparas/Rucket/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type       string            // Assertion type for categorization
	Expected   string            // Human-readable expected outcome
	Actual     string            // Human-readable actual outcome
	Violations []store.Violation // Full journal for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Violations) > 0 {
		fmt.Fprintf(&buf, "\nJournal:\n")
		for _, v := range e.Violations {
			fmt.Fprintf(&buf, "  [%d] %s %s: %s\n", v.Seq, v.Code, v.Function, v.Blame)
		}
	}

	return buf.String()
}

// assertViolationCount checks the number of journaled violations,
// optionally restricted to one code.
func assertViolationCount(violations []store.Violation, assertion Assertion) error {
	count := 0
	for _, v := range violations {
		if assertion.Code == "" || v.Code == assertion.Code {
			count++
		}
	}

	if count != assertion.Count {
		what := "violations"
		if assertion.Code != "" {
			what = assertion.Code + " violations"
		}
		return &AssertionError{
			Type:       AssertViolationCount,
			Expected:   fmt.Sprintf("%d %s", assertion.Count, what),
			Actual:     fmt.Sprintf("%d %s", count, what),
			Violations: violations,
		}
	}
	return nil
}

// assertViolationOrder checks that the listed codes appear in order.
// Codes don't need to be consecutive (intervening violations are allowed).
func assertViolationOrder(violations []store.Violation, assertion Assertion) error {
	next := 0
	for _, v := range violations {
		if next < len(assertion.Codes) && v.Code == assertion.Codes[next] {
			next++
		}
	}
	if next == len(assertion.Codes) {
		return nil
	}

	actual := make([]string, len(violations))
	for i, v := range violations {
		actual[i] = v.Code
	}
	return &AssertionError{
		Type:       AssertViolationOrder,
		Expected:   fmt.Sprintf("codes in order: %v", assertion.Codes),
		Actual:     fmt.Sprintf("journal codes: %v (missing %s)", actual, assertion.Codes[next]),
		Violations: violations,
	}
}

// assertJournal finds the single violation matching Where and validates
// the expected fields using subset semantics.
func assertJournal(violations []store.Violation, assertion Assertion) error {
	var matches []map[string]any
	for _, v := range violations {
		row := violationFields(v)
		if rowMatches(row, assertion.Where) {
			matches = append(matches, row)
		}
	}

	whereDesc := formatWhereClause(assertion.Where)
	switch len(matches) {
	case 0:
		return &AssertionError{
			Type:       AssertJournal,
			Expected:   fmt.Sprintf("violation where %s", whereDesc),
			Actual:     "no violation matched",
			Violations: violations,
		}
	case 1:
	default:
		return &AssertionError{
			Type:       AssertJournal,
			Expected:   fmt.Sprintf("exactly one violation where %s", whereDesc),
			Actual:     fmt.Sprintf("%d violations matched (assertion is ambiguous)", len(matches)),
			Violations: violations,
		}
	}

	row := matches[0]
	for _, key := range sortedKeys(assertion.Expect) {
		actualValue, exists := row[key]
		if !exists {
			return &AssertionError{
				Type:     AssertJournal,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q is not a journal column", key),
			}
		}
		if !valuesEqual(assertion.Expect[key], actualValue) {
			return &AssertionError{
				Type:     AssertJournal,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, assertion.Expect[key], assertion.Expect[key]),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}
	return nil
}

// violationFields exposes a journal row by column name.
func violationFields(v store.Violation) map[string]any {
	return map[string]any{
		"seq":           v.Seq,
		"code":          v.Code,
		"function":      v.Function,
		"contract":      v.Contract,
		"contract_hash": v.ContractHash,
		"detail":        v.Detail,
		"blame_party":   v.BlameParty,
		"blame_name":    v.BlameName,
		"blame":         v.Blame,
		"position":      int64(v.Position),
		"expected":      int64(v.Expected),
		"actual":        int64(v.Actual),
		"location":      v.Location,
	}
}

func rowMatches(row map[string]any, where map[string]any) bool {
	for key, want := range where {
		got, ok := row[key]
		if !ok || !valuesEqual(want, got) {
			return false
		}
	}
	return true
}

// formatWhereClause creates a human-readable description of match conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := sortedKeys(where)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valuesEqual compares a YAML-decoded expected value with a journal value.
// YAML integers decode as int; journal integers are int64.
func valuesEqual(expected, actual any) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	switch exp := expected.(type) {
	case int:
		if a, ok := actual.(int64); ok {
			return int64(exp) == a
		}
		return false
	case int64:
		if a, ok := actual.(int64); ok {
			return exp == a
		}
		return false
	case string:
		if a, ok := actual.(string); ok {
			return exp == a
		}
		return false
	}

	return reflect.DeepEqual(expected, actual)
}

// EvaluateAssertions evaluates all assertions against the result's journal.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertViolationCount:
			err = assertViolationCount(result.Violations, assertion)
		case AssertViolationOrder:
			err = assertViolationOrder(result.Violations, assertion)
		case AssertJournal:
			err = assertJournal(result.Violations, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
