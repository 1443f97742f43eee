// Package testutil provides deterministic fixtures shared by package tests:
// run id generators, a recording violation reporter, and a small set of
// callables with known behavior.
package testutil
