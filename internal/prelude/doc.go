// Package prelude holds the host-side vocabulary the contract engine is
// driven with: named predicates, builtin procedures, resolution of
// declarative contract expressions, and the contract primitives exposed to
// scripts (make/c, make-flat/c, make-function/c, bind/c, contract->string,
// contract-of).
//
// Contracts cross the value boundary as ir.Opaque values tagged "contract",
// so scripts can store and pass them like any other value.
package prelude
