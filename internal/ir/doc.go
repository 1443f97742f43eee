// Package ir provides the host value model consumed by the contract engine.
//
// This package contains value and callable definitions, the opaque call-site
// location, host errors, and the declarative contract IR produced by the
// manifest compiler. All other internal packages import ir; ir imports
// nothing internal. This keeps ir the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Value is a sealed interface; only the types in this package implement it
//   - Values are immutable once constructed (List and Map are never edited in place)
//   - No float types: numbers are int64
//   - Strings and symbols are NFC normalized at construction
package ir
