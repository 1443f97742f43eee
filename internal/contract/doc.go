// Package contract implements runtime contract enforcement with blame.
//
// A contract is either an Atomic contract (one predicate over one value) or
// a Procedure contract (ordered argument contracts plus one result
// contract). Binding a procedure contract to a callable yields a Wrapped
// callable that checks every call.
//
// ARCHITECTURE:
//
// Call-time state machine (one stack-local frame per call):
//
//	ARITY_CHECK -> ARGUMENT_CHECK -> INVOKE -> RESULT_CHECK -> RETURN
//	                    |                           |
//	           ARGUMENT_VIOLATION           RESULT_VIOLATION
//
// Higher-order positions: a procedure contract in an argument or result
// position re-wraps the flowing callable before anyone can invoke it. The
// new wrapper records the previous contract as a parent, so a callable
// passed through N contract boundaries carries an N-deep parent chain and
// N nested verification frames per call. Stack growth is proportional to the
// number of contract layers traversed; this is the documented cost of the
// design.
//
// Blame:
//   - argument violations blame the call site (the caller broke the callee's
//     declared input contract)
//   - result violations blame the function itself when its contract has no
//     binding site ("broke its own contract"), and the recorded binding site
//     otherwise
//
// Contracts and wrapped callables are immutable after construction and safe
// to share between goroutines. Composition always builds new values, so the
// parent relation is an append-only forest and every traversal terminates.
package contract
