// Package harness runs contract scenarios.
//
// A scenario names one or more CUE contract manifests, binds their declared
// implementations, and executes a list of calls against them. Each call is
// recorded in a trace together with its outcome: the returned value, the
// contract violation it raised, or a host error. Violations are also
// journaled to an in-memory SQLite store so assertions can inspect exactly
// what a production run would have recorded.
//
// # Scenario Format
//
//	name: sum_is_ten
//	description: "sum-is-ten? bound under (-> integer? integer? boolean?)"
//	specs:
//	  - contracts.cue
//	contracts: true
//	steps:
//	  - call: test
//	    args: [5, 5]
//	    expect:
//	      value: true
//	  - call: test
//	    args: ["a", 5]
//	    at: "main.rkt:4:1"
//	    expect:
//	      violation: ARGUMENT_VIOLATION
//	      blame: caller
//	      position: 0
//	assertions:
//	  - type: violation_count
//	    count: 1
//	  - type: journal
//	    where: { seq: 1 }
//	    expect: { blame: "call site" }
//
// Arguments use the tagged forms of ir.FromGo: {sym: x} is a symbol,
// {proc: name} resolves a bound contract or a builtin procedure, and
// {map: [[k, v], ...]} builds a map.
//
// # Assertion Types
//
//   - violation_count: exactly N violations were journaled (optionally of one code)
//   - violation_order: journaled codes appear in the given order
//   - journal: one journaled violation matching where has the expected fields
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory journal with a fixed run
// id, so traces are byte-identical across runs and can be compared with
// golden snapshots (see RunWithGolden).
package harness
