// Package store provides the SQLite-backed violation journal.
//
// The journal is append-only:
//   - Runs: one row per scenario or CLI invocation, keyed by a UUIDv7
//   - Violations: every contract violation reported during a run
//
// # Ordering
//
// Violations are stamped by a per-run logical clock (seq). Queries order by
// seq ASC, id ASC and never by wall time, so traces read back identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Locations are stored as canonical JSON (see internal/ir/canonical.go).
package store
