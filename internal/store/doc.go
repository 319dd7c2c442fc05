// Package store persists a queryable index of built compilation units in
// SQLite.
//
// The index holds, per unit:
//   - Files: one row per source unit
//   - Contracts: kind, flags and the compiler's linearization
//   - Inheritance: direct `is` edges, child to base, in clause order
//   - Declarations: every named declaration with its name span
//
// # Invalidation
//
// Contract, inheritance and declaration rows reference their file row with
// ON DELETE CASCADE, so DeleteFile removes everything a file contributed
// in one statement. Inheritance edges from other files that pointed into
// the deleted file stay behind; Check reports them as dangling.
//
// # Ordering
//
// Every list query orders by file path then start offset, so results are
// stable across rebuilds of the same sources.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
