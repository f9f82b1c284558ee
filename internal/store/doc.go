// Package store is a typed persistence layer over SQLite.
//
// Entities declare their storage once, as a *Table built with NewTable:
//   - the columns, in the order Values() and Decode agree on
//   - the tables that must exist first (DependsOn)
//   - optionally a composite primary key, extra constraints and a sort whitelist
//
// Every statement is generated from that declaration, so the create, insert
// and select statements of a table can never disagree with one another.
//
// Rows are identified by Key[E], an int64 that carries its entity type. Keys
// render as "/<table>/<id>" and parse back from either that form or a bare
// integer.
//
// # Connection
//
// A Store owns a single pooled connection:
//   - WAL mode: readers never block the writer
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: references are enforced on every insert
//
// Migrations are ordered bundles tracked through PRAGMA user_version. Each
// bundle runs in its own transaction together with the version bump.
//
// # Errors
//
// Operations return *Error values carrying an ErrorCode. Callers branch with
// IsConstraintViolation and IsNotFound rather than inspecting driver errors.
package store
