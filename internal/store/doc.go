// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Implementations live in store/memory (the default, process-scoped backend)
// and platform/sqlstore (Postgres and SQLite).
package store
