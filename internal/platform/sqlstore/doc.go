// Package sqlstore provides the database/sql implementation of
// store.TaskStore for PostgreSQL (via pgx) and SQLite (via modernc.org/sqlite).
// It handles connections, schema migrations, query execution, and mapping
// between domain entities and database rows.
package sqlstore
