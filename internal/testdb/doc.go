// Package testdb provides utilities for tests that need a real SQL database.
//
// SQLite databases live in a per-test temporary directory and are always
// available. PostgreSQL tests run only when TASKBOARD_TEST_DATABASE_URL is
// set and are skipped otherwise:
//
//	func TestMyFeature(t *testing.T) {
//	    s := testdb.OpenPostgres(t, time.Now)
//	    // s is migrated, empty, and closed when the test ends
//	}
//
// Each Postgres helper call truncates the tasks table, so tests sharing the
// database must not run in parallel.
package testdb
