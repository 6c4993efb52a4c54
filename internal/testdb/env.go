package testdb

import "os"

// DatabaseURLEnv names the variable holding the Postgres test database URL.
const DatabaseURLEnv = "TASKBOARD_TEST_DATABASE_URL"

// GetTestDatabaseURL returns the Postgres URL for tests, or "" when unset.
func GetTestDatabaseURL() string {
	return os.Getenv(DatabaseURLEnv)
}

// ShouldSkipDatabaseTest returns true if no Postgres test database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}
