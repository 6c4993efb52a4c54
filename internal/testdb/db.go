package testdb

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/taskboard/internal/platform/sqlstore"
	"github.com/phrazzld/taskboard/internal/redact"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// quietLogger discards store and migration logs.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenSQLite returns a migrated store backed by a fresh SQLite file in a
// temporary directory. The store is closed when the test ends.
func OpenSQLite(t *testing.T, clock func() time.Time) *sqlstore.Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	s, err := sqlstore.Open(ctx, sqlstore.Options{
		Dialect:     sqlstore.DialectSQLite,
		DSN:         filepath.Join(t.TempDir(), "taskboard.db"),
		AutoMigrate: true,
		Clock:       clock,
	}, quietLogger())
	require.NoError(t, err, "Failed to open SQLite test database")

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("Warning: failed to close SQLite test database: %v", err)
		}
	})
	return s
}

// OpenPostgres returns a migrated store on the database named by
// TASKBOARD_TEST_DATABASE_URL with an empty tasks table. The test is skipped
// when the variable is unset.
func OpenPostgres(t *testing.T, clock func() time.Time) *sqlstore.Store {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skipf("%s not set - skipping Postgres test", DatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	dbURL := GetTestDatabaseURL()
	s, err := sqlstore.Open(ctx, sqlstore.Options{
		Dialect:      sqlstore.DialectPostgres,
		DSN:          dbURL,
		MaxOpenConns: 4,
		AutoMigrate:  true,
		Clock:        clock,
	}, quietLogger())
	require.NoError(t, err, "Failed to open Postgres test database %s", redact.URL(dbURL))

	_, err = s.DB().ExecContext(ctx, "TRUNCATE tasks RESTART IDENTITY")
	require.NoError(t, err, "Failed to truncate tasks table")

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("Warning: failed to close Postgres test database: %v", err)
		}
	})
	return s
}
