package sqlstore_test

import (
	"context"
	"testing"

	"github.com/phrazzld/taskboard/internal/platform/sqlstore"
	"github.com/phrazzld/taskboard/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tasksTableExists(t *testing.T, s *sqlstore.Store) bool {
	t.Helper()

	var n int
	err := s.DB().QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'tasks'`).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestMigrate_DownAndUp(t *testing.T) {
	ctx := context.Background()
	s := testdb.OpenSQLite(t, nil)
	require.True(t, tasksTableExists(t, s))

	require.NoError(t, sqlstore.Migrate(ctx, s.DB(), sqlstore.DialectSQLite, "down"))
	assert.False(t, tasksTableExists(t, s))

	require.NoError(t, sqlstore.Migrate(ctx, s.DB(), sqlstore.DialectSQLite, "up"))
	assert.True(t, tasksTableExists(t, s))

	// Up is idempotent.
	require.NoError(t, sqlstore.Migrate(ctx, s.DB(), sqlstore.DialectSQLite, "up"))
}

func TestMigrate_StatusVersionReset(t *testing.T) {
	ctx := context.Background()
	s := testdb.OpenSQLite(t, nil)

	require.NoError(t, sqlstore.Migrate(ctx, s.DB(), sqlstore.DialectSQLite, "status"))
	require.NoError(t, sqlstore.Migrate(ctx, s.DB(), sqlstore.DialectSQLite, "version"))
	require.NoError(t, sqlstore.Migrate(ctx, s.DB(), sqlstore.DialectSQLite, "reset"))
	assert.False(t, tasksTableExists(t, s))
}

func TestMigrate_UnknownCommand(t *testing.T) {
	s := testdb.OpenSQLite(t, nil)

	err := sqlstore.Migrate(context.Background(), s.DB(), sqlstore.DialectSQLite, "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
