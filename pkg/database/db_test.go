package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "nested", "data.db")}

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	// idempotent
	require.NoError(t, Migrate(ctx, db))

	_, err = db.ExecContext(ctx, `INSERT INTO kv (profile, key, value) VALUES (?, ?, ?)`, "p", "k", "v")
	require.NoError(t, err)

	var v string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM kv WHERE profile = ? AND key = ?`, "p", "k").Scan(&v))
	require.Equal(t, "v", v)
}

func TestDefaultConfigIgnoresEnvironment(t *testing.T) {
	t.Setenv("HOME", "/home/reviewer")
	t.Setenv("REVIEWHUB_DB_PATH", "/tmp/x.db")
	cfg := DefaultConfig()
	require.Equal(t, DriverSQLite, cfg.Driver)
	require.Equal(t, filepath.Join("/home/reviewer", ".reviewhub", "data.db"), cfg.DSN)
}
