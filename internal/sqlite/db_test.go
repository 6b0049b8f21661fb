package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"activity_log",
		"portal_snapshots",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestMigrationsIdempotent verifies the schema can be applied to an existing database
func TestMigrationsIdempotent(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestActivityLogTable verifies the activity_log table structure
func TestActivityLogTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO activity_log (tenant_id, project_id, scope_id, activity_type, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"tenant1", "42", nil, "scope_created", "Created scope", time.Now().UTC())
	require.NoError(t, err)

	var projectID, activityType string
	err = db.QueryRowContext(ctx,
		`SELECT project_id, activity_type FROM activity_log WHERE tenant_id = ?`,
		"tenant1").Scan(&projectID, &activityType)
	require.NoError(t, err)
	require.Equal(t, "42", projectID)
	require.Equal(t, "scope_created", activityType)
}

// TestAPIKeysUnique verifies a key hash can only be registered once
func TestAPIKeysUnique(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	insert := `INSERT INTO api_keys (key_hash, tenant_id) VALUES (?, ?)`
	_, err := db.ExecContext(ctx, insert, "hash1", "tenant1")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "hash1", "tenant2")
	require.Error(t, err)
	require.True(t, isUniqueViolation(err))
}
