// Package testing provides testing utilities and helpers for the yieldwise project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/yieldwise/internal/database"
)

// NewTestDB creates a migrated SQLite database in a per-test temporary directory.
// Returns the database instance and a cleanup function that closes the connection.
// The cleanup function is idempotent and is also registered with t.Cleanup.
//
// Supported schema names:
//   - "catalog" - applies catalog_schema.sql
//   - "cache" - applies cache_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			// Log error but don't fail test - cleanup should be idempotent
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	}
	t.Cleanup(cleanup)

	return db, cleanup
}
