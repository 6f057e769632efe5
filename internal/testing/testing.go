// Package testing provides shared test helpers.
package testing

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"schedsync/db"
)

// CreateTestDB creates an in-memory SQLite database with the full schema
// applied. The database is closed automatically when the test finishes.
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err, "open in-memory database")

	// Each pooled connection would get its own empty in-memory database.
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err, "enable foreign keys")

	require.NoError(t, db.Migrate(database, nil), "apply migrations")

	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}
