package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db.Pool))
	return db.Pool
}

func mustCandidate(t *testing.T, db *sql.DB, c Candidate) Candidate {
	t.Helper()
	created, err := CreateCandidate(context.Background(), db, c)
	require.NoError(t, err)
	return created
}

func mustJob(t *testing.T, db *sql.DB, j Job) Job {
	t.Helper()
	created, err := CreateJob(context.Background(), db, j)
	require.NoError(t, err)
	return created
}

func mustApplication(t *testing.T, db *sql.DB, a Application) Application {
	t.Helper()
	created, err := CreateApplication(context.Background(), db, a)
	require.NoError(t, err)
	return created
}
