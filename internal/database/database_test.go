package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*sqlx.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rose.db")
	db, err := Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestOpenAppliesMigrations(t *testing.T) {
	db, _ := openTemp(t)

	var versions []int
	require.NoError(t, db.Select(&versions, "SELECT version FROM migrations ORDER BY version"))
	assert.Equal(t, []int{1, 2, 3}, versions)

	for _, table := range []string{"_datasets", "_values", "_geometryController"} {
		var n int
		require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table))
		assert.Equal(t, 1, n, table)
	}
}

func TestReopenSkipsAppliedMigrations(t *testing.T) {
	db, path := openTemp(t)
	require.NoError(t, db.Close())

	again, err := Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	defer again.Close()

	var n int
	require.NoError(t, again.Get(&n, "SELECT COUNT(*) FROM migrations"))
	assert.Equal(t, 3, n)
}

func TestForeignKeysAreEnforced(t *testing.T) {
	db, _ := openTemp(t)

	_, err := db.Exec("INSERT INTO _values (DATASET_ID, SEQ, VALUE) VALUES ('missing', 0, 1.5)")
	assert.Error(t, err)
}

func TestTransactionRollsBack(t *testing.T) {
	db, _ := openTemp(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := Transaction(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO _datasets (_id, NAME) VALUES ('a', 'A')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM _datasets"))
	assert.Equal(t, 0, n)

	err = Transaction(ctx, db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO _datasets (_id, NAME) VALUES ('a', 'A')")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM _datasets"))
	assert.Equal(t, 1, n)
}
