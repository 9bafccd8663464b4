package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/focuslog/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func putState(ctx context.Context, tx db.DBTX, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO engine_state (key, value, updated_at) VALUES (?, ?, 'now')`, key, value)
	return err
}

func readState(t *testing.T, uow *db.SQLiteUnitOfWork, key string) (string, bool) {
	t.Helper()
	var value string
	var found bool
	require.NoError(t, uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, `SELECT value FROM engine_state WHERE key = ?`, key).Scan(&value); err == nil {
			found = true
		}
		return nil
	}))
	return value, found
}

func TestWithinTx_Commits(t *testing.T) {
	uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return putState(ctx, tx, "k1", "v1")
	})
	require.NoError(t, err)

	value, found := readState(t, uow, "k1")
	assert.True(t, found)
	assert.Equal(t, "v1", value)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	uow := newUoW(t)
	errBoom := errors.New("boom")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := putState(ctx, tx, "k2", "v2"); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, found := readState(t, uow, "k2")
	assert.False(t, found)
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	uow := newUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = putState(ctx, tx, "k3", "v3")
			panic("boom")
		})
	})

	_, found := readState(t, uow, "k3")
	assert.False(t, found)
}
