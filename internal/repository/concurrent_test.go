package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/focuslog/internal/db"
	"github.com/alexanderramin/focuslog/internal/testutil"
	"github.com/stretchr/testify/require"
)

// newFileTestDB opens a file-backed database so every pooled connection
// sees the same state, as the CLI and a running timer do.
func newFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "focuslog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

// A status reader never sees a half-written resume record while the timer
// flushes.
func TestConcurrentAccess_StatusDuringFlush(t *testing.T) {
	database := newFileTestDB(t)
	repo := NewSQLiteSessionRepo(database)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	sess := testutil.NewTestSession(start, testutil.WithTask("Draft memo"))
	require.NoError(t, repo.SaveActive(ctx, sess))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 20; i++ {
			sess.LastFlushedAt = start.Add(time.Duration(i) * time.Minute)
			if err := repo.SaveActive(ctx, sess); err != nil {
				t.Errorf("flush %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				got, err := repo.LoadActive(ctx)
				if err != nil {
					t.Errorf("reader %d: %v", reader, err)
					return
				}
				if got == nil || got.TimestampID != sess.TimestampID || got.LastFlushedAt.Before(start) {
					t.Errorf("reader %d: inconsistent record %+v", reader, got)
					return
				}
			}
		}(r)
	}
	wg.Wait()
}
