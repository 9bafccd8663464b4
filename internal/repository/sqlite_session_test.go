package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/focuslog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_LoadActive_NoneRecorded(t *testing.T) {
	repo := NewSQLiteSessionRepo(testutil.NewTestDB(t))

	s, err := repo.LoadActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSessionRepo_SaveAndLoadActive(t *testing.T) {
	repo := NewSQLiteSessionRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 123000000, time.UTC)

	sess := testutil.NewTestSession(start,
		testutil.WithTask("Draft memo"),
		testutil.WithProject("focuslog"),
		testutil.WithJournalPath("/notes/2025-03-10.md"),
		testutil.WithLengthMinutes(50),
		testutil.WithLastFlushedAt(start.Add(3*time.Minute)),
	)
	require.NoError(t, repo.SaveActive(ctx, sess))

	got, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.TimestampID, got.TimestampID)
	assert.True(t, start.Equal(got.StartTime), "start %v != %v", start, got.StartTime)
	assert.True(t, sess.LastFlushedAt.Equal(got.LastFlushedAt))
	assert.Equal(t, time.Local, got.StartTime.Location())
	assert.Equal(t, "Draft memo", got.Task)
	assert.Equal(t, "focuslog", got.Project)
	assert.Equal(t, "/notes/2025-03-10.md", got.JournalPath)
	assert.Equal(t, sess.Header, got.Header)
	assert.Equal(t, 50, got.LengthMinutes)
}

func TestSessionRepo_SaveActive_ReplacesRecord(t *testing.T) {
	repo := NewSQLiteSessionRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveActive(ctx, testutil.NewTestSession(start, testutil.WithTask("first"))))
	require.NoError(t, repo.SaveActive(ctx, testutil.NewTestSession(start.Add(time.Hour), testutil.WithTask("second"))))

	got, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Task)
	assert.Equal(t, "20250310100000000", got.TimestampID)
}

func TestSessionRepo_ClearActive(t *testing.T) {
	repo := NewSQLiteSessionRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SaveActive(ctx, testutil.NewTestSession(time.Now())))
	require.NoError(t, repo.ClearActive(ctx))
	require.NoError(t, repo.ClearActive(ctx))

	got, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepo_BlockedNotice(t *testing.T) {
	repo := NewSQLiteSessionRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	got, err := repo.LastBlockedNotice(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	first := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkBlockedNotice(ctx, first))
	second := first.AddDate(0, 0, 1)
	require.NoError(t, repo.MarkBlockedNotice(ctx, second))

	got, err = repo.LastBlockedNotice(ctx)
	require.NoError(t, err)
	assert.True(t, second.Equal(got))
}
