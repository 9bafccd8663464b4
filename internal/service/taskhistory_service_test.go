package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/focuslog/internal/repository"
	"github.com/alexanderramin/focuslog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}

func setupHistory(t *testing.T) (*sql.DB, *repository.SQLiteTaskHistoryRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	return database, repository.NewSQLiteTaskHistoryRepo(database)
}

func TestRecordUsage_CreatesThenIncrements(t *testing.T) {
	database, repo := setupHistory(t)
	ctx := context.Background()
	svc := NewTaskHistoryService(repo, testutil.NewTestUoW(database))

	require.NoError(t, svc.RecordUsage(ctx, "  Draft memo "))
	require.NoError(t, svc.RecordUsage(ctx, "write SPEC"))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Draft memo", all[0].TaskText, "first casing wins")
	assert.Equal(t, 2, all[0].UsageCount)
	assert.False(t, all[0].LastUsed.Before(all[0].FirstUsed))
}

func TestRecordUsage_BlankIsNoop(t *testing.T) {
	database, repo := setupHistory(t)
	obs := &recordingObserver{}
	svc := NewTaskHistoryService(repo, testutil.NewTestUoW(database), obs)

	require.NoError(t, svc.RecordUsage(context.Background(), "   "))

	all, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, obs.events)
}

func TestRecordUsage_PrunesToLimit(t *testing.T) {
	database, repo := setupHistory(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := range MaxTaskHistory {
		e := testutil.NewTestTaskHistoryEntry(fmt.Sprintf("task %03d", i),
			testutil.WithLastUsed(base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, repo.Create(ctx, e))
	}
	obs := &recordingObserver{}
	svc := NewTaskHistoryService(repo, testutil.NewTestUoW(database), obs)

	require.NoError(t, svc.RecordUsage(ctx, "fresh"))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, MaxTaskHistory)
	assert.Equal(t, "fresh", all[0].TaskText)
	_, err = repo.GetByText(ctx, "task 000")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "record-task-usage", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 1, obs.events[0].Fields["pruned"])
}

func TestRecordUsage_RollsBackWhenPruneFails(t *testing.T) {
	database, repo := setupHistory(t)
	errPrune := errors.New("disk full")
	obs := &recordingObserver{}
	uow := &testutil.FailingExecUoW{DB: database, Match: "DELETE FROM task_history", Err: errPrune}
	svc := NewTaskHistoryService(repo, uow, obs)

	err := svc.RecordUsage(context.Background(), "Draft memo")
	require.ErrorIs(t, err, errPrune)

	all, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	require.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
}

func TestRecentAndFrequent(t *testing.T) {
	database, repo := setupHistory(t)
	ctx := context.Background()
	svc := NewTaskHistoryService(repo, testutil.NewTestUoW(database))

	for _, task := range []string{"a", "b", "b", "b", "c", "a"} {
		require.NoError(t, svc.RecordUsage(ctx, task))
	}

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "a", recent[0].TaskText)
	assert.Equal(t, "c", recent[1].TaskText)

	frequent, err := svc.Frequent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, frequent, 1)
	assert.Equal(t, "b", frequent[0].TaskText)
	assert.Equal(t, 3, frequent[0].UsageCount)
}
