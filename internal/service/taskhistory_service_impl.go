package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/focuslog/internal/db"
	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/alexanderramin/focuslog/internal/repository"
	"github.com/google/uuid"
)

// MaxTaskHistory caps the stored history; the least recently used entries
// are dropped first.
const MaxTaskHistory = 500

type taskHistoryService struct {
	history  repository.TaskHistoryRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewTaskHistoryService(
	history repository.TaskHistoryRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) TaskHistoryService {
	return &taskHistoryService{
		history:  history,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RecordUsage bumps the entry matching task, ignoring case, or adds a new
// one, then trims the history. Blank tasks are ignored.
func (s *taskHistoryService) RecordUsage(ctx context.Context, task string) (err error) {
	task = domain.NormalizeTaskText(task)
	if task == "" {
		return nil
	}
	startedAt := s.now()
	fields := map[string]any{"task": task}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "record-task-usage",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txHistory := repository.NewSQLiteTaskHistoryRepo(tx)

		entry, err := txHistory.GetByText(ctx, task)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			entry = &domain.TaskHistoryEntry{ID: uuid.New().String(), TaskText: task}
			entry.Touch(startedAt)
			if err := txHistory.Create(ctx, entry); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			entry.Touch(startedAt)
			if err := txHistory.Update(ctx, entry); err != nil {
				return err
			}
		}
		fields["usage_count"] = entry.UsageCount

		pruned, err := txHistory.Prune(ctx, MaxTaskHistory)
		if err != nil {
			return err
		}
		fields["pruned"] = pruned
		return nil
	})
}

func (s *taskHistoryService) Recent(ctx context.Context, limit int) ([]*domain.TaskHistoryEntry, error) {
	return s.history.ListRecent(ctx, limit)
}

func (s *taskHistoryService) Frequent(ctx context.Context, limit int) ([]*domain.TaskHistoryEntry, error) {
	return s.history.ListFrequent(ctx, limit)
}

func (s *taskHistoryService) All(ctx context.Context) ([]*domain.TaskHistoryEntry, error) {
	return s.history.List(ctx)
}
