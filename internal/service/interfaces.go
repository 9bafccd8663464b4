package service

import (
	"context"

	"github.com/alexanderramin/focuslog/internal/domain"
)

// TaskHistoryService keeps the list of task labels offered for reuse.
type TaskHistoryService interface {
	RecordUsage(ctx context.Context, task string) error
	Recent(ctx context.Context, limit int) ([]*domain.TaskHistoryEntry, error)
	Frequent(ctx context.Context, limit int) ([]*domain.TaskHistoryEntry, error)
	All(ctx context.Context) ([]*domain.TaskHistoryEntry, error)
}
