package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/focuslog/internal/domain"
)

// SessionRepo holds the single resume record of the running session and
// small engine-wide state.
type SessionRepo interface {
	SaveActive(ctx context.Context, s *domain.Session) error
	LoadActive(ctx context.Context) (*domain.Session, error)
	ClearActive(ctx context.Context) error
	LastBlockedNotice(ctx context.Context) (time.Time, error)
	MarkBlockedNotice(ctx context.Context, at time.Time) error
}

type TaskHistoryRepo interface {
	Create(ctx context.Context, e *domain.TaskHistoryEntry) error
	GetByText(ctx context.Context, text string) (*domain.TaskHistoryEntry, error)
	Update(ctx context.Context, e *domain.TaskHistoryEntry) error
	List(ctx context.Context) ([]*domain.TaskHistoryEntry, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.TaskHistoryEntry, error)
	ListFrequent(ctx context.Context, limit int) ([]*domain.TaskHistoryEntry, error)
	Prune(ctx context.Context, keep int) (int, error)
}
