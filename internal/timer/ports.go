package timer

import (
	"context"
	"time"

	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/domain"
)

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Scheduler is the clock source: it invokes fn every interval on the
// controller's serialized context until cancel is called. Cancel is
// synchronous; no invocation may start after it returns.
type Scheduler interface {
	Every(interval time.Duration, fn func(ctx context.Context)) (cancel func())
}

// Journal writes session entries into a journal note.
type Journal interface {
	UpsertEntry(path, header, timestampID, entryLine string) error
	RemoveEntry(path, timestampID string) (bool, error)
}

// JournalProbe checks whether a day's note exists before a start.
type JournalProbe interface {
	Exists(path string) bool
}

// Notifier receives transient user-facing messages. Fire-and-forget.
type Notifier interface {
	Notify(message string)
}

// TaskHistory records finished task labels.
type TaskHistory interface {
	RecordUsage(ctx context.Context, task string) error
}

// SettingsSource provides the settings snapshot and accepts the one field
// the controller owns.
type SettingsSource interface {
	Load() (config.Settings, error)
	SaveCurrentTask(task string) error
}

// SessionStore persists the minimal record needed to resume a session
// after a restart, plus the date of the last blocked-start notice.
// LoadActive returns nil, nil when no session is recorded.
type SessionStore interface {
	SaveActive(ctx context.Context, s *domain.Session) error
	LoadActive(ctx context.Context) (*domain.Session, error)
	ClearActive(ctx context.Context) error
	LastBlockedNotice(ctx context.Context) (time.Time, error)
	MarkBlockedNotice(ctx context.Context, at time.Time) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}

type noopHistory struct{}

func (noopHistory) RecordUsage(context.Context, string) error { return nil }

type noopStore struct{}

func (noopStore) SaveActive(context.Context, *domain.Session) error { return nil }
func (noopStore) LoadActive(context.Context) (*domain.Session, error) { return nil, nil }
func (noopStore) ClearActive(context.Context) error { return nil }
func (noopStore) LastBlockedNotice(context.Context) (time.Time, error) { return time.Time{}, nil }
func (noopStore) MarkBlockedNotice(context.Context, time.Time) error { return nil }
