package testutil

import (
	"time"

	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/google/uuid"
)

// Session options
type SessionOption func(*domain.Session)

func WithTask(task string) SessionOption {
	return func(s *domain.Session) {
		s.Task = task
	}
}

func WithProject(project string) SessionOption {
	return func(s *domain.Session) {
		s.Project = project
	}
}

func WithJournalPath(path string) SessionOption {
	return func(s *domain.Session) {
		s.JournalPath = path
	}
}

func WithLengthMinutes(m int) SessionOption {
	return func(s *domain.Session) {
		s.LengthMinutes = m
	}
}

func WithLastFlushedAt(t time.Time) SessionOption {
	return func(s *domain.Session) {
		s.LastFlushedAt = t
	}
}

// NewTestSession builds a 25 minute session starting at start with an id
// derived from it.
func NewTestSession(start time.Time, opts ...SessionOption) *domain.Session {
	s := &domain.Session{
		TimestampID:   start.Format("20060102150405") + "000",
		StartTime:     start,
		Task:          "Test task",
		JournalPath:   "journal.md",
		Header:        config.DefaultHeader,
		LengthMinutes: 25,
		LastFlushedAt: start,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings options
type SettingsOption func(*config.Settings)

func WithDefaultLength(m int) SettingsOption {
	return func(c *config.Settings) {
		c.DefaultLengthMinutes = m
	}
}

func WithMaxSessionLength(m int) SettingsOption {
	return func(c *config.Settings) {
		c.MaxSessionLengthMinutes = m
	}
}

func WithFlushInterval(m int) SettingsOption {
	return func(c *config.Settings) {
		c.FlushIntervalMinutes = m
	}
}

func WithJournalDir(dir string) SettingsOption {
	return func(c *config.Settings) {
		c.JournalPath = dir
	}
}

// NewTestSettings returns defaults with journal notes under dir.
func NewTestSettings(dir string, opts ...SettingsOption) config.Settings {
	cfg := config.Default()
	cfg.JournalPath = dir
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Task history options
type HistoryOption func(*domain.TaskHistoryEntry)

func WithUsageCount(n int) HistoryOption {
	return func(e *domain.TaskHistoryEntry) {
		e.UsageCount = n
	}
}

func WithLastUsed(t time.Time) HistoryOption {
	return func(e *domain.TaskHistoryEntry) {
		e.LastUsed = t
		if e.FirstUsed.After(t) {
			e.FirstUsed = t
		}
	}
}

func NewTestTaskHistoryEntry(text string, opts ...HistoryOption) *domain.TaskHistoryEntry {
	now := time.Now().UTC()
	e := &domain.TaskHistoryEntry{
		ID:         uuid.New().String(),
		TaskText:   text,
		UsageCount: 1,
		FirstUsed:  now,
		LastUsed:   now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
