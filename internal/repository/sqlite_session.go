package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/focuslog/internal/db"
	"github.com/alexanderramin/focuslog/internal/domain"
)

const keyLastBlockedNotice = "last_blocked_notice"

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

// SaveActive replaces the resume record with s.
func (r *SQLiteSessionRepo) SaveActive(ctx context.Context, s *domain.Session) error {
	query := `INSERT INTO active_session (id, timestamp_id, started_at, task, project, journal_path,
			header, length_min, last_flushed_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timestamp_id = excluded.timestamp_id,
			started_at = excluded.started_at,
			task = excluded.task,
			project = excluded.project,
			journal_path = excluded.journal_path,
			header = excluded.header,
			length_min = excluded.length_min,
			last_flushed_at = excluded.last_flushed_at,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		s.TimestampID,
		formatTime(s.StartTime),
		s.Task,
		s.Project,
		s.JournalPath,
		s.Header,
		s.LengthMinutes,
		formatTime(s.LastFlushedAt),
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("saving active session: %w", err)
	}
	return nil
}

// LoadActive returns the resume record, or nil when no session is active.
// Times come back in the local zone so journal lines render local clock
// times.
func (r *SQLiteSessionRepo) LoadActive(ctx context.Context) (*domain.Session, error) {
	query := `SELECT timestamp_id, started_at, task, project, journal_path, header, length_min, last_flushed_at
		FROM active_session WHERE id = 1`
	var (
		s                  domain.Session
		started, lastFlush string
	)
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TimestampID,
		&started,
		&s.Task,
		&s.Project,
		&s.JournalPath,
		&s.Header,
		&s.LengthMinutes,
		&lastFlush,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning active session: %w", err)
	}
	if s.StartTime, err = parseTime(started); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if s.LastFlushedAt, err = parseTime(lastFlush); err != nil {
		return nil, fmt.Errorf("parsing last_flushed_at: %w", err)
	}
	s.StartTime = s.StartTime.Local()
	s.LastFlushedAt = s.LastFlushedAt.Local()
	return &s, nil
}

func (r *SQLiteSessionRepo) ClearActive(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM active_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing active session: %w", err)
	}
	return nil
}

// LastBlockedNotice returns when the missing-journal notice was last shown,
// or the zero time if never.
func (r *SQLiteSessionRepo) LastBlockedNotice(ctx context.Context) (time.Time, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM engine_state WHERE key = ?`, keyLastBlockedNotice).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading %s: %w", keyLastBlockedNotice, err)
	}
	t, err := parseTime(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", keyLastBlockedNotice, err)
	}
	return t.Local(), nil
}

func (r *SQLiteSessionRepo) MarkBlockedNotice(ctx context.Context, at time.Time) error {
	query := `INSERT INTO engine_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, keyLastBlockedNotice, formatTime(at), nowUTC()); err != nil {
		return fmt.Errorf("saving %s: %w", keyLastBlockedNotice, err)
	}
	return nil
}
