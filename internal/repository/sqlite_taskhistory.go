package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/focuslog/internal/db"
	"github.com/alexanderramin/focuslog/internal/domain"
)

const taskHistoryColumns = `id, task_text, usage_count, first_used, last_used`

// SQLiteTaskHistoryRepo implements TaskHistoryRepo. Task text matching is
// case-insensitive through the column's NOCASE collation.
type SQLiteTaskHistoryRepo struct {
	db db.DBTX
}

func NewSQLiteTaskHistoryRepo(conn db.DBTX) *SQLiteTaskHistoryRepo {
	return &SQLiteTaskHistoryRepo{db: conn}
}

func (r *SQLiteTaskHistoryRepo) Create(ctx context.Context, e *domain.TaskHistoryEntry) error {
	query := `INSERT INTO task_history (` + taskHistoryColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.TaskText,
		e.UsageCount,
		formatTime(e.FirstUsed),
		formatTime(e.LastUsed),
	)
	if err != nil {
		return fmt.Errorf("inserting task history entry: %w", err)
	}
	return nil
}

func (r *SQLiteTaskHistoryRepo) GetByText(ctx context.Context, text string) (*domain.TaskHistoryEntry, error) {
	query := `SELECT ` + taskHistoryColumns + ` FROM task_history WHERE task_text = ?`
	e, err := scanTaskHistory(r.db.QueryRowContext(ctx, query, text))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task history entry %q: %w", text, ErrNotFound)
	}
	return e, err
}

// Update writes usage fields. The stored task text keeps its original casing.
func (r *SQLiteTaskHistoryRepo) Update(ctx context.Context, e *domain.TaskHistoryEntry) error {
	query := `UPDATE task_history SET usage_count = ?, first_used = ?, last_used = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.UsageCount,
		formatTime(e.FirstUsed),
		formatTime(e.LastUsed),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task history entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task history entry %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

// List returns every entry, most recently used first.
func (r *SQLiteTaskHistoryRepo) List(ctx context.Context) ([]*domain.TaskHistoryEntry, error) {
	return r.list(ctx, `ORDER BY last_used DESC`, -1)
}

func (r *SQLiteTaskHistoryRepo) ListRecent(ctx context.Context, limit int) ([]*domain.TaskHistoryEntry, error) {
	return r.list(ctx, `ORDER BY last_used DESC`, clampLimit(limit))
}

// ListFrequent orders by usage count, breaking ties by recency.
func (r *SQLiteTaskHistoryRepo) ListFrequent(ctx context.Context, limit int) ([]*domain.TaskHistoryEntry, error) {
	return r.list(ctx, `ORDER BY usage_count DESC, last_used DESC`, clampLimit(limit))
}

// Prune keeps the keep most recently used entries and deletes the rest. It
// returns the number of entries removed.
func (r *SQLiteTaskHistoryRepo) Prune(ctx context.Context, keep int) (int, error) {
	query := `DELETE FROM task_history WHERE id NOT IN (
		SELECT id FROM task_history ORDER BY last_used DESC LIMIT ?)`
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning task history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned task history: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteTaskHistoryRepo) list(ctx context.Context, order string, limit int) ([]*domain.TaskHistoryEntry, error) {
	query := `SELECT ` + taskHistoryColumns + ` FROM task_history ` + order + ` LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing task history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.TaskHistoryEntry
	for rows.Next() {
		e, err := scanTaskHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task history: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskHistory(row rowScanner) (*domain.TaskHistoryEntry, error) {
	var (
		e               domain.TaskHistoryEntry
		first, lastUsed string
	)
	if err := row.Scan(&e.ID, &e.TaskText, &e.UsageCount, &first, &lastUsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task history entry: %w", err)
	}
	var err error
	if e.FirstUsed, err = parseTime(first); err != nil {
		return nil, fmt.Errorf("parsing first_used: %w", err)
	}
	if e.LastUsed, err = parseTime(lastUsed); err != nil {
		return nil, fmt.Errorf("parsing last_used: %w", err)
	}
	return &e, nil
}
