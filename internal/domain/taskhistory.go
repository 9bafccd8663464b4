package domain

import (
	"strings"
	"time"
	"unicode"
)

// TaskHistoryEntry tracks how often and how recently a task label was used.
type TaskHistoryEntry struct {
	ID         string
	TaskText   string
	UsageCount int
	FirstUsed  time.Time
	LastUsed   time.Time
}

// Touch records one more use of the task at the given time.
func (e *TaskHistoryEntry) Touch(now time.Time) {
	e.UsageCount++
	e.LastUsed = now
	if e.FirstUsed.IsZero() {
		e.FirstUsed = now
	}
}

// NormalizeTaskText folds control characters to spaces and trims surrounding
// whitespace from a task label.
func NormalizeTaskText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s))
}
