package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/focuslog/internal/domain"
)

const historyTaskWidth = 48

// FormatHistory renders task history entries as a table.
func FormatHistory(entries []*domain.TaskHistoryEntry, now time.Time) string {
	if len(entries) == 0 {
		return Dim("No task history yet.") + "\n"
	}
	headers := []string{"TASK", "USES", "LAST USED", "FIRST USED"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			Truncate(e.TaskText, historyTaskWidth),
			fmt.Sprintf("%d", e.UsageCount),
			HumanTimestamp(e.LastUsed, now),
			Dim(e.FirstUsed.Format("2006-01-02")),
		})
	}
	return RenderTable(headers, rows)
}
