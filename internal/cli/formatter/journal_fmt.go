package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/focuslog/internal/journal"
)

// FormatJournalSection renders the session lines of a journal section with
// a total. Lines that are not session entries are skipped; an entry still
// carrying its timestamp is marked as in progress.
func FormatJournalSection(path string, lines []string) string {
	var (
		rows  [][]string
		total time.Duration
	)
	for _, line := range lines {
		e, ok := journal.ParseEntry(line)
		if !ok {
			continue
		}
		d := e.Duration()
		total += d

		note := ""
		switch {
		case e.TimestampID != "":
			note = StyleGreen.Render("in progress")
		case e.AutoStopped:
			note = StyleYellow.Render("auto-stopped")
		}
		rows = append(rows, []string{
			e.Start.Format("15:04"),
			e.End.Format("15:04"),
			Minutes(d),
			e.Task,
			note,
		})
	}

	var b strings.Builder
	b.WriteString(Dim(path) + "\n\n")
	if len(rows) == 0 {
		b.WriteString(Dim("No sessions recorded.") + "\n")
		return b.String()
	}
	b.WriteString(RenderTable([]string{"START", "END", "TIME", "TASK", ""}, rows))
	b.WriteString(fmt.Sprintf("\n%s %s\n", Bold("Total"), Minutes(total)))
	return b.String()
}
