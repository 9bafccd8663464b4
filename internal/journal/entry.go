package journal

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// AutoStoppedMarker is appended to the final entry of a session that hit
// the maximum session length.
const AutoStoppedMarker = "[auto-stopped]"

const clockLayout = "15:04"

// Entry is one session line in the journal.
type Entry struct {
	Start       time.Time
	End         time.Time
	Task        string
	Project     string
	TimestampID string // present only while the session is in progress
	AutoStopped bool
}

// FormatEntry renders e as
//
//	- HH:mm - HH:mm {task} {project}[ {timestampId}][ [auto-stopped]]
func FormatEntry(e Entry) string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(e.Start.Format(clockLayout))
	b.WriteString(" - ")
	b.WriteString(e.End.Format(clockLayout))
	b.WriteString(" ")
	b.WriteString(singleLine(e.Task))
	b.WriteString(" ")
	b.WriteString(singleLine(e.Project))
	if e.TimestampID != "" {
		b.WriteString(" ")
		b.WriteString(e.TimestampID)
	}
	if e.AutoStopped {
		b.WriteString(" ")
		b.WriteString(AutoStoppedMarker)
	}
	return b.String()
}

// singleLine folds line breaks and other control characters to spaces so
// an entry never spans more than one line of the note.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

var (
	entryPattern     = regexp.MustCompile(`^\s*- (\d{2}:\d{2}) - (\d{2}:\d{2}) ?(.*)$`)
	timestampPattern = regexp.MustCompile(`\s(\d{17})$`)
)

// ParseEntry reads a journal entry line. Start and End carry only the
// clock time (on the zero date). Task holds everything between the times
// and the optional id/marker tokens; the project column is not separable
// from a free-text task and is left empty.
func ParseEntry(line string) (Entry, bool) {
	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	start, err := time.Parse(clockLayout, m[1])
	if err != nil {
		return Entry{}, false
	}
	end, err := time.Parse(clockLayout, m[2])
	if err != nil {
		return Entry{}, false
	}

	e := Entry{Start: start, End: end}
	rest := strings.TrimRight(m[3], " \t")
	if strings.HasSuffix(rest, AutoStoppedMarker) {
		e.AutoStopped = true
		rest = strings.TrimRight(strings.TrimSuffix(rest, AutoStoppedMarker), " \t")
	}
	if id := timestampPattern.FindStringSubmatch(" " + rest); id != nil {
		e.TimestampID = id[1]
		rest = strings.TrimSuffix(rest, id[1])
	}
	e.Task = strings.TrimSpace(rest)
	return e, true
}

// Duration returns End-Start, wrapping past midnight.
func (e Entry) Duration() time.Duration {
	d := e.End.Sub(e.Start)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d
}
