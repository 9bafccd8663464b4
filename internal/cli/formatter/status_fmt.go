package formatter

import (
	"strings"
	"time"

	"github.com/alexanderramin/focuslog/internal/domain"
)

const statusProgressBarWidth = 20

// FormatStatus renders the recorded session as seen at now.
func FormatStatus(s *domain.Session, now time.Time) string {
	if s == nil {
		return RenderBox("Status", Dim("No active session."))
	}
	c := s.CountdownAt(now)
	length := time.Duration(s.LengthMinutes) * time.Minute

	task := s.Task
	if task == "" {
		task = Dim("(no task)")
	}

	var b strings.Builder
	b.WriteString(StateIndicator(c.State) + "  " + Countdown(c) + "\n\n")
	b.WriteString(KeyValue("task", Bold(task)) + "\n")
	if s.Project != "" {
		b.WriteString(KeyValue("project", s.Project) + "\n")
	}
	b.WriteString(KeyValue("started", s.StartTime.Format("15:04")+" "+Dim("("+Minutes(s.Elapsed(now))+" ago)")) + "\n")
	b.WriteString(KeyValue("length", Minutes(length)) + "\n")
	b.WriteString(KeyValue("journal", Dim(s.JournalPath)) + "\n")
	b.WriteString("\n" + RenderProgress(SessionFraction(c, length), statusProgressBarWidth, c.State))
	return RenderBox("Status", b.String())
}
