package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/focuslog/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░]  45% for pct in [0,1].
func RenderProgress(pct float64, width int, state domain.TimerState) string {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %3.0f%%", StateStyle(state).Render(bar), pct*100)
}

// SessionFraction is the share of the planned length already used. Overrun
// reports a full bar.
func SessionFraction(c domain.Countdown, length time.Duration) float64 {
	if c.State == domain.TimerOverrun {
		return 1
	}
	if length <= 0 {
		return 0
	}
	return 1 - float64(c.TimeLeft)/float64(length)
}
