package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/focuslog/internal/domain"
)

// Clock renders d as mm:ss, or h:mm:ss from one hour up. Sub-second
// remainders are dropped.
func Clock(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Countdown renders the timer face: time left while running, negative
// overrun time once the countdown has passed zero.
func Countdown(c domain.Countdown) string {
	if c.State == domain.TimerOverrun {
		return StateStyle(c.State).Render("-" + Clock(c.OverrunElapsed))
	}
	return StateStyle(c.State).Render(Clock(c.TimeLeft))
}

// Minutes renders a duration rounded down to whole minutes: 25m, 1h 05m.
func Minutes(d time.Duration) string {
	total := int(d / time.Minute)
	if total <= 0 {
		return "0m"
	}
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}
