package domain

import "time"

// Session is one tracked focus period. TimestampID is the idempotency key
// embedded in the in-progress journal line and never changes once minted.
type Session struct {
	TimestampID   string
	StartTime     time.Time
	Task          string
	Project       string
	JournalPath   string
	Header        string
	LengthMinutes int
	LastFlushedAt time.Time
}

// Elapsed returns the wall time since the session started.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartTime)
}

// StartedOn reports whether the session began on the same calendar day as t,
// compared in t's location.
func (s *Session) StartedOn(t time.Time) bool {
	return SameDay(s.StartTime.In(t.Location()), t)
}

// CountdownAt derives the timer phase at now from wall time alone. Manual
// adjustments made while the session ran are not recorded and so not
// reflected.
func (s *Session) CountdownAt(now time.Time) Countdown {
	length := time.Duration(s.LengthMinutes) * time.Minute
	elapsed := now.Sub(s.StartTime).Truncate(time.Second)
	if elapsed < length {
		return Countdown{State: TimerRunning, TimeLeft: length - elapsed}
	}
	return Countdown{State: TimerOverrun, OverrunElapsed: elapsed - length}
}

// Countdown is a read-only snapshot of the controller's timer.
type Countdown struct {
	State          TimerState
	TimeLeft       time.Duration
	OverrunElapsed time.Duration
}

// Running reports whether a session is active in either phase.
func (c Countdown) Running() bool {
	return c.State == TimerRunning || c.State == TimerOverrun
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMinute reports whether a and b render to the same HH:mm.
func SameMinute(a, b time.Time) bool {
	return a.Hour() == b.Hour() && a.Minute() == b.Minute()
}
