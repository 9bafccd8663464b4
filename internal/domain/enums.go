package domain

type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerOverrun TimerState = "overrun"
)

type StopReason string

const (
	StopManual      StopReason = "manual"
	StopAutoStopped StopReason = "auto_stopped"
	StopRollover    StopReason = "rollover"
)
