package cli

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/alexanderramin/focuslog/internal/teatest"
	"github.com/alexanderramin/focuslog/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeControls records calls and serves a snapshot the test controls.
type fakeControls struct {
	mu    sync.Mutex
	snap  timerSnapshot
	calls []string
	err   error

	adjusts []int
	lengths []int
	tasks   []string
	started []string
}

func (f *fakeControls) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeControls) Start(task, project string) error {
	f.mu.Lock()
	f.started = append(f.started, task+"|"+project)
	f.snap.Countdown.State = domain.TimerRunning
	f.snap.Session = &domain.Session{Task: task, Project: project, LengthMinutes: 25}
	f.mu.Unlock()
	return f.record("start")
}

func (f *fakeControls) Stop() error {
	f.mu.Lock()
	f.snap.Countdown = domain.Countdown{State: domain.TimerIdle, TimeLeft: 25 * time.Minute}
	f.snap.Session = nil
	f.mu.Unlock()
	return f.record("stop")
}

func (f *fakeControls) Reset() error { return f.record("reset") }

func (f *fakeControls) Adjust(delta int) error {
	f.mu.Lock()
	f.adjusts = append(f.adjusts, delta)
	f.mu.Unlock()
	return f.record("adjust")
}

func (f *fakeControls) SetLength(minutes int) error {
	f.mu.Lock()
	f.lengths = append(f.lengths, minutes)
	f.snap.Countdown.TimeLeft = time.Duration(minutes) * time.Minute
	f.mu.Unlock()
	return f.record("length")
}

func (f *fakeControls) UpdateTask(task string) error {
	f.mu.Lock()
	f.tasks = append(f.tasks, task)
	if f.snap.Session != nil {
		f.snap.Session.Task = task
	}
	f.mu.Unlock()
	return f.record("edit")
}

func (f *fakeControls) Snapshot() (timerSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snap
	if snap.Session != nil {
		s := *snap.Session
		snap.Session = &s
	}
	return snap, nil
}

func runningSnapshot() timerSnapshot {
	return timerSnapshot{
		Countdown: domain.Countdown{State: domain.TimerRunning, TimeLeft: 25 * time.Minute},
		Session: &domain.Session{
			Task:          "Write docs",
			Project:       "focuslog",
			JournalPath:   "/notes/2025-03-10.md",
			StartTime:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			LengthMinutes: 25,
		},
	}
}

func newDriver(t *testing.T, f *fakeControls) *teatest.Driver {
	t.Helper()
	snap, err := f.Snapshot()
	require.NoError(t, err)
	d := teatest.New(t, newTimerModel(f, snap), teatest.WithSize(100, 30))
	d.DrainInit()
	return d
}

func TestTimerModel_RendersRunningSession(t *testing.T) {
	d := newDriver(t, &fakeControls{snap: runningSnapshot()})

	d.RequireView("● RUNNING", "25:00", "Write docs", "focuslog", "09:00", "/notes/2025-03-10.md", "s stop")
}

func TestTimerModel_FollowsEvents(t *testing.T) {
	d := newDriver(t, &fakeControls{snap: runningSnapshot()})

	d.Send(timerEventMsg{event: timer.Event{Kind: timer.EventTick, TimeLeft: 24*time.Minute + 59*time.Second}})
	d.RequireView("24:59")

	d.Send(timerEventMsg{event: timer.Event{Kind: timer.EventReverseCountdownStarted}})
	d.Send(timerEventMsg{event: timer.Event{Kind: timer.EventOverrunTick, Elapsed: 90 * time.Second}})
	d.RequireView("● OVERRUN", "-01:30")

	d.Send(timerEventMsg{event: timer.Event{Kind: timer.EventReverseCountdownEnded}})
	d.Send(timerEventMsg{event: timer.Event{Kind: timer.EventTick, TimeLeft: 4 * time.Minute}})
	d.RequireView("● RUNNING", "04:00")
}

func TestTimerModel_StoppedByEngineShowsReason(t *testing.T) {
	d := newDriver(t, &fakeControls{snap: runningSnapshot()})

	d.Send(timerEventMsg{event: timer.Event{Kind: timer.EventStopped, Reason: domain.StopAutoStopped}})

	d.RequireView("● IDLE", "Session ended: auto stopped", "enter new session")
	assert.False(t, d.Quitting)
}

func TestTimerModel_AdjustKeys(t *testing.T) {
	f := &fakeControls{snap: runningSnapshot()}
	d := newDriver(t, f)

	d.PressKey("+")
	d.PressKey("=")
	d.PressKey("-")

	assert.Equal(t, []int{5, 5, -5}, f.adjusts)
}

func TestTimerModel_StopKeepsViewOpen(t *testing.T) {
	f := &fakeControls{snap: runningSnapshot()}
	d := newDriver(t, f)

	d.PressKey("s")

	assert.Equal(t, []string{"stop"}, f.calls)
	assert.False(t, d.Quitting)
	d.RequireView("● IDLE", "Write docs")
}

func TestTimerModel_QuitWhileRunningStopsFirst(t *testing.T) {
	f := &fakeControls{snap: runningSnapshot()}
	d := newDriver(t, f)

	d.PressKey("q")

	assert.Equal(t, []string{"stop"}, f.calls)
	assert.True(t, d.Quitting)
}

func TestTimerModel_CtrlCWhileIdleQuits(t *testing.T) {
	f := &fakeControls{snap: timerSnapshot{Countdown: domain.Countdown{State: domain.TimerIdle, TimeLeft: 25 * time.Minute}}}
	d := newDriver(t, f)

	d.PressKey("ctrl+c")

	assert.Empty(t, f.calls)
	assert.True(t, d.Quitting)
}

func TestTimerModel_EditTask(t *testing.T) {
	f := &fakeControls{snap: runningSnapshot()}
	d := newDriver(t, f)

	d.PressKey("e")
	d.RequireView("task › Write docs")
	d.Type("2")
	d.PressKey("enter")

	assert.Equal(t, []string{"Write docs2"}, f.tasks)
	d.RequireView("Write docs2")
}

func TestTimerModel_EditTaskCancel(t *testing.T) {
	f := &fakeControls{snap: runningSnapshot()}
	d := newDriver(t, f)

	d.PressKey("e")
	d.Type("xyz")
	d.PressKey("esc")

	assert.Empty(t, f.tasks)
	d.RequireView("Write docs")
	assert.NotContains(t, d.View(), "xyz")
}

func TestTimerModel_IdleRestartAndResize(t *testing.T) {
	f := &fakeControls{snap: runningSnapshot()}
	d := newDriver(t, f)
	d.PressKey("s")

	d.PressKey("+")
	assert.Equal(t, []int{30}, f.lengths)
	d.RequireView("30:00")

	d.PressKey("enter")
	assert.Equal(t, []string{"Write docs|focuslog"}, f.started)
	d.RequireView("● RUNNING")
}

func TestTimerModel_ShowsErrorsAndNotices(t *testing.T) {
	f := &fakeControls{snap: runningSnapshot(), err: errors.New("journal locked")}
	d := newDriver(t, f)

	d.PressKey("+")
	d.RequireView("Error: journal locked")

	d.Send(noticeMsg("Timer adjusted by +5 min"))
	d.RequireView("Timer adjusted by +5 min")
}
