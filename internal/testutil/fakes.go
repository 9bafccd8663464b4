package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/domain"
)

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// ManualScheduler records Every registrations and runs them on Fire.
type ManualScheduler struct {
	regs []*manualRegistration
}

type manualRegistration struct {
	interval  time.Duration
	fn        func(context.Context)
	cancelled bool
}

func (s *ManualScheduler) Every(interval time.Duration, fn func(context.Context)) func() {
	r := &manualRegistration{interval: interval, fn: fn}
	s.regs = append(s.regs, r)
	return func() { r.cancelled = true }
}

// Fire invokes every live registration with the given interval and returns
// how many ran. A registration cancelled by an earlier callback is skipped.
func (s *ManualScheduler) Fire(interval time.Duration) int {
	snapshot := append([]*manualRegistration(nil), s.regs...)
	n := 0
	for _, r := range snapshot {
		if r.cancelled || r.interval != interval {
			continue
		}
		r.fn(context.Background())
		n++
	}
	return n
}

// Active counts live registrations with the given interval.
func (s *ManualScheduler) Active(interval time.Duration) int {
	n := 0
	for _, r := range s.regs {
		if !r.cancelled && r.interval == interval {
			n++
		}
	}
	return n
}

// RecordingNotifier keeps every message it is handed.
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []string
}

func (n *RecordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, message)
}

func (n *RecordingNotifier) All() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Messages...)
}

// MemorySettings serves a fixed settings snapshot.
type MemorySettings struct {
	Settings   config.Settings
	SavedTasks []string
	LoadErr    error
}

func (m *MemorySettings) Load() (config.Settings, error) {
	if m.LoadErr != nil {
		return config.Settings{}, m.LoadErr
	}
	return m.Settings, nil
}

func (m *MemorySettings) SaveCurrentTask(task string) error {
	m.Settings.CurrentTaskText = task
	m.SavedTasks = append(m.SavedTasks, task)
	return nil
}

// MemorySessionStore keeps the resume record in memory.
type MemorySessionStore struct {
	Active *domain.Session
	Notice time.Time
	Saves  int
}

func (m *MemorySessionStore) SaveActive(_ context.Context, s *domain.Session) error {
	cp := *s
	m.Active = &cp
	m.Saves++
	return nil
}

func (m *MemorySessionStore) LoadActive(context.Context) (*domain.Session, error) {
	if m.Active == nil {
		return nil, nil
	}
	cp := *m.Active
	return &cp, nil
}

func (m *MemorySessionStore) ClearActive(context.Context) error {
	m.Active = nil
	return nil
}

func (m *MemorySessionStore) LastBlockedNotice(context.Context) (time.Time, error) {
	return m.Notice, nil
}

func (m *MemorySessionStore) MarkBlockedNotice(_ context.Context, at time.Time) error {
	m.Notice = at
	return nil
}

// RecordingHistory keeps the tasks passed to RecordUsage.
type RecordingHistory struct {
	Tasks []string
}

func (h *RecordingHistory) RecordUsage(_ context.Context, task string) error {
	h.Tasks = append(h.Tasks, task)
	return nil
}
