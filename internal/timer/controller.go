// Package timer owns the focus-session state machine. All methods must be
// called from a single serialized context (see Loop); the controller does no
// locking of its own.
package timer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/alexanderramin/focuslog/internal/journal"
)

var (
	ErrSessionActive   = errors.New("a session is already active")
	ErrNoActiveSession = errors.New("no active session")
	ErrJournalMissing  = errors.New("today's journal note does not exist")
)

const (
	countdownInterval = time.Second
	timestampLayout   = "20060102150405"
)

const (
	msgSessionComplete = "Focus session complete."
	msgAutoStopped     = "Session auto-stopped after reaching the maximum length of %d min."
	msgJournalMissing  = "Cannot start timer: today's journal does not exist. Create it first: %s"
	msgNewDay          = "A new day has started (%s). Start a new session for today."
	msgAbandoned       = "The unfinished session from %s was closed at %s."
	msgAdjusted        = "Timer adjusted by %+d min"
)

// Options wires the controller's collaborators. Scheduler, Journal and
// Settings are required.
type Options struct {
	Clock     Clock
	Scheduler Scheduler
	Journal   Journal
	Probe     JournalProbe
	Notifier  Notifier
	History   TaskHistory
	Settings  SettingsSource
	Store     SessionStore
	Logger    *slog.Logger
}

// Controller runs at most one session at a time and mirrors its progress
// into the day's journal note.
type Controller struct {
	clock    Clock
	sched    Scheduler
	journal  Journal
	probe    JournalProbe
	notifier Notifier
	history  TaskHistory
	settings SettingsSource
	store    SessionStore
	logger   *slog.Logger

	cfg            config.Settings
	lengthOverride int

	state          domain.TimerState
	session        *domain.Session
	timeLeft       time.Duration
	overrunElapsed time.Duration

	cancelCountdown func()
	cancelFlush     func()

	lastBlockedNotice time.Time
	lastID            string

	subscribers      []subscriber
	nextSubscriberID int
}

// New builds an idle controller from a fresh settings snapshot.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Scheduler == nil || opts.Journal == nil || opts.Settings == nil {
		return nil, errors.New("timer: scheduler, journal and settings are required")
	}
	c := &Controller{
		clock:    opts.Clock,
		sched:    opts.Scheduler,
		journal:  opts.Journal,
		probe:    opts.Probe,
		notifier: opts.Notifier,
		history:  opts.History,
		settings: opts.Settings,
		store:    opts.Store,
		logger:   opts.Logger,
		state:    domain.TimerIdle,
	}
	if c.clock == nil {
		c.clock = RealClock{}
	}
	if c.probe == nil {
		c.probe = journal.FileProbe{}
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if c.history == nil {
		c.history = noopHistory{}
	}
	if c.store == nil {
		c.store = noopStore{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg, err := c.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	c.cfg = cfg
	c.timeLeft = c.length()

	notice, err := c.store.LastBlockedNotice(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "reading last blocked notice", "error", err)
	}
	c.lastBlockedNotice = notice
	return c, nil
}

// Countdown returns a snapshot of the timer.
func (c *Controller) Countdown() domain.Countdown {
	return domain.Countdown{
		State:          c.state,
		TimeLeft:       c.timeLeft,
		OverrunElapsed: c.overrunElapsed,
	}
}

// Session returns a copy of the active session, or nil when idle.
func (c *Controller) Session() *domain.Session {
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Settings returns the current settings snapshot.
func (c *Controller) Settings() config.Settings {
	return c.cfg
}

func (c *Controller) running() bool {
	return c.state == domain.TimerRunning || c.state == domain.TimerOverrun
}

// length is the countdown length for the next session.
func (c *Controller) length() time.Duration {
	if c.lengthOverride > 0 {
		return time.Duration(c.lengthOverride) * time.Minute
	}
	return c.cfg.DefaultLength()
}

// Reload refreshes the settings snapshot. A running session keeps its
// journal path and header.
func (c *Controller) Reload() error {
	cfg, err := c.settings.Load()
	if err != nil {
		return fmt.Errorf("reloading settings: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *Controller) reloadOrKeep(ctx context.Context) {
	if err := c.Reload(); err != nil {
		c.logger.WarnContext(ctx, "keeping previous settings", "error", err)
	}
}

// SetLength overrides the configured session length for this process. Zero
// clears the override. An idle timer is reset to the new length.
func (c *Controller) SetLength(minutes int) {
	if minutes <= 0 {
		c.lengthOverride = 0
	} else {
		c.lengthOverride = config.ClampLength(minutes)
	}
	if c.state == domain.TimerIdle {
		c.timeLeft = c.length()
		c.emit(Event{Kind: EventTick, TimeLeft: c.timeLeft})
	}
}

// Start begins a session for task. It refuses to run when today's journal
// note is missing; the user is told so at most once per calendar day.
func (c *Controller) Start(ctx context.Context, task, project string) error {
	if c.state != domain.TimerIdle {
		return ErrSessionActive
	}
	c.reloadOrKeep(ctx)

	now := c.clock.Now()
	path := journal.NotePath(c.cfg.JournalPath, c.cfg.NoteDateFormat, now)
	if !c.probe.Exists(path) {
		c.noticeBlocked(ctx, now, path)
		return fmt.Errorf("%w: %s", ErrJournalMissing, path)
	}

	c.timeLeft = c.length()
	c.overrunElapsed = 0
	c.session = &domain.Session{
		TimestampID:   c.mintTimestampID(now),
		StartTime:     now,
		Task:          task,
		Project:       project,
		JournalPath:   path,
		Header:        c.cfg.Header,
		LengthMinutes: int(c.timeLeft / time.Minute),
		LastFlushedAt: now,
	}
	if err := c.writeInProgress(now.Add(c.cfg.FlushInterval())); err != nil {
		c.logger.ErrorContext(ctx, "writing initial journal entry", "path", path, "error", err)
	}
	c.saveActive(ctx)
	if err := c.settings.SaveCurrentTask(task); err != nil {
		c.logger.WarnContext(ctx, "saving current task", "error", err)
	}

	c.arm()
	c.state = domain.TimerRunning
	c.logger.InfoContext(ctx, "session started",
		"id", c.session.TimestampID, "task", task, "project", project, "journal", path)
	c.emit(Event{Kind: EventStarted})
	c.emit(Event{Kind: EventTick, TimeLeft: c.timeLeft})
	return nil
}

// Stop ends the active session and writes its final journal entry.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.running() {
		return ErrNoActiveSession
	}
	c.stop(ctx, domain.StopManual)
	return nil
}

// Reset reloads settings and rewinds an idle timer to the session length.
func (c *Controller) Reset(ctx context.Context) error {
	if c.running() {
		return ErrSessionActive
	}
	c.reloadOrKeep(ctx)
	c.timeLeft = c.length()
	c.overrunElapsed = 0
	c.emit(Event{Kind: EventReset})
	c.emit(Event{Kind: EventTick, TimeLeft: c.timeLeft})
	return nil
}

// AdjustLength shifts the countdown by deltaMinutes. In overrun, a positive
// delta larger than the overrun returns the session to its countdown with the
// remainder.
func (c *Controller) AdjustLength(deltaMinutes int) error {
	delta := time.Duration(deltaMinutes) * time.Minute
	switch c.state {
	case domain.TimerRunning:
		c.timeLeft = clampTimeLeft(c.timeLeft + delta)
		c.emit(Event{Kind: EventTick, TimeLeft: c.timeLeft})
	case domain.TimerOverrun:
		c.overrunElapsed -= delta
		if c.overrunElapsed <= 0 {
			c.timeLeft = clampTimeLeft(-c.overrunElapsed)
			c.overrunElapsed = 0
			c.state = domain.TimerRunning
			c.emit(Event{Kind: EventReverseCountdownEnded})
			c.emit(Event{Kind: EventTick, TimeLeft: c.timeLeft})
		} else {
			c.emit(Event{Kind: EventOverrunTick, Elapsed: c.overrunElapsed})
		}
	default:
		return ErrNoActiveSession
	}
	c.notifier.Notify(fmt.Sprintf(msgAdjusted, deltaMinutes))
	return nil
}

// UpdateTask renames the active session's task and persists it as the
// current task text. The journal picks up the change on the next flush.
func (c *Controller) UpdateTask(ctx context.Context, task string) error {
	if c.session != nil {
		c.session.Task = task
		c.saveActive(ctx)
	}
	if err := c.settings.SaveCurrentTask(task); err != nil {
		return fmt.Errorf("saving current task: %w", err)
	}
	return nil
}

// Resume restores a session recorded by a previous process. A session from
// an earlier day is closed at its last flush; one past the maximum length
// is closed at the limit. Resume is a no-op when nothing was recorded.
func (c *Controller) Resume(ctx context.Context) (bool, error) {
	if c.state != domain.TimerIdle {
		return false, ErrSessionActive
	}
	s, err := c.store.LoadActive(ctx)
	if err != nil {
		return false, fmt.Errorf("loading active session: %w", err)
	}
	if s == nil {
		return false, nil
	}
	c.reloadOrKeep(ctx)
	now := c.clock.Now()
	if s.TimestampID > c.lastID {
		c.lastID = s.TimestampID
	}

	if !s.StartedOn(now) {
		end := s.LastFlushedAt
		if end.Before(s.StartTime) {
			end = s.StartTime
		}
		c.session = s
		c.closeSession(ctx, end, false)
		c.logger.InfoContext(ctx, "closed session from previous day", "id", s.TimestampID, "end", end)
		c.notifier.Notify(fmt.Sprintf(msgAbandoned, s.StartTime.Format("2006-01-02"), end.Format("15:04")))
		return false, nil
	}
	if limit := c.cfg.MaxSessionLength(); limit > 0 && now.Sub(s.StartTime) >= limit {
		c.session = s
		c.closeSession(ctx, s.StartTime.Add(limit), true)
		c.logger.InfoContext(ctx, "closed session past maximum length", "id", s.TimestampID)
		c.notifier.Notify(fmt.Sprintf(msgAutoStopped, c.cfg.MaxSessionLengthMinutes))
		return false, nil
	}

	c.session = s
	restored := s.CountdownAt(now)
	c.state = restored.State
	c.timeLeft = restored.TimeLeft
	c.overrunElapsed = restored.OverrunElapsed
	c.arm()
	c.emit(Event{Kind: EventStarted})
	if c.state == domain.TimerRunning {
		c.emit(Event{Kind: EventTick, TimeLeft: c.timeLeft})
	} else {
		c.emit(Event{Kind: EventReverseCountdownStarted})
		c.emit(Event{Kind: EventOverrunTick, Elapsed: c.overrunElapsed})
	}
	c.logger.InfoContext(ctx, "session resumed", "id", s.TimestampID, "state", c.state)
	c.flush(ctx, now)
	return true, nil
}

func (c *Controller) arm() {
	c.disarm()
	c.cancelCountdown = c.sched.Every(countdownInterval, c.onCountdownTick)
	c.cancelFlush = c.sched.Every(c.cfg.FlushInterval(), c.onFlushTick)
}

func (c *Controller) disarm() {
	if c.cancelCountdown != nil {
		c.cancelCountdown()
		c.cancelCountdown = nil
	}
	if c.cancelFlush != nil {
		c.cancelFlush()
		c.cancelFlush = nil
	}
}

func (c *Controller) onCountdownTick(ctx context.Context) {
	switch c.state {
	case domain.TimerRunning:
		if c.timeLeft > 0 {
			c.timeLeft = clampTimeLeft(c.timeLeft - countdownInterval)
			c.emit(Event{Kind: EventTick, TimeLeft: c.timeLeft})
			if c.maxLengthReached() {
				c.stop(ctx, domain.StopAutoStopped)
				return
			}
		}
		if c.timeLeft == 0 {
			c.enterOverrun(ctx)
		}
	case domain.TimerOverrun:
		c.overrunElapsed += countdownInterval
		c.emit(Event{Kind: EventOverrunTick, Elapsed: c.overrunElapsed})
		if c.maxLengthReached() {
			c.stop(ctx, domain.StopAutoStopped)
		}
	}
}

func (c *Controller) enterOverrun(ctx context.Context) {
	c.state = domain.TimerOverrun
	c.overrunElapsed = 0
	c.logger.InfoContext(ctx, "countdown finished", "id", c.session.TimestampID)
	c.emit(Event{Kind: EventReverseCountdownStarted})
	c.notifier.Notify(msgSessionComplete)
}

func (c *Controller) maxLengthReached() bool {
	limit := c.cfg.MaxSessionLength()
	return limit > 0 && c.clock.Now().Sub(c.session.StartTime) >= limit
}

func (c *Controller) onFlushTick(ctx context.Context) {
	if !c.running() {
		return
	}
	now := c.clock.Now()
	if !c.session.StartedOn(now) {
		c.rollover(ctx, now)
		return
	}
	c.flush(ctx, now)
}

// flush rewrites the in-progress entry with end = now. Inside the start
// minute the initial entry already covers the session.
func (c *Controller) flush(ctx context.Context, now time.Time) {
	s := c.session
	if withinStartMinute(s, now) {
		return
	}
	if err := c.writeInProgress(now); err != nil {
		c.logger.ErrorContext(ctx, "flushing journal entry", "path", s.JournalPath, "error", err)
		return
	}
	s.LastFlushedAt = now
	c.saveActive(ctx)
}

// rollover closes a session that crossed midnight into the note it started
// in and asks the user to start over for the new day.
func (c *Controller) rollover(ctx context.Context, now time.Time) {
	c.logger.InfoContext(ctx, "day boundary crossed",
		"id", c.session.TimestampID, "started", c.session.StartTime.Format("2006-01-02"))
	c.stop(ctx, domain.StopRollover)
	c.notifier.Notify(fmt.Sprintf(msgNewDay, now.Format("2006-01-02")))
}

func (c *Controller) stop(ctx context.Context, reason domain.StopReason) {
	c.disarm()
	now := c.clock.Now()
	id := c.session.TimestampID
	c.closeSession(ctx, now, reason == domain.StopAutoStopped)

	c.state = domain.TimerIdle
	c.timeLeft = c.length()
	c.overrunElapsed = 0
	c.logger.InfoContext(ctx, "session stopped", "id", id, "reason", reason)
	c.emit(Event{Kind: EventTick, TimeLeft: c.timeLeft})
	c.emit(Event{Kind: EventStopped, Reason: reason})
	if reason == domain.StopAutoStopped {
		c.notifier.Notify(fmt.Sprintf(msgAutoStopped, c.cfg.MaxSessionLengthMinutes))
	}
}

// closeSession writes the final entry without the timestamp token, records
// the task and forgets the resume record.
func (c *Controller) closeSession(ctx context.Context, end time.Time, autoStopped bool) {
	s := c.session
	c.session = nil

	if withinStartMinute(s, end) {
		if _, err := c.journal.RemoveEntry(s.JournalPath, s.TimestampID); err != nil {
			c.logger.ErrorContext(ctx, "removing stub journal entry", "path", s.JournalPath, "error", err)
		}
	} else {
		line := journal.FormatEntry(journal.Entry{
			Start:       s.StartTime,
			End:         end,
			Task:        s.Task,
			Project:     s.Project,
			AutoStopped: autoStopped,
		})
		if err := c.journal.UpsertEntry(s.JournalPath, s.Header, s.TimestampID, line); err != nil {
			c.logger.ErrorContext(ctx, "writing final journal entry", "path", s.JournalPath, "error", err)
		}
	}

	if task := strings.TrimSpace(s.Task); task != "" {
		if err := c.history.RecordUsage(ctx, task); err != nil {
			c.logger.WarnContext(ctx, "recording task usage", "task", task, "error", err)
		}
	}
	if err := c.store.ClearActive(ctx); err != nil {
		c.logger.WarnContext(ctx, "clearing active session", "error", err)
	}
}

func (c *Controller) writeInProgress(end time.Time) error {
	s := c.session
	line := journal.FormatEntry(journal.Entry{
		Start:       s.StartTime,
		End:         end,
		Task:        s.Task,
		Project:     s.Project,
		TimestampID: s.TimestampID,
	})
	return c.journal.UpsertEntry(s.JournalPath, s.Header, s.TimestampID, line)
}

func (c *Controller) saveActive(ctx context.Context) {
	if err := c.store.SaveActive(ctx, c.session); err != nil {
		c.logger.WarnContext(ctx, "saving active session", "error", err)
	}
}

func (c *Controller) noticeBlocked(ctx context.Context, now time.Time, path string) {
	c.logger.WarnContext(ctx, "start blocked: journal note missing", "path", path)
	if !c.lastBlockedNotice.IsZero() && domain.SameDay(c.lastBlockedNotice, now) {
		return
	}
	c.notifier.Notify(fmt.Sprintf(msgJournalMissing, path))
	c.lastBlockedNotice = now
	if err := c.store.MarkBlockedNotice(ctx, now); err != nil {
		c.logger.WarnContext(ctx, "saving blocked notice date", "error", err)
	}
}

// mintTimestampID renders now as yyyyMMddHHmmss plus milliseconds, bumped
// past the previous id so ids stay unique within a process.
func (c *Controller) mintTimestampID(now time.Time) string {
	id := now.Format(timestampLayout) + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
	if id <= c.lastID {
		if n, err := strconv.ParseUint(c.lastID, 10, 64); err == nil {
			id = strconv.FormatUint(n+1, 10)
		}
	}
	c.lastID = id
	return id
}

func withinStartMinute(s *domain.Session, t time.Time) bool {
	return t.Sub(s.StartTime) < time.Minute && domain.SameMinute(s.StartTime, t)
}

func clampTimeLeft(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if ceiling := time.Duration(config.MaxLengthMinutes) * time.Minute; d > ceiling {
		return ceiling
	}
	return d
}
