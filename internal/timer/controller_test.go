package timer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/alexanderramin/focuslog/internal/journal"
	"github.com/alexanderramin/focuslog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t        *testing.T
	dir      string
	origin   time.Time
	clock    *testutil.ManualClock
	sched    *testutil.ManualScheduler
	notifier *testutil.RecordingNotifier
	settings *testutil.MemorySettings
	store    *testutil.MemorySessionStore
	history  *testutil.RecordingHistory
	journal  Journal
	ctrl     *Controller
	events   []Event
}

func newHarness(t *testing.T, now time.Time, opts ...testutil.SettingsOption) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		t:        t,
		dir:      dir,
		origin:   now,
		clock:    testutil.NewManualClock(now),
		sched:    &testutil.ManualScheduler{},
		notifier: &testutil.RecordingNotifier{},
		settings: &testutil.MemorySettings{Settings: testutil.NewTestSettings(dir, opts...)},
		store:    &testutil.MemorySessionStore{},
		history:  &testutil.RecordingHistory{},
		journal:  journal.NewSynchronizer(nil),
	}
	h.ctrl = h.newController()
	return h
}

func (h *harness) newController() *Controller {
	h.t.Helper()
	ctrl, err := New(context.Background(), Options{
		Clock:     h.clock,
		Scheduler: h.sched,
		Journal:   h.journal,
		Notifier:  h.notifier,
		History:   h.history,
		Settings:  h.settings,
		Store:     h.store,
	})
	require.NoError(h.t, err)
	ctrl.Subscribe(func(e Event) { h.events = append(h.events, e) })
	return ctrl
}

func (h *harness) notePath(day time.Time) string {
	return journal.NotePath(h.dir, config.DefaultNoteDateFormat, day)
}

func (h *harness) createNote(day time.Time, content string) {
	h.t.Helper()
	require.NoError(h.t, os.WriteFile(h.notePath(day), []byte(content), 0o644))
}

func (h *harness) readNote(day time.Time) string {
	h.t.Helper()
	data, err := os.ReadFile(h.notePath(day))
	require.NoError(h.t, err)
	return string(data)
}

// tick advances the clock one second at a time, firing the countdown every
// second and the flush whenever a whole flush interval has passed.
func (h *harness) tick(seconds int) {
	flush := h.settings.Settings.FlushInterval()
	for range seconds {
		h.clock.Advance(time.Second)
		h.sched.Fire(time.Second)
		if h.clock.Now().Sub(h.origin)%flush == 0 {
			h.sched.Fire(flush)
		}
	}
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, e := range h.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (h *harness) last() Event {
	require.NotEmpty(h.t, h.events)
	return h.events[len(h.events)-1]
}

var day1 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestStart_WritesInProgressEntry(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "# Day\n")

	require.NoError(t, h.ctrl.Start(context.Background(), "Draft memo", ""))

	assert.Equal(t, "# Day\n\n# Pomodoro Sessions\n- 09:00 - 09:01 Draft memo  20250310090000000\n", h.readNote(day1))
	assert.Equal(t, domain.TimerRunning, h.ctrl.Countdown().State)
	assert.Equal(t, 25*time.Minute, h.ctrl.Countdown().TimeLeft)
	assert.Equal(t, []string{"Draft memo"}, h.settings.SavedTasks)
	require.NotNil(t, h.store.Active)
	assert.Equal(t, "20250310090000000", h.store.Active.TimestampID)
	assert.Equal(t, 1, h.sched.Active(time.Second))
	assert.Equal(t, 1, h.sched.Active(time.Minute))
	assert.Equal(t, EventStarted, h.events[0].Kind)
	assert.Equal(t, EventTick, h.last().Kind)
}

func TestSession_FlushesAndStops(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "# Day\n")
	ctx := context.Background()

	require.NoError(t, h.ctrl.Start(ctx, "Draft memo", ""))
	h.tick(120)
	assert.Contains(t, h.readNote(day1), "- 09:00 - 09:02 Draft memo  20250310090000000\n")
	assert.Equal(t, 23*time.Minute, h.ctrl.Countdown().TimeLeft)

	h.tick(60)
	require.NoError(t, h.ctrl.Stop(ctx))

	assert.Equal(t, "# Day\n\n# Pomodoro Sessions\n- 09:00 - 09:03 Draft memo \n", h.readNote(day1))
	assert.Equal(t, domain.TimerIdle, h.ctrl.Countdown().State)
	assert.Equal(t, 25*time.Minute, h.ctrl.Countdown().TimeLeft)
	assert.Equal(t, []string{"Draft memo"}, h.history.Tasks)
	assert.Nil(t, h.store.Active)
	assert.Equal(t, 0, h.sched.Active(time.Second))
	assert.Equal(t, 0, h.sched.Active(time.Minute))
	assert.Equal(t, EventStopped, h.last().Kind)
	assert.Equal(t, domain.StopManual, h.last().Reason)

	// ticks delivered after stop change nothing
	h.tick(5)
	assert.Equal(t, 25*time.Minute, h.ctrl.Countdown().TimeLeft)
}

func TestStop_WithinStartMinuteRemovesStub(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "# Day\n")
	ctx := context.Background()

	require.NoError(t, h.ctrl.Start(ctx, "Quick", ""))
	h.tick(30)
	require.NoError(t, h.ctrl.Stop(ctx))

	content := h.readNote(day1)
	assert.NotContains(t, content, "20250310090000000")
	assert.NotContains(t, content, "- 09:00")
}

func TestSession_MultiLineTaskStaysOneEntry(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "# Day\n")
	ctx := context.Background()

	require.NoError(t, h.ctrl.Start(ctx, "line one\nline two", ""))
	h.tick(240)
	assert.Equal(t, "# Day\n\n# Pomodoro Sessions\n- 09:00 - 09:04 line one line two  20250310090000000\n", h.readNote(day1))

	require.NoError(t, h.ctrl.UpdateTask(ctx, "renamed\r\nagain"))
	h.tick(60)
	require.NoError(t, h.ctrl.Stop(ctx))
	assert.Equal(t, "# Day\n\n# Pomodoro Sessions\n- 09:00 - 09:05 renamed  again \n", h.readNote(day1))
}

func TestFlush_JournalFailureKeepsSessionRunning(t *testing.T) {
	h := newHarness(t, day1)
	failing := &testutil.FailingJournal{Journal: journal.NewSynchronizer(nil), Err: errors.New("disk full")}
	h.journal = failing
	h.ctrl = h.newController()
	h.createNote(day1, "# Day\n")
	ctx := context.Background()

	require.NoError(t, h.ctrl.Start(ctx, "x", ""))
	h.tick(60)
	require.NotNil(t, h.store.Active)
	flushed := h.store.Active.LastFlushedAt
	assert.Equal(t, day1.Add(time.Minute), flushed)

	failing.Fail(true)
	h.tick(120)
	assert.Equal(t, 2, failing.Failures())
	assert.Equal(t, domain.TimerRunning, h.ctrl.Countdown().State)
	assert.Equal(t, 22*time.Minute, h.ctrl.Countdown().TimeLeft)
	assert.Equal(t, flushed, h.store.Active.LastFlushedAt)
	assert.Contains(t, h.readNote(day1), "- 09:00 - 09:01 x  20250310090000000\n")

	failing.Fail(false)
	h.tick(60)
	assert.Equal(t, "# Day\n\n# Pomodoro Sessions\n- 09:00 - 09:04 x  20250310090000000\n", h.readNote(day1))
	assert.Equal(t, day1.Add(4*time.Minute), h.store.Active.LastFlushedAt)
	assert.Equal(t, domain.TimerRunning, h.ctrl.Countdown().State)
}

func TestStart_Errors(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "")
	ctx := context.Background()

	assert.ErrorIs(t, h.ctrl.Stop(ctx), ErrNoActiveSession)
	assert.ErrorIs(t, h.ctrl.AdjustLength(5), ErrNoActiveSession)

	require.NoError(t, h.ctrl.Start(ctx, "A", ""))
	assert.ErrorIs(t, h.ctrl.Start(ctx, "B", ""), ErrSessionActive)
	assert.ErrorIs(t, h.ctrl.Reset(ctx), ErrSessionActive)
	_, err := h.ctrl.Resume(ctx)
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, "A", h.ctrl.Session().Task)
}

func TestStart_JournalMissingNotifiesOncePerDay(t *testing.T) {
	h := newHarness(t, day1)
	ctx := context.Background()

	err := h.ctrl.Start(ctx, "Draft memo", "")
	require.ErrorIs(t, err, ErrJournalMissing)
	assert.Contains(t, err.Error(), h.notePath(day1))
	assert.Equal(t, domain.TimerIdle, h.ctrl.Countdown().State)
	require.Len(t, h.notifier.All(), 1)
	assert.Contains(t, h.notifier.All()[0], "today's journal does not exist")

	h.clock.Advance(2 * time.Hour)
	require.ErrorIs(t, h.ctrl.Start(ctx, "Draft memo", ""), ErrJournalMissing)
	assert.Len(t, h.notifier.All(), 1)

	// the notice date survives a restart
	h.ctrl = h.newController()
	require.ErrorIs(t, h.ctrl.Start(ctx, "Draft memo", ""), ErrJournalMissing)
	assert.Len(t, h.notifier.All(), 1)

	h.clock.Set(day1.AddDate(0, 0, 1))
	require.ErrorIs(t, h.ctrl.Start(ctx, "Draft memo", ""), ErrJournalMissing)
	assert.Len(t, h.notifier.All(), 2)
	assert.True(t, domain.SameDay(h.store.Notice, day1.AddDate(0, 0, 1)))

	_, statErr := os.Stat(h.notePath(day1))
	assert.True(t, os.IsNotExist(statErr), "a blocked start must not create the note")
}

func TestAdjustLength_ClampsAndEntersOverrun(t *testing.T) {
	h := newHarness(t, day1, testutil.WithDefaultLength(5))
	h.createNote(day1, "")
	ctx := context.Background()

	require.NoError(t, h.ctrl.Start(ctx, "Draft memo", ""))
	h.tick(180)
	require.Equal(t, 2*time.Minute, h.ctrl.Countdown().TimeLeft)

	require.NoError(t, h.ctrl.AdjustLength(-10))
	assert.Equal(t, time.Duration(0), h.ctrl.Countdown().TimeLeft)
	assert.Equal(t, domain.TimerRunning, h.ctrl.Countdown().State)

	h.tick(1)
	assert.Equal(t, domain.TimerOverrun, h.ctrl.Countdown().State)
	assert.Equal(t, 1, h.count(EventReverseCountdownStarted))
	assert.Contains(t, h.notifier.All(), "Focus session complete.")
	assert.Contains(t, h.notifier.All(), "Timer adjusted by -10 min")
}

func TestAdjustLength_UpperBound(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "")

	require.NoError(t, h.ctrl.Start(context.Background(), "Draft memo", ""))
	require.NoError(t, h.ctrl.AdjustLength(5000))
	assert.Equal(t, time.Duration(config.MaxLengthMinutes)*time.Minute, h.ctrl.Countdown().TimeLeft)
}

func TestAdjustLength_OverrunRoundTrip(t *testing.T) {
	h := newHarness(t, day1, testutil.WithDefaultLength(5))
	h.createNote(day1, "")

	require.NoError(t, h.ctrl.Start(context.Background(), "Draft memo", ""))
	h.tick(300)
	require.Equal(t, domain.TimerOverrun, h.ctrl.Countdown().State)
	h.tick(120)
	require.Equal(t, 2*time.Minute, h.ctrl.Countdown().OverrunElapsed)

	// smaller than the overrun: stay in overrun
	require.NoError(t, h.ctrl.AdjustLength(1))
	assert.Equal(t, domain.TimerOverrun, h.ctrl.Countdown().State)
	assert.Equal(t, time.Minute, h.ctrl.Countdown().OverrunElapsed)
	assert.Equal(t, 0, h.count(EventReverseCountdownEnded))

	require.NoError(t, h.ctrl.AdjustLength(5))
	assert.Equal(t, domain.TimerRunning, h.ctrl.Countdown().State)
	assert.Equal(t, 4*time.Minute, h.ctrl.Countdown().TimeLeft)
	assert.Equal(t, time.Duration(0), h.ctrl.Countdown().OverrunElapsed)
	assert.Equal(t, 1, h.count(EventReverseCountdownEnded))

	require.NoError(t, h.ctrl.AdjustLength(1))
	assert.Equal(t, 1, h.count(EventReverseCountdownEnded))
	assert.Equal(t, 5*time.Minute, h.ctrl.Countdown().TimeLeft)
}

func TestMaxSessionLength_AutoStops(t *testing.T) {
	h := newHarness(t, day1, testutil.WithDefaultLength(5), testutil.WithMaxSessionLength(10))
	h.createNote(day1, "")

	require.NoError(t, h.ctrl.Start(context.Background(), "Draft memo", ""))
	h.tick(599)
	assert.Equal(t, domain.TimerOverrun, h.ctrl.Countdown().State)

	h.tick(1)
	assert.Equal(t, domain.TimerIdle, h.ctrl.Countdown().State)
	assert.Equal(t, "# Pomodoro Sessions\n- 09:00 - 09:10 Draft memo  [auto-stopped]", h.readNote(day1))
	assert.Equal(t, domain.StopAutoStopped, h.last().Reason)
	assert.Contains(t, h.notifier.All(), "Session auto-stopped after reaching the maximum length of 10 min.")
	assert.Equal(t, 0, h.sched.Active(time.Minute))
}

func TestRollover_ClosesSessionInPreviousDayNote(t *testing.T) {
	start := time.Date(2025, 3, 10, 23, 58, 0, 0, time.UTC)
	h := newHarness(t, start)
	h.createNote(start, "# Day\n")

	require.NoError(t, h.ctrl.Start(context.Background(), "Late work", ""))
	h.tick(60)
	assert.Contains(t, h.readNote(start), "- 23:58 - 23:59 Late work  20250310235800000")

	h.tick(60)
	assert.Equal(t, domain.TimerIdle, h.ctrl.Countdown().State)
	assert.Equal(t, "# Day\n\n# Pomodoro Sessions\n- 23:58 - 00:00 Late work \n", h.readNote(start))
	assert.Equal(t, domain.StopRollover, h.last().Reason)
	assert.Contains(t, h.notifier.All(), "A new day has started (2025-03-11). Start a new session for today.")

	_, err := os.Stat(h.notePath(start.AddDate(0, 0, 1)))
	assert.True(t, os.IsNotExist(err))
}

func TestReset_ReloadsSettings(t *testing.T) {
	h := newHarness(t, day1)
	h.settings.Settings.DefaultLengthMinutes = 40

	require.NoError(t, h.ctrl.Reset(context.Background()))
	assert.Equal(t, 40*time.Minute, h.ctrl.Countdown().TimeLeft)
	require.Len(t, h.events, 2)
	assert.Equal(t, EventReset, h.events[0].Kind)
	assert.Equal(t, EventTick, h.events[1].Kind)
	assert.Equal(t, 40*time.Minute, h.events[1].TimeLeft)
}

func TestSetLength_OverridesDefault(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "")

	h.ctrl.SetLength(50)
	assert.Equal(t, 50*time.Minute, h.ctrl.Countdown().TimeLeft)
	require.NoError(t, h.ctrl.Start(context.Background(), "Deep work", ""))
	assert.Equal(t, 50, h.ctrl.Session().LengthMinutes)

	h.ctrl.SetLength(1)
	assert.Equal(t, 50*time.Minute, h.ctrl.Countdown().TimeLeft, "running timer is untouched")
}

func TestUpdateTask_ReflectedOnNextFlush(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "")
	ctx := context.Background()

	require.NoError(t, h.ctrl.Start(ctx, "Draft", "proj"))
	require.NoError(t, h.ctrl.UpdateTask(ctx, "Review"))
	h.tick(60)

	assert.Contains(t, h.readNote(day1), "- 09:00 - 09:01 Review proj 20250310090000000")
	assert.Equal(t, []string{"Draft", "Review"}, h.settings.SavedTasks)
	assert.Equal(t, "Review", h.store.Active.Task)
}

func TestTimestampIDs_AreUnique(t *testing.T) {
	h := newHarness(t, day1)
	h.createNote(day1, "")
	ctx := context.Background()

	require.NoError(t, h.ctrl.Start(ctx, "A", ""))
	first := h.ctrl.Session().TimestampID
	require.NoError(t, h.ctrl.Stop(ctx))
	require.NoError(t, h.ctrl.Start(ctx, "B", ""))
	second := h.ctrl.Session().TimestampID

	assert.Len(t, second, 17)
	assert.Greater(t, second, first)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	h := newHarness(t, day1)
	var got []EventKind
	unsubscribe := h.ctrl.Subscribe(func(e Event) { got = append(got, e.Kind) })

	require.NoError(t, h.ctrl.Reset(context.Background()))
	unsubscribe()
	require.NoError(t, h.ctrl.Reset(context.Background()))

	assert.Equal(t, []EventKind{EventReset, EventTick}, got)
	assert.Equal(t, 4, len(h.events))
}

func TestResume_NothingRecorded(t *testing.T) {
	h := newHarness(t, day1)
	resumed, err := h.ctrl.Resume(context.Background())
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, domain.TimerIdle, h.ctrl.Countdown().State)
}

func TestResume_RestoresCountdown(t *testing.T) {
	h := newHarness(t, day1.Add(10*time.Minute+30*time.Second))
	h.store.Active = testutil.NewTestSession(day1, testutil.WithJournalPath(h.notePath(day1)))

	resumed, err := h.ctrl.Resume(context.Background())
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, domain.TimerRunning, h.ctrl.Countdown().State)
	assert.Equal(t, 14*time.Minute+30*time.Second, h.ctrl.Countdown().TimeLeft)
	assert.Equal(t, "# Pomodoro Sessions\n- 09:00 - 09:10 Test task  20250310090000000\n", h.readNote(day1))
	assert.Equal(t, 1, h.sched.Active(time.Second))
}

func TestResume_RestoresOverrun(t *testing.T) {
	h := newHarness(t, day1.Add(30*time.Minute))
	h.store.Active = testutil.NewTestSession(day1, testutil.WithJournalPath(h.notePath(day1)))

	resumed, err := h.ctrl.Resume(context.Background())
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, domain.TimerOverrun, h.ctrl.Countdown().State)
	assert.Equal(t, 5*time.Minute, h.ctrl.Countdown().OverrunElapsed)
	assert.Equal(t, 1, h.count(EventReverseCountdownStarted))
}

func TestResume_ClosesPreviousDaySession(t *testing.T) {
	yesterday := time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC)
	h := newHarness(t, day1)
	path := filepath.Join(h.dir, "2025-03-09.md")
	require.NoError(t, os.WriteFile(path, []byte("# Pomodoro Sessions\n- 22:00 - 22:40 Test task  20250309220000000\n"), 0o644))
	h.store.Active = testutil.NewTestSession(yesterday,
		testutil.WithJournalPath(path),
		testutil.WithLastFlushedAt(yesterday.Add(40*time.Minute)))

	resumed, err := h.ctrl.Resume(context.Background())
	require.NoError(t, err)
	assert.False(t, resumed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Pomodoro Sessions\n- 22:00 - 22:40 Test task \n", string(data))
	assert.Nil(t, h.store.Active)
	assert.Equal(t, []string{"Test task"}, h.history.Tasks)
	assert.Equal(t, domain.TimerIdle, h.ctrl.Countdown().State)
	require.Len(t, h.notifier.All(), 1)
}

func TestResume_ClosesSessionPastMaxLength(t *testing.T) {
	h := newHarness(t, day1.Add(150*time.Minute))
	h.store.Active = testutil.NewTestSession(day1, testutil.WithJournalPath(h.notePath(day1)))

	resumed, err := h.ctrl.Resume(context.Background())
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, "# Pomodoro Sessions\n- 09:00 - 11:00 Test task  [auto-stopped]\n", h.readNote(day1))
}
