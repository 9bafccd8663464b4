package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/focuslog/internal/cli/formatter"
	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/alexanderramin/focuslog/internal/timer"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const timerProgressWidth = 30

// timerEventMsg carries a controller event forwarded from the loop.
type timerEventMsg struct{ event timer.Event }

// noticeMsg carries a notifier message forwarded from the loop.
type noticeMsg string

// controlDoneMsg reports the outcome of a control action together with a
// fresh snapshot.
type controlDoneMsg struct {
	action string
	err    error
	snap   timerSnapshot
	fresh  bool
	quit   bool
}

// timerModel is the bubbletea view over one hosted controller. Control
// actions run as Cmds so Update never waits on the loop while the loop waits
// to deliver an event.
type timerModel struct {
	controls timerControls
	keys     timerKeyMap
	help     help.Model
	input    textinput.Model

	countdown domain.Countdown
	session   *domain.Session
	lastTask  string
	project   string

	editing  bool
	busy     bool
	notice   string
	err      error
	width    int
	quitting bool
}

func newTimerModel(controls timerControls, snap timerSnapshot) timerModel {
	ti := textinput.New()
	ti.Prompt = "task › "
	ti.CharLimit = 200
	ti.PromptStyle = lipgloss.NewStyle().Foreground(formatter.ColorHeader)

	m := timerModel{
		controls: controls,
		keys:     newTimerKeyMap(),
		help:     help.New(),
		input:    ti,
	}
	m.apply(snap)
	return m
}

func (m *timerModel) apply(snap timerSnapshot) {
	m.countdown = snap.Countdown
	m.session = snap.Session
	if snap.Session != nil {
		m.lastTask = snap.Session.Task
		m.project = snap.Session.Project
	}
}

func (m timerModel) running() bool {
	return m.countdown.Running()
}

func (m timerModel) Init() tea.Cmd {
	return nil
}

func (m timerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case timerEventMsg:
		return m.handleEvent(msg.event)

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case controlDoneMsg:
		m.busy = false
		m.err = msg.err
		if msg.fresh {
			m.apply(msg.snap)
		}
		if msg.quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m timerModel) handleEvent(ev timer.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case timer.EventStarted:
		m.countdown.State = domain.TimerRunning
		m.err = nil
	case timer.EventTick:
		m.countdown.TimeLeft = ev.TimeLeft
	case timer.EventReverseCountdownStarted:
		m.countdown.State = domain.TimerOverrun
		m.countdown.TimeLeft = 0
		m.countdown.OverrunElapsed = 0
	case timer.EventOverrunTick:
		m.countdown.State = domain.TimerOverrun
		m.countdown.OverrunElapsed = ev.Elapsed
	case timer.EventReverseCountdownEnded:
		m.countdown.State = domain.TimerRunning
		m.countdown.OverrunElapsed = 0
	case timer.EventReset:
		m.countdown.State = domain.TimerIdle
		m.countdown.OverrunElapsed = 0
	case timer.EventStopped:
		m.countdown.State = domain.TimerIdle
		m.countdown.OverrunElapsed = 0
		m.session = nil
		m.editing = false
		m.input.Blur()
		if ev.Reason != domain.StopManual && m.notice == "" {
			m.notice = "Session ended: " + strings.ReplaceAll(string(ev.Reason), "_", " ")
		}
	}
	return m, nil
}

func (m timerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.running() {
			m.busy = true
			return m, m.control("stop", true, m.controls.Stop)
		}
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	if m.running() {
		switch {
		case key.Matches(msg, m.keys.Stop):
			m.busy = true
			return m, m.control("stop", false, m.controls.Stop)
		case key.Matches(msg, m.keys.Extend):
			return m, m.adjust(adjustStepMinutes)
		case key.Matches(msg, m.keys.Shorten):
			return m, m.adjust(-adjustStepMinutes)
		case key.Matches(msg, m.keys.EditTask):
			m.editing = true
			m.input.SetValue(m.lastTask)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Restart):
		task, project := m.lastTask, m.project
		m.busy = true
		m.notice = ""
		return m, m.control("start", false, func() error { return m.controls.Start(task, project) })
	case key.Matches(msg, m.keys.Reset):
		m.busy = true
		m.notice = ""
		return m, m.control("reset", false, m.controls.Reset)
	case key.Matches(msg, m.keys.Extend):
		return m, m.resize(adjustStepMinutes)
	case key.Matches(msg, m.keys.Shorten):
		return m, m.resize(-adjustStepMinutes)
	}
	return m, nil
}

func (m timerModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CancelEdit):
		m.editing = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		task := strings.TrimSpace(m.input.Value())
		m.editing = false
		m.input.Blur()
		m.lastTask = task
		return m, m.control("edit", false, func() error { return m.controls.UpdateTask(task) })
	case msg.Type == tea.KeyCtrlC:
		m.editing = false
		m.input.Blur()
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m timerModel) adjust(delta int) tea.Cmd {
	return m.control("adjust", false, func() error { return m.controls.Adjust(delta) })
}

// resize changes the length of the next session while idle.
func (m timerModel) resize(delta int) tea.Cmd {
	next := config.ClampLength(int(m.countdown.TimeLeft/time.Minute) + delta)
	return m.control("length", false, func() error { return m.controls.SetLength(next) })
}

// control runs fn off the update loop and reports back with a snapshot.
func (m timerModel) control(action string, quit bool, fn func() error) tea.Cmd {
	controls := m.controls
	return func() tea.Msg {
		err := fn()
		if errors.Is(err, timer.ErrNoActiveSession) && quit {
			err = nil
		}
		snap, snapErr := controls.Snapshot()
		if err == nil {
			err = snapErr
		}
		return controlDoneMsg{action: action, err: err, snap: snap, fresh: snapErr == nil, quit: quit}
	}
}

func (m timerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(formatter.StyleHeader.Render("FOCUSLOG") + "  " + formatter.StateIndicator(m.countdown.State) + "\n\n")
	b.WriteString("  " + formatter.Countdown(m.countdown) + "\n")

	length := time.Duration(m.lengthMinutes()) * time.Minute
	b.WriteString("  " + formatter.RenderProgress(formatter.SessionFraction(m.countdown, length), timerProgressWidth, m.countdown.State) + "\n\n")

	if m.editing {
		b.WriteString("  " + m.input.View() + "\n")
	} else {
		task := m.lastTask
		if task == "" {
			task = formatter.Dim("(no task)")
		}
		b.WriteString("  " + formatter.KeyValue("task", formatter.Bold(task)) + "\n")
	}
	if m.project != "" {
		b.WriteString("  " + formatter.KeyValue("project", m.project) + "\n")
	}
	if m.session != nil {
		b.WriteString("  " + formatter.KeyValue("started", m.session.StartTime.Format("15:04")) + "\n")
		b.WriteString("  " + formatter.KeyValue("journal", formatter.Dim(m.session.JournalPath)) + "\n")
	} else {
		b.WriteString("  " + formatter.KeyValue("length", formatter.Minutes(length)) + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n  " + formatter.StyleYellow.Render(m.notice) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n  " + formatter.StyleRed.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	b.WriteString("\n  " + m.help.View(m.helpKeys()) + "\n")
	return b.String()
}

func (m timerModel) lengthMinutes() int {
	if m.session != nil {
		return m.session.LengthMinutes
	}
	return int(m.countdown.TimeLeft / time.Minute)
}

func (m timerModel) helpKeys() help.KeyMap {
	switch {
	case m.editing:
		return editKeys{m.keys}
	case m.running():
		return runningKeys{m.keys}
	default:
		return idleKeys{m.keys}
	}
}
