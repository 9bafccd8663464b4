package cli

import "github.com/charmbracelet/bubbles/key"

const adjustStepMinutes = 5

type timerKeyMap struct {
	Stop       key.Binding
	Extend     key.Binding
	Shorten    key.Binding
	Reset      key.Binding
	Restart    key.Binding
	EditTask   key.Binding
	Quit       key.Binding
	Confirm    key.Binding
	CancelEdit key.Binding
}

func newTimerKeyMap() timerKeyMap {
	return timerKeyMap{
		Stop:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Extend:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "+5 min")),
		Shorten:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "-5 min")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Restart:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new session")),
		EditTask:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		CancelEdit: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// runningKeys adapts the map to help.KeyMap while a session runs.
type runningKeys struct{ timerKeyMap }

func (k runningKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Stop, k.Extend, k.Shorten, k.EditTask, k.Quit}
}

func (k runningKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type idleKeys struct{ timerKeyMap }

func (k idleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Restart, k.Reset, k.Extend, k.Shorten, k.Quit}
}

func (k idleKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type editKeys struct{ timerKeyMap }

func (k editKeys) ShortHelp() []key.Binding { return []key.Binding{k.Confirm, k.CancelEdit} }

func (k editKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
