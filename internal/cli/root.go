package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/journal"
	"github.com/alexanderramin/focuslog/internal/notify"
	"github.com/alexanderramin/focuslog/internal/repository"
	"github.com/alexanderramin/focuslog/internal/service"
	"github.com/alexanderramin/focuslog/internal/timer"
	"github.com/spf13/cobra"
)

// SettingsStore is the settings file as the commands see it.
type SettingsStore interface {
	Load() (config.Settings, error)
	SaveCurrentTask(task string) error
	Set(key, value string) (config.Settings, error)
	Path() string
}

// App holds the collaborators shared by all commands.
type App struct {
	Settings SettingsStore
	Sessions repository.SessionRepo
	History  service.TaskHistoryService
	Journal  timer.Journal
	Probe    timer.JournalProbe
	Notifier notify.Notifier
	Clock    timer.Clock
	Logger   *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool

	// PromptTask asks for a task label when none was given. Nil uses a huh
	// input seeded with recent tasks.
	PromptTask func(ctx context.Context, suggestions []string) (string, error)
}

// NewRootCmd creates the top-level "focuslog" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "focuslog",
		Short:         "Focus timer that keeps a daily journal note in sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStartCmd(app),
		newResumeCmd(app),
		newStopCmd(app),
		newStatusCmd(app),
		newJournalCmd(app),
		newHistoryCmd(app),
		newConfigCmd(app),
	)

	return root
}

func (a *App) now() time.Time {
	if a.Clock != nil {
		return a.Clock.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (a *App) probe() timer.JournalProbe {
	if a.Probe != nil {
		return a.Probe
	}
	return journal.FileProbe{}
}
