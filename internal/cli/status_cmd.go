package cli

import (
	"fmt"

	"github.com/alexanderramin/focuslog/internal/cli/formatter"
	"github.com/alexanderramin/focuslog/internal/journal"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the recorded session and today's journal note",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.now()

			s, err := app.Sessions.LoadActive(ctx)
			if err != nil {
				return fmt.Errorf("loading active session: %w", err)
			}
			cfg, err := app.Settings.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatStatus(s, now))

			path := journal.NotePath(cfg.JournalPath, cfg.NoteDateFormat, now)
			fmt.Fprintln(out, formatter.KeyValue("today", notePresence(app, path)))
			return nil
		},
	}
}

func notePresence(app *App, path string) string {
	if app.probe().Exists(path) {
		return path + " " + formatter.StyleGreen.Render("(exists)")
	}
	return path + " " + formatter.StyleRed.Render("(missing)")
}
