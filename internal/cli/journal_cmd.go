package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/alexanderramin/focuslog/internal/cli/formatter"
	"github.com/alexanderramin/focuslog/internal/journal"
	"github.com/alexanderramin/focuslog/internal/timer"
	"github.com/spf13/cobra"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect daily journal notes",
	}
	cmd.AddCommand(newJournalCheckCmd(app), newJournalShowCmd(app))
	return cmd
}

func newJournalCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that today's journal note exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Settings.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			path := journal.NotePath(cfg.JournalPath, cfg.NoteDateFormat, app.now())
			if !app.probe().Exists(path) {
				return fmt.Errorf("%w: %s", timer.ErrJournalMissing, path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✓"), path)
			return nil
		},
	}
}

func newJournalShowCmd(app *App) *cobra.Command {
	var date dateFlag

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the sessions recorded in a journal note",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Settings.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			path := journal.NotePath(cfg.JournalPath, cfg.NoteDateFormat, date.or(app.now()))
			lines, err := journal.ReadSection(path, cfg.Header)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", timer.ErrJournalMissing, path)
			}
			if err != nil {
				return fmt.Errorf("reading journal: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatJournalSection(path, lines))
			return nil
		},
	}

	cmd.Flags().Var(&date, "date", "Note date as YYYY-MM-DD (default today)")
	return cmd
}
