package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/focuslog/internal/cli/formatter"
	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		frequent bool
		all      bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List tasks used in past sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if frequent && all {
				return errors.New("--frequent and --all are mutually exclusive")
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			ctx := cmd.Context()
			var (
				entries []*domain.TaskHistoryEntry
				err     error
			)
			switch {
			case all:
				entries, err = app.History.All(ctx)
			case frequent:
				entries, err = app.History.Frequent(ctx, limit)
			default:
				entries, err = app.History.Recent(ctx, limit)
			}
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(entries, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&frequent, "frequent", false, "Order by usage count instead of last use")
	cmd.Flags().BoolVar(&all, "all", false, "List every recorded task")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of tasks to list")
	return cmd
}
