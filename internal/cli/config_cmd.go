package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/focuslog/internal/cli/formatter"
	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := app.Settings.Load()
				if err != nil {
					return fmt.Errorf("loading settings: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), formatSettings(cfg))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), app.Settings.Path())
			},
		},
		&cobra.Command{
			Use:       "set KEY VALUE",
			Short:     "Change one setting",
			Long:      "Change one setting. Keys: " + strings.Join(config.Keys, ", "),
			Args:      cobra.ExactArgs(2),
			ValidArgs: config.Keys,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := app.Settings.Set(args[0], args[1])
				if err != nil {
					return err
				}
				key := strings.ToLower(strings.TrimSpace(args[0]))
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, cfg.Value(key))
				return nil
			},
		},
	)
	return cmd
}

func formatSettings(cfg config.Settings) string {
	width := 0
	for _, k := range config.Keys {
		width = max(width, len(k))
	}
	var b strings.Builder
	for _, k := range config.Keys {
		fmt.Fprintf(&b, "%s  %s\n", formatter.Dim(fmt.Sprintf("%-*s", width, k)), cfg.Value(k))
	}
	return b.String()
}
