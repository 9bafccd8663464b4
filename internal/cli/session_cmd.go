package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/alexanderramin/focuslog/internal/notify"
	"github.com/spf13/cobra"
)

func newStartCmd(app *App) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "start [task...]",
		Short: "Start a focus session and keep today's journal in sync",
		Long: `Start a focus session. The task defaults to the last task used; in a
terminal you are asked for one when none is known.

The session is written to today's journal note under the configured header
and refreshed every flush interval until it is stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			interactive := !flags.noTUI && app.interactive()

			task := strings.TrimSpace(strings.Join(args, " "))
			if task == "" {
				cfg, err := app.Settings.Load()
				if err != nil {
					return fmt.Errorf("loading settings: %w", err)
				}
				task = strings.TrimSpace(cfg.CurrentTaskText)
				if interactive {
					if task, err = app.promptTask(ctx, task); err != nil {
						return err
					}
				}
			}

			return app.host(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), interactive, func(e *engine) (bool, error) {
				if flags.length > 0 {
					if err := e.SetLength(flags.length); err != nil {
						return false, err
					}
				}
				if err := e.Start(task, flags.project); err != nil {
					return false, err
				}
				return true, nil
			})
		},
	}

	addSessionFlags(cmd.Flags(), &flags, true)
	return cmd
}

func newResumeCmd(app *App) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the session left running by a previous process",
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := !flags.noTUI && app.interactive()
			out := cmd.OutOrStdout()

			return app.host(cmd.Context(), out, cmd.ErrOrStderr(), interactive, func(e *engine) (bool, error) {
				recorded, err := app.Sessions.LoadActive(cmd.Context())
				if err != nil {
					return false, fmt.Errorf("loading active session: %w", err)
				}
				resumed, err := e.Resume()
				if err != nil {
					return false, err
				}
				switch {
				case resumed:
				case recorded != nil:
					fmt.Fprintln(out, closedMessage(recorded))
				default:
					fmt.Fprintln(out, "No session to resume.")
				}
				return resumed, nil
			})
		},
	}

	addSessionFlags(cmd.Flags(), &flags, false)
	return cmd
}

// closedMessage reports a recorded session that Resume closed instead of
// restoring: one from an earlier day or past the maximum length.
func closedMessage(s *domain.Session) string {
	task := s.Task
	if task == "" {
		task = "(no task)"
	}
	return fmt.Sprintf("Closed unfinished session from %s: %s",
		s.StartTime.Format("2006-01-02 15:04"), task)
}

func newStopCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Close the session left running by a previous process",
		Long: `Close a recorded session whose process is gone. The final journal entry
ends now, or at the maximum session length when that has passed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()

			eng, err := app.newEngine(cmd.Context(), notify.Multi{
				app.Notifier,
				notify.Func(func(m string) { fmt.Fprintln(errOut, m) }),
			})
			if err != nil {
				return err
			}
			defer eng.Close()

			recorded, err := app.Sessions.LoadActive(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading active session: %w", err)
			}
			resumed, err := eng.Resume()
			if err != nil {
				return err
			}
			if !resumed {
				if recorded != nil {
					fmt.Fprintln(out, closedMessage(recorded))
				} else {
					fmt.Fprintln(out, "No active session.")
				}
				return nil
			}
			snap, err := eng.Snapshot()
			if err != nil {
				return err
			}
			if err := eng.Stop(); err != nil {
				return err
			}
			task := "(no task)"
			if snap.Session != nil && snap.Session.Task != "" {
				task = snap.Session.Task
			}
			fmt.Fprintf(out, "Session stopped: %s\n", task)
			return nil
		},
	}
}
