package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/spf13/cobra"
)

var errStopTarget = errors.New("must specify either a session ID or --all")

func newStopCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "stop [SESSION-ID]",
		Short: "Stop a running session, or every session with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errStopTarget
			}

			b, err := app.openBackend(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if all {
				sessions, err := b.List(cmd.Context(), "")
				if err != nil && b.Direct() {
					return err
				}
				var targets []domain.SessionID
				for _, meta := range sessions {
					if meta.Status == domain.StatusRunning {
						targets = append(targets, meta.ID)
					}
				}
				if b.Direct() && len(targets) == 0 {
					_, err := fmt.Fprintln(out, "No active sessions to stop")
					return err
				}

				label := "Stopping all sessions..."
				switch len(targets) {
				case 0:
				case 1:
					label = fmt.Sprintf("Stopping session %s...", targets[0])
				default:
					label = fmt.Sprintf("Stopping %d sessions...", len(targets))
				}
				if err := app.runStopProgress(cmd.Context(), cmd.ErrOrStderr(), b, label, targets, b.StopAll); err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, "✓ All sessions stopped")
				return err
			}

			id := domain.SessionID(args[0])
			err = app.runStopProgress(cmd.Context(), cmd.ErrOrStderr(), b, fmt.Sprintf("Stopping session %s...", id), []domain.SessionID{id}, func(ctx context.Context) error {
				return b.Stop(ctx, id)
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "✓ Session %s stopped\n", id)
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Stop every session")

	return cmd
}
