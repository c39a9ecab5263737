package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/spf13/cobra"
)

const stopAllTimeout = 30 * time.Second

func newSpawnCmd(app *app) *cobra.Command {
	var roleRaw string
	var parentID string

	cmd := &cobra.Command{
		Use:   "spawn --role ROLE TASK...",
		Short: "Start a new agent session",
		Long:  "Start a new agent session in the given role (MANAGER, ARCHITECT, DEVELOPER, STAKEHOLDER). Without a daemon the command stays attached until the session ends.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.ParseRole(roleRaw)
			if err != nil {
				return err
			}
			task := strings.Join(args, " ")

			out := newLockedWriter(cmd.OutOrStdout())
			b, err := app.openBackend(cmd.Context(), out, newLockedWriter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if b.Direct() {
				if _, err := app.checker.Check(cmd.Context()); err != nil {
					return err
				}
			}

			id, pid, err := b.Spawn(cmd.Context(), role, task, domain.SessionID(parentID))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✓ Session %s started%s\n\n", id, pidSuffix(pid))
			if !b.Direct() {
				_, err := fmt.Fprintf(out, "View output: claude-man logs %s\n", id)
				return err
			}

			return waitForSession(cmd.Context(), b, id, out)
		},
	}

	cmd.Flags().StringVarP(&roleRaw, "role", "r", "", "Session role")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent session ID")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newResumeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume SESSION-ID MESSAGE...",
		Short: "Continue a finished session with a follow-up message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.SessionID(args[0])
			message := strings.Join(args[1:], " ")

			out := newLockedWriter(cmd.OutOrStdout())
			b, err := app.openBackend(cmd.Context(), out, newLockedWriter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if b.Direct() {
				if _, err := app.checker.Check(cmd.Context()); err != nil {
					return err
				}
			}

			exitCode, err := b.Resume(cmd.Context(), id, message)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(out, "✓ Session %s resumed (exit code: %d)\n", id, exitCode)
			return err
		},
	}
}

// waitForSession blocks until the session finishes and reports how it ended.
// An interrupt stops every session this process owns.
func waitForSession(ctx context.Context, b backend, id domain.SessionID, out io.Writer) error {
	meta, err := b.Wait(ctx, id)
	if err != nil {
		if ctx.Err() == nil {
			return err
		}
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopAllTimeout)
		defer cancel()
		fmt.Fprintln(out, "\nInterrupted, stopping all sessions...")
		return errors.Join(ctx.Err(), b.StopAll(stopCtx))
	}

	switch meta.Status {
	case domain.StatusCompleted:
		fmt.Fprintf(out, "✓ Session %s completed successfully\n", id)
	case domain.StatusFailed:
		fmt.Fprintf(out, "Session %s failed\n", id)
	case domain.StatusStopped:
		fmt.Fprintf(out, "Session %s was stopped\n", id)
	}
	_, err = fmt.Fprintf(out, "\nView logs:  claude-man logs %s\n", id)
	return err
}

func pidSuffix(pid int) string {
	if pid <= 0 {
		return ""
	}
	return fmt.Sprintf(" (PID: %d)", pid)
}
