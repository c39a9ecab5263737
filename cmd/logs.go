package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	sessionsrender "github.com/ThePuug/claude-man/internal/adapters/render/sessions"
	"github.com/ThePuug/claude-man/internal/adapters/repo/jsonfile"
	"github.com/ThePuug/claude-man/internal/adapters/transcript/jsonl"
	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/spf13/cobra"
)

func newLogsCmd(app *app) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs SESSION-ID",
		Short: "Show the transcript of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.SessionID(args[0])
			if _, _, err := domain.ParseSessionID(args[0]); err != nil {
				return err
			}

			store, err := app.sessionStore()
			if err != nil {
				return err
			}
			path := jsonl.PathFor(store.Dir(id))
			if _, err := os.Stat(path); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
				}
				return fmt.Errorf("stat transcript: %w", err)
			}

			events, err := jsonl.ReadAll(path)
			if err != nil {
				return err
			}
			shown := events
			if lines > 0 && len(shown) > lines {
				shown = shown[len(shown)-lines:]
			}

			out := cmd.OutOrStdout()
			for _, event := range shown {
				fmt.Fprintln(out, sessionsrender.EventLine(event))
			}
			if !follow {
				return nil
			}

			fmt.Fprintln(out, "\nFollowing log output (Ctrl+C to stop)...")
			if err := followTranscript(cmd.Context(), app, store, id, len(events), out); err != nil {
				return err
			}
			if cmd.Context().Err() != nil {
				return nil
			}
			_, err = fmt.Fprintln(out, "\nSession ended, stopping log follow")
			return err
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records until the session ends")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing records to show (0 for all)")

	return cmd
}

func newAttachCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attach SESSION-ID",
		Short: "Stream a session's transcript until it ends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.SessionID(args[0])

			b, err := app.openBackend(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			meta, err := b.Attach(cmd.Context(), id)
			if err != nil {
				return err
			}

			store, err := app.sessionStore()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Attaching to session %s (%s)\nPress Ctrl+C to detach\n\n", id, meta.Role)
			if err := followTranscript(cmd.Context(), app, store, id, 0, out); err != nil {
				return err
			}
			if cmd.Context().Err() != nil {
				_, err := fmt.Fprintf(out, "\nDetached from session %s\n", id)
				return err
			}

			final, err := store.Load(context.WithoutCancel(cmd.Context()), id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "\nSession ended with status: %s\n", final.Status)
			return err
		},
	}
}

func newInputCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "input SESSION-ID TEXT...",
		Short: "Send a line of input to a running session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.SessionID(args[0])

			b, err := app.openBackend(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := b.Input(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Input sent to session %s\n", id)
			return err
		},
	}
}

// followTranscript prints records past the first skip until the session's
// stored status is terminal. An interrupt ends the follow quietly.
func followTranscript(ctx context.Context, app *app, store *jsonfile.Store, id domain.SessionID, skip int, out io.Writer) error {
	seen := 0
	done := func() bool {
		meta, err := store.Load(ctx, id)
		if err != nil {
			return errors.Is(err, domain.ErrSessionNotFound)
		}
		return meta.Status.IsTerminal()
	}

	path := jsonl.PathFor(store.Dir(id))
	_, err := jsonl.Follow(ctx, path, 0, jsonl.FollowOptions{
		PollInterval: app.cfg.Logs.PollInterval(),
		Done:         done,
	}, func(event domain.IoEvent) error {
		seen++
		if seen <= skip {
			return nil
		}
		_, err := fmt.Fprintln(out, sessionsrender.EventLine(event))
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
