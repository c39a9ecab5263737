package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThePuug/claude-man/internal/adapters/daemon"
	"github.com/ThePuug/claude-man/internal/logging"
	"github.com/spf13/cobra"
)

func newDaemonCmd(app *app) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the session daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if logLevel != "" {
				logger, err := logging.New(os.Stderr, logLevel, app.cfg.Logging.Format)
				if err != nil {
					return err
				}
				app.logger = logger
			}

			if _, err := app.checker.Check(cmd.Context()); err != nil {
				return err
			}

			lockPath, err := app.cfg.LockPath()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(lockPath), 0o700); err != nil {
				return fmt.Errorf("create lock directory: %w", err)
			}

			registry, err := app.newRegistry(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			server := daemon.NewServer(registry,
				daemon.WithAddr(app.cfg.Daemon.Addr),
				daemon.WithLockPath(lockPath),
				daemon.WithCleanupInterval(app.cfg.Daemon.CleanupInterval()),
				daemon.WithServerLogger(app.logger),
			)

			fmt.Fprintf(cmd.OutOrStdout(), "Starting daemon on %s\n", app.cfg.Daemon.Addr)
			if err := server.Run(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Daemon shut down successfully")
			return err
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for the daemon (debug, info, warn, error)")

	return cmd
}

func newShutdownCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Stop every session and shut the daemon down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := app.client.Shutdown(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", resp.Message)
			return err
		},
	}
}
