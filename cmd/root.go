package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "claude-man",
		Short:         "Run and supervise claude agent sessions",
		Long:          "claude-man spawns claude agent sessions in defined roles, records their transcripts, and manages them directly or through a background daemon.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}
	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.logCloser.Close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newSpawnCmd(app),
		newResumeCmd(app),
		newListCmd(app),
		newInfoCmd(app),
		newStopCmd(app),
		newLogsCmd(app),
		newAttachCmd(app),
		newInputCmd(app),
		newDaemonCmd(app),
		newShutdownCmd(app),
	)

	return rootCmd
}
