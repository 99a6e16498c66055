package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/managed-index/indexctl/internal/engine"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Scan the workspace and watch it for changes until interrupted",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	setupLogging()

	e, ws, err := buildEngine()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	handle, err := e.Start(ctx, ws, func(s engine.State) { printState("indexctl", s) })
	if err != nil {
		return err
	}

	<-ctx.Done()
	return handle.Dispose(context.Background())
}
