package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/watcher"
)

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var skipExisting bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process every recording dropped into the input folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps.App
			cfg := a.Config

			if err := ensureDirectories(cfg); err != nil {
				return err
			}

			w, err := watcher.New(cfg.Paths.Input, a.Processor.Process, a.Logger, watcher.Options{
				MaxConcurrent: cfg.Performance.MaxConcurrent,
				ScanExisting:  !skipExisting,
			})
			if err != nil {
				return err
			}
			defer w.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			snap := a.Settings.Snapshot()
			a.Logger.Info(ctx, "Notes pipeline is ready")
			a.Logger.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
			a.Logger.Info(ctx, "Output: %s", cfg.Paths.Output)
			a.Logger.Info(ctx, "Mode: %s (local %s at %s, cloud %s)", snap.Mode, snap.LocalModel, snap.LocalURL, snap.CloudModel)
			a.Logger.Info(ctx, "Press Ctrl+C to stop")

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.Logger.Info(context.Background(), "Notes pipeline stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "ignore recordings already in the input folder")
	return cmd
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
		cfg.Paths.Temp,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
