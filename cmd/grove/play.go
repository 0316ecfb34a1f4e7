package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/device"
	"github.com/cwbudde/algo-grove/soundscape"
)

var (
	backendName  string
	playDuration time.Duration
	watchConfig  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the scripted session on an audio device",
	Long: `Opens the audio device and feeds the engine a scripted listener session at
60 ticks per second. Ctrl-C stops playback.

Examples:
  grove play
  grove play --backend portaudio --duration 3m
  grove play --seed 7 -v
  grove play --watch     # apply master_level edits while playing`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&backendName, "backend", "b", "oto", "Audio backend")
	playCmd.Flags().DurationVarP(&playDuration, "duration", "d", 2*time.Minute, "Session length (0: until interrupted)")
	playCmd.Flags().BoolVarP(&watchConfig, "watch", "w", false, "Reload the master level when the config file changes")
}

func runPlay(cmd *cobra.Command, args []string) error {
	dev, err := device.New(backendName, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := dev.Close(); err != nil {
			logger.Warn("device close failed", zap.Error(err))
		}
	}()

	e, err := newEngine(cmd, dev)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if playDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, playDuration)
		defer cancel()
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if watchConfig {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
		defer w.Close()
		// Editors replace files, so watch the directory.
		if err := w.Add(filepath.Dir(configPath)); err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
		events, errs = w.Events, w.Errors
	}

	logger.Info("session started",
		zap.String("session", uuid.NewString()),
		zap.String("backend", backendName),
		zap.Duration("duration", playDuration),
		zap.Bool("watch", watchConfig))

	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	var s session
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(cmd.OutOrStdout(), "played %s, grove at %s\n",
				time.Since(start).Round(time.Second), s.stage)
			return nil
		case <-ticker.C:
			s.drive(e, time.Since(start).Seconds())
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != filepath.Clean(configPath) || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := reloadMasterLevel(e, configPath); err != nil {
				logger.Warn("config reload failed", zap.Error(err))
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("config watch error", zap.Error(err))
		}
	}
}

// reloadMasterLevel applies the master level of the config file at path.
// Other settings only take effect on the next run.
func reloadMasterLevel(e *soundscape.Engine, path string) error {
	cfg, err := soundscape.LoadConfig(path)
	if err != nil {
		return err
	}
	e.SetMasterVolume(cfg.MasterLevel)
	logger.Info("master level reloaded", zap.Float64("level", cfg.MasterLevel))
	return nil
}
