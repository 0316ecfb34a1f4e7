// Command grove plays the generative soundscape.
//
// Usage:
//
//	grove play [--config f] [--backend oto|portaudio] [--seed n] [--duration d]
//	grove render --out session.f32 [--seconds n]
//	grove chords
//
// play and render drive the engine with a scripted listener session: an
// anxious start, settling into rest, then deep rest while the grove grows
// through every stage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-grove/soundscape"
)

var (
	verbose    bool
	configPath string
	seed       uint64

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "grove",
	Short: "Generative soundscape for a growing grove",
	Long: `grove reshapes an ambient drone, a wind layer, harmony chords and chimes
from a listener's anxiety and rest. The play command runs a scripted session
on an audio device, render writes the same session to raw PCM.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config = zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "grove.yaml", "Engine configuration file (defaults when missing)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed (0: config value or random)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(chordsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newEngine loads the configuration and creates an engine on backend. A
// command line invocation counts as the user gesture.
func newEngine(cmd *cobra.Command, backend soundscape.Backend) (*soundscape.Engine, error) {
	cfg, err := soundscape.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	opts := []soundscape.Option{
		soundscape.WithConfig(cfg),
		soundscape.WithBackend(backend),
		soundscape.WithLogger(logger),
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, soundscape.WithSeed(seed))
	}
	e, err := soundscape.New(opts...)
	if err != nil {
		return nil, err
	}
	e.NotifyUserGesture()
	e.Init()
	if !e.Initialized() {
		return nil, fmt.Errorf("audio initialization failed")
	}
	return e, nil
}
