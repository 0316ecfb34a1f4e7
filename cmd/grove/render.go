package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/device"
)

var (
	renderOut     string
	renderSeconds float64
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the scripted session to raw PCM",
	Long: `Runs the scripted session on an offline graph and writes mono float32
little-endian PCM at the configured sample rate.

Example:
  grove render --out session.f32 --seconds 120
  ffplay -f f32le -ar 48000 -ac 1 session.f32`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file (required)")
	renderCmd.Flags().Float64VarP(&renderSeconds, "seconds", "s", 60, "Session length in seconds")
	renderCmd.MarkFlagRequired("out")
}

func runRender(cmd *cobra.Command, args []string) error {
	if !(renderSeconds > 0) {
		return fmt.Errorf("seconds must be > 0: %v", renderSeconds)
	}

	var dev device.Offline
	defer dev.Close()
	e, err := newEngine(cmd, &dev)
	if err != nil {
		return err
	}
	g := dev.Context()

	f, err := os.Create(renderOut)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	sr := g.SampleRate()
	ticks := int(math.Ceil(renderSeconds * tickRate))
	buf := make([]float32, int(math.Ceil(sr/tickRate)))
	var s session
	var written int64
	for i := 0; i < ticks; i++ {
		s.drive(e, float64(i)/tickRate)

		target := int64(math.Round(float64(i+1) * sr / tickRate))
		chunk := buf[:target-written]
		g.Render(chunk)
		if err := binary.Write(w, binary.LittleEndian, chunk); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		written = target
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logger.Info("render finished",
		zap.String("session", uuid.NewString()),
		zap.String("out", renderOut),
		zap.Int64("frames", written),
		zap.Float64("sample_rate", sr))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames at %g Hz to %s\n", written, sr, renderOut)
	return nil
}
