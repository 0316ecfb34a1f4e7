package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-grove/soundscape"
)

var chordsCmd = &cobra.Command{
	Use:   "chords",
	Short: "Print the chord table and rest chime patterns",
	Args:  cobra.NoArgs,
	RunE:  runChords,
}

func runChords(cmd *cobra.Command, args []string) error {
	cfg, err := soundscape.LoadConfig(configPath)
	if err != nil {
		return err
	}
	e, err := soundscape.New(soundscape.WithConfig(cfg))
	if err != nil {
		return err
	}
	pools := e.ChordPools()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tCHORDS (Hz)\tREST CHIMES")
	for _, stage := range soundscape.Stages() {
		chords := make([]string, 0, len(pools[stage]))
		for _, chord := range pools[stage] {
			chords = append(chords, formatFreqs(chord))
		}
		if len(chords) == 0 {
			chords = append(chords, "-")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", stage,
			strings.Join(chords, " | "),
			formatFreqs(soundscape.RestChimePattern(stage)))
	}
	return tw.Flush()
}

func formatFreqs(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return strings.Join(parts, " ")
}
