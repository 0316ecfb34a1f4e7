package soundscape

import (
	"fmt"
	"math"
	"sort"
)

// fallbackStage is used for chord lookups of unknown or empty stages.
const fallbackStage = Budding

// ChordLibrary maps growth stages to candidate chords. It is immutable
// after construction.
type ChordLibrary struct {
	pools map[Stage][][]float64
}

// DefaultChordLibrary returns the built-in chord table.
func DefaultChordLibrary() *ChordLibrary {
	return &ChordLibrary{pools: defaultPools()}
}

func defaultPools() map[Stage][][]float64 {
	return map[Stage][][]float64{
		Bare:    {{196.0, 261.63}},
		Budding: {{261.63, 329.63}},
		Sprouting: {
			{261.63, 329.63, 392.0},
			{349.23, 440.0, 523.25},
		},
		Blooming:    {{261.63, 329.63, 369.99, 392.0}},
		Flourishing: {{261.63, 329.63, 392.0, 440.0, 523.25}},
		Radiant:     {{130.81, 261.63, 329.63, 392.0, 523.25, 659.25}},
	}
}

// NewChordLibrary validates and copies pools. Every key must be a known
// stage, every chord non-empty, every frequency positive and finite. The
// fallback stage must have at least one chord.
func NewChordLibrary(pools map[Stage][][]float64) (*ChordLibrary, error) {
	for _, stage := range sortedStages(pools) {
		if !stage.Valid() {
			return nil, fmt.Errorf("soundscape: chord pool for unknown stage %q", stage)
		}
		for i, chord := range pools[stage] {
			if len(chord) == 0 {
				return nil, fmt.Errorf("soundscape: %s chord %d is empty", stage, i)
			}
			for _, f := range chord {
				if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
					return nil, fmt.Errorf("soundscape: %s chord %d has invalid frequency %v", stage, i, f)
				}
			}
		}
	}
	if len(pools[fallbackStage]) == 0 {
		return nil, fmt.Errorf("soundscape: chord pools need at least one %s chord", fallbackStage)
	}
	return &ChordLibrary{pools: copyPools(pools)}, nil
}

// Lookup resolves stage to its pool. Unknown stages and stages without
// chords resolve to budding. The returned chords must not be modified.
func (l *ChordLibrary) Lookup(stage Stage) (Stage, [][]float64) {
	if pool := l.pools[stage]; len(pool) > 0 {
		return stage, pool
	}
	return fallbackStage, l.pools[fallbackStage]
}

// Chords returns the pool of stage without fallback. The returned chords
// must not be modified.
func (l *ChordLibrary) Chords(stage Stage) [][]float64 {
	return l.pools[stage]
}

// Pools returns a deep copy of the table.
func (l *ChordLibrary) Pools() map[Stage][][]float64 {
	return copyPools(l.pools)
}

func copyPools(pools map[Stage][][]float64) map[Stage][][]float64 {
	out := make(map[Stage][][]float64, len(pools))
	for stage, pool := range pools {
		cp := make([][]float64, len(pool))
		for i, chord := range pool {
			cp[i] = append([]float64(nil), chord...)
		}
		out[stage] = cp
	}
	return out
}

func sortedStages(pools map[Stage][][]float64) []Stage {
	keys := make([]Stage, 0, len(pools))
	for k := range pools {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
