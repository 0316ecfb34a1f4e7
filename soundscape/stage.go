package soundscape

import "fmt"

// Stage is a growth stage of the grove. Stages are ordered; later stages
// get brighter timbres and richer chords.
type Stage string

const (
	Bare        Stage = "bare"
	Budding     Stage = "budding"
	Sprouting   Stage = "sprouting"
	Blooming    Stage = "blooming"
	Flourishing Stage = "flourishing"
	Radiant     Stage = "radiant"
)

var stageOrder = [...]Stage{Bare, Budding, Sprouting, Blooming, Flourishing, Radiant}

// Stages returns all stages in growth order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder[:])
	return out
}

// Index returns the position of s in the growth order, or -1 for an
// unknown stage.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool { return s.Index() >= 0 }

func (s Stage) String() string { return string(s) }

// ParseStage converts a stage name.
func ParseStage(name string) (Stage, error) {
	s := Stage(name)
	if !s.Valid() {
		return "", fmt.Errorf("soundscape: unknown stage %q", name)
	}
	return s, nil
}

// RestHarmonyStage picks the stage whose harmony accompanies rest. A grove
// that has grown past bare keeps its own stage; a bare grove borrows a
// stage from the depth of rest.
func RestHarmonyStage(rest float64, stage Stage) Stage {
	if stage != Bare {
		return stage
	}
	switch {
	case rest < 0.33:
		return Budding
	case rest < 0.66:
		return Sprouting
	case rest < 0.85:
		return Blooming
	default:
		return Flourishing
	}
}
