package main

import (
	"math"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/soundscape"
)

// tickRate is the host frame rate feeding Update.
const tickRate = 60

const (
	swellEnd  = 20.0
	settleEnd = 40.0
	growStart = 50.0
	growEvery = 15.0
)

// session scripts a listener over time.
type session struct {
	stage soundscape.Stage
}

// step returns the listener state at t seconds and whether the grove
// reached a new stage since the previous step.
func (s *session) step(t float64) (soundscape.Params, bool) {
	var p soundscape.Params
	switch {
	case t < swellEnd:
		p.Anxiety = 0.1 + 0.7*t/swellEnd
	case t < settleEnd:
		f := (t - swellEnd) / (settleEnd - swellEnd)
		p.Anxiety = 0.8 - 0.75*f
		p.Resting = true
		p.Rest = 0.3 * f
	default:
		p.Resting = true
		p.DeepRest = true
		p.Rest = math.Min(1, 0.3+(t-settleEnd)/100)
	}

	p.Stage = soundscape.Bare
	if t >= growStart {
		stages := soundscape.Stages()
		i := 1 + int((t-growStart)/growEvery)
		p.Stage = stages[min(i, len(stages)-1)]
	}

	grew := s.stage != "" && p.Stage != s.stage
	s.stage = p.Stage
	return p, grew
}

// drive feeds the engine the session state at t.
func (s *session) drive(e *soundscape.Engine, t float64) {
	p, grew := s.step(t)
	if grew {
		logger.Info("grove grew", zap.Stringer("stage", p.Stage))
		e.Milestone(p.Stage, p.DeepRest, p.Rest)
	}
	e.Update(p)
}
