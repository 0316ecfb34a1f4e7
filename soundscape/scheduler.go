package soundscape

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// SchedulerState is a periodic timer on the graph clock. NextFire is zero
// while the timer is disarmed.
type SchedulerState struct {
	NextFire float64
	Interval float64
}

// Armed reports whether the timer is waiting to fire.
func (s SchedulerState) Armed() bool { return s.NextFire != 0 }

// Scheduler arms itself when its gate opens, fires every Interval seconds
// while the gate stays open and disarms when the gate closes.
type Scheduler struct {
	SchedulerState

	// offset draws the delay from arming to the first fire.
	offset func(*rand.Rand) float64
	// redraw draws the interval after each fire.
	redraw func(*rand.Rand) float64
}

func newChordScheduler() *Scheduler {
	return &Scheduler{
		SchedulerState: SchedulerState{Interval: 7},
		offset:         func(*rand.Rand) float64 { return 2 },
		redraw:         restInterval,
	}
}

func newChimeScheduler() *Scheduler {
	return &Scheduler{
		SchedulerState: SchedulerState{Interval: 12},
		offset:         func(r *rand.Rand) float64 { return 3 + r.Float64()*3 },
		redraw:         restInterval,
	}
}

func restInterval(r *rand.Rand) float64 { return 6 + r.Float64()*4 }

// Tick advances the timer to now and reports whether it fired.
func (s *Scheduler) Tick(now float64, open bool, rng *rand.Rand) bool {
	if !open {
		s.NextFire = 0
		return false
	}
	if s.NextFire == 0 {
		s.NextFire = now + s.offset(rng)
	}
	if now < s.NextFire {
		return false
	}
	s.Interval = s.redraw(rng)
	s.NextFire = now + s.Interval
	return true
}

// tickSchedulers drives the chord and chime timers, both gated by deep rest.
func (e *Engine) tickSchedulers(p Params) {
	now := e.g.Now()
	stage := RestHarmonyStage(clamp01(p.Rest), p.Stage)

	if e.chordSched.Tick(now, p.DeepRest, e.rng) {
		e.advanceChord(stage, clamp01(p.Rest))
	}
	if e.chimeSched.Tick(now, p.DeepRest, e.rng) {
		e.PlayRestChimes(stage)
	}
}

// advanceChord swaps in a random chord of stage. Stages without chords are
// skipped.
func (e *Engine) advanceChord(stage Stage, intensity float64) {
	pool := e.chords.Chords(stage)
	if len(pool) == 0 {
		return
	}
	chord := e.pickChord(pool)
	e.log.Debug("chord change",
		zap.Stringer("stage", stage),
		zap.Float64s("chord", chord))
	e.SetHarmonyChord(chord, intensity, stage)
}
