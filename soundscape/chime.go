package soundscape

import (
	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

const (
	bloomBasePitch = 523.25
	restChimeLevel = 0.08
)

// bloomOffsets are the entry times of the three notes of a bloom burst.
var bloomOffsets = [3]float64{0.05, 0.20, 0.35}

// bloomRatios are the pitch ratios of the three notes of a bloom burst.
var bloomRatios = [3]float64{1, 1.25, 0.75}

var restChimePatterns = map[Stage][]float64{
	Bare:        {523.25},
	Budding:     {523.25},
	Sprouting:   {523.25, 659.25},
	Blooming:    {523.25, 659.25, 783.99},
	Flourishing: {523.25, 659.25, 880.0},
	Radiant:     {523.25, 659.25, 783.99, 1046.5},
}

// RestChimePattern returns the chime notes played for stage.
func RestChimePattern(stage Stage) []float64 {
	if p, ok := restChimePatterns[stage]; ok {
		return append([]float64(nil), p...)
	}
	return []float64{bloomBasePitch}
}

type envelope struct {
	peak      float64
	attack    float64
	decayAt   float64
	decay     float64
	stopAt    float64
	releaseAt float64
}

var (
	bloomEnvelope = envelope{peak: 0.25, attack: 0.02, decayAt: 0.35, decay: 0.25, stopAt: 1.5, releaseAt: 1.6}
	restEnvelope  = envelope{attack: 0.08, decayAt: 1.2, decay: 0.6, stopAt: 2.5, releaseAt: 2.6}
)

// PlayBloomChime plays a bright one-shot tone for a milestone.
func (e *Engine) PlayBloomChime(pitch float64) {
	if !e.active() {
		return
	}
	e.playChime(bloomChimeSpec(pitch), bloomEnvelope)
}

// PlayRestChime plays a soft one-shot tone at volume.
func (e *Engine) PlayRestChime(pitch, volume float64) {
	if !e.active() {
		return
	}
	env := restEnvelope
	env.peak = volume
	e.playChime(restChimeSpec(pitch), env)
}

func bloomChimeSpec(pitch float64) voiceSpec {
	return voiceSpec{
		wave:   graph.Sine,
		freq:   pitch,
		filter: graph.Highpass,
		cutoff: 200,
		level:  harmonySilence,
	}
}

func restChimeSpec(pitch float64) voiceSpec {
	return voiceSpec{
		wave:   graph.Sine,
		freq:   pitch,
		filter: graph.Lowpass,
		cutoff: 1200,
		q:      0.3,
		level:  harmonySilence,
	}
}

// PlayBloomBurst plays three bloom chimes around base in quick succession.
func (e *Engine) PlayBloomBurst(base float64) {
	if !e.active() {
		return
	}
	for i, at := range bloomOffsets {
		pitch := base * bloomRatios[i]
		e.after(at, func() { e.PlayBloomChime(pitch) })
	}
	e.log.Debug("bloom burst", zap.Float64("base", base))
}

// PlayRestChimes plays the chime pattern of stage. Each note is a little
// quieter and later than the one before, with some timing jitter.
func (e *Engine) PlayRestChimes(stage Stage) {
	if !e.active() {
		return
	}
	pattern := RestChimePattern(stage)
	for i, pitch := range pattern {
		volume := restChimeLevel * (1 - float64(i)*0.1)
		delay := float64(i)*0.4 + e.rng.Float64()*0.2
		e.after(delay, func() { e.PlayRestChime(pitch, volume) })
	}
	e.log.Debug("rest chimes",
		zap.Stringer("stage", stage),
		zap.Int("notes", len(pattern)))
}

// playChime starts a voice routed to the master bus, shapes it with env
// and releases its nodes once it has stopped.
func (e *Engine) playChime(s voiceSpec, env envelope) *voice {
	now := e.g.Now()
	v := newVoice(e.g, s, e.mix.master)
	p := v.gain.Gain()
	p.SetTargetAtTime(env.peak, now, env.attack)
	p.SetTargetAtTime(harmonySilence, now+env.decayAt, env.decay)

	if err := v.start(now); err != nil {
		e.log.Sugar().Warnf("chime did not start: %v", err)
		v.release()
		return nil
	}
	e.stopVoice("chime", v, now+env.stopAt)
	e.after(env.releaseAt, v.release)
	return v
}
