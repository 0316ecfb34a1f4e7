package soundscape

import (
	"math"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

const (
	stageFade      = 0.5
	stageLatency   = 0.6
	chordLatency   = 0.52
	harmonyGrace   = 0.12
	entranceDelay  = 0.6
	entranceStep   = 0.35
	harmonySmooth  = 0.8
	minFadeSmooth  = 0.15
	harmonySilence = 0.001
)

// CreateHarmonyTones keeps the harmony on stage. A new stage fades out the
// current chord and builds one from the new pool after a short gap; the
// stage switches at once so calls during the gap do nothing. An unchanged
// stage with no voices gets a chord immediately. Stage changes arriving
// less than the gap apart keep the harmony silent until one holds.
func (e *Engine) CreateHarmonyTones(intensity float64, stage Stage) {
	if !e.active() {
		return
	}
	resolved, pool := e.chords.Lookup(stage)

	if resolved != e.harmonyStage {
		e.FadeOutHarmonyTones(stageFade)
		e.harmonyStage = resolved
		e.scheduleBuild(stageLatency, func() {
			if e.harmonyStage != resolved {
				return
			}
			e.BuildHarmonyVoices(e.pickChord(pool), resolved, intensity)
		})
		e.log.Debug("harmony stage change", zap.Stringer("stage", resolved))
		return
	}

	if len(e.harmony) == 0 && !e.buildWaiting {
		e.BuildHarmonyVoices(e.pickChord(pool), resolved, intensity)
	}
}

// BuildHarmonyVoices starts one voice per frequency. Later stages get
// brighter waveforms, a more open filter and wider vibrato; each voice
// swells in a little after the previous one.
func (e *Engine) BuildHarmonyVoices(freqs []float64, stage Stage, intensity float64) {
	if !e.active() {
		return
	}
	si := max(0, stage.Index())
	wave := graph.Sawtooth
	switch {
	case si < 2:
		wave = graph.Sine
	case si < 4:
		wave = graph.Triangle
	}

	now := e.g.Now()
	for i, f := range freqs {
		v := newVoice(e.g, voiceSpec{
			wave:   wave,
			freq:   f,
			filter: graph.Lowpass,
			cutoff: 900 + float64(si)*250,
			q:      0.5 + float64(si)*0.1,
			level:  harmonySilence,
		}, e.mix.harmony)
		v.index = i
		v.modulate(e.g, 0.2+e.rng.Float64()*0.2, 1.5+float64(si)*0.5)

		v.entersAt = now + entranceDelay + float64(i)*entranceStep
		target := math.Min(0.08, (0.04+float64(i)*0.02)*intensity)
		v.gain.Gain().SetTargetAtTime(target, v.entersAt, harmonySmooth)

		if err := v.start(now); err != nil {
			e.log.Sugar().Warnf("harmony voice %d did not start: %v", i, err)
			v.release()
			continue
		}
		e.harmony = append(e.harmony, v)
	}
}

// UpdateHarmonyLevels tracks intensity on the sounding chord without
// rebuilding it. Voices still waiting for their entrance or fading out
// keep their envelope.
func (e *Engine) UpdateHarmonyLevels(intensity float64) {
	if !e.active() {
		return
	}
	now := e.g.Now()
	for _, v := range e.harmony {
		if v.releaseAt != 0 || v.entersAt > now {
			continue
		}
		target := math.Min(0.12, (0.04+float64(v.index)*0.02)*math.Max(0.35, intensity))
		v.gain.Gain().SetTargetAtTime(target, now, harmonySmooth)
	}
}

// SetHarmonyChord replaces the sounding chord with freqs regardless of the
// stage rule.
func (e *Engine) SetHarmonyChord(freqs []float64, intensity float64, stage Stage) {
	if !e.active() {
		return
	}
	chord := append([]float64(nil), freqs...)
	e.FadeOutHarmonyTones(stageFade)
	e.scheduleBuild(chordLatency, func() {
		e.BuildHarmonyVoices(chord, stage, intensity)
	})
}

// FadeOutHarmonyTones fades every harmony voice toward silence and tears
// the voices down fade + 120 ms later. Voices built after this call are
// not affected.
func (e *Engine) FadeOutHarmonyTones(fade float64) {
	if !e.active() || len(e.harmony) == 0 {
		return
	}
	now := e.g.Now()
	delay := fade + harmonyGrace
	releaseAt := now + delay
	scheduled := false
	for _, v := range e.harmony {
		v.gain.Gain().SetTargetAtTime(harmonySilence, now, math.Max(minFadeSmooth, fade*0.5))
		if v.releaseAt == 0 || releaseAt < v.releaseAt {
			v.releaseAt = releaseAt
			scheduled = true
		}
	}
	if scheduled {
		e.after(delay, e.reapHarmony)
	}
}

// reapHarmony stops and releases every harmony voice whose fade is due.
func (e *Engine) reapHarmony() {
	now := e.g.Now()
	keep := e.harmony[:0]
	for _, v := range e.harmony {
		if v.releaseAt == 0 || v.releaseAt > now {
			keep = append(keep, v)
			continue
		}
		e.stopVoice("harmony", v, now)
		v.release()
	}
	clear(e.harmony[len(keep):])
	e.harmony = keep
}

// scheduleBuild defers a chord build. Only the latest scheduled build
// runs, so a later stage or chord change supersedes an earlier one.
func (e *Engine) scheduleBuild(delay float64, build func()) {
	e.buildSeq++
	e.buildWaiting = true
	seq := e.buildSeq
	e.after(delay, func() {
		if seq != e.buildSeq {
			return
		}
		e.buildWaiting = false
		build()
	})
}

func (e *Engine) pickChord(pool [][]float64) []float64 {
	if len(pool) == 0 {
		return nil
	}
	return pool[e.rng.IntN(len(pool))]
}
