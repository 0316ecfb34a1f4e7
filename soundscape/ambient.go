package soundscape

import (
	"math"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

const (
	droneCutoff = 800.0
	droneQ      = 0.5
	droneDepth  = 2.0

	fastSmooth = 0.25
	slowSmooth = 0.5
	restSmooth = 1.2
	busSmooth  = 1.6
)

// buildAmbient starts one filtered sawtooth per drone frequency, each
// slowly detuned by its own LFO. The drone is never rebuilt.
func (e *Engine) buildAmbient() {
	now := e.g.Now()
	for i, f := range e.cfg.Ambient.Frequencies {
		v := newVoice(e.g, voiceSpec{
			wave:   graph.Sawtooth,
			freq:   f,
			filter: graph.Lowpass,
			cutoff: droneCutoff,
			q:      droneQ,
			level:  0.1 + float64(i)*0.02,
		}, e.mix.ambient)
		v.index = i
		v.modulate(e.g, 0.1+e.rng.Float64()*0.2, droneDepth)
		if err := v.start(now); err != nil {
			e.log.Sugar().Warnf("drone voice %d did not start: %v", i, err)
			continue
		}
		e.ambient = append(e.ambient, v)
	}
	e.mix.ambient.Gain().SetValueAtTime(ambientBusLevel, now)
}

// UpdateAnxiety darkens the drone as anxiety rises and gates the wind.
// Resting listeners get faster transitions.
func (e *Engine) UpdateAnxiety(anxiety float64, resting bool) {
	if !e.active() {
		return
	}
	anxiety = clamp01(anxiety)
	tc := slowSmooth
	if resting {
		tc = fastSmooth
	}

	setSmooth(e.g, e.mix.ambient.Gain(), math.Max(0.15, 0.6-anxiety*0.45), tc)

	if anxiety > 0.1 && !resting {
		e.createWind()
		setSmooth(e.g, e.mix.wind.Gain(), math.Min(0.45, anxiety*0.45), tc)
		return
	}
	fade := 1.0
	if resting {
		fade = 0.4
	}
	e.fadeOutWind(fade)
}

// UpdateRest makes room for the harmony while the listener is in deep rest
// and restores the drone otherwise.
func (e *Engine) UpdateRest(rest float64, deepRest bool, stage Stage) {
	if !e.active() {
		return
	}
	rest = clamp01(rest)

	if !deepRest {
		setSmooth(e.g, e.mix.ambient.Gain(), ambientBusLevel, restSmooth)
		setSmooth(e.g, e.mix.harmony.Gain(), quietBusLevel, busSmooth)
		e.FadeOutHarmonyTones(restSmooth)
		return
	}

	setSmooth(e.g, e.mix.ambient.Gain(), math.Max(0.04, 0.35*(1-rest)), restSmooth)
	setSmooth(e.g, e.mix.harmony.Gain(), math.Min(0.45, 0.12+rest*0.45), busSmooth)
	e.CreateHarmonyTones(rest, RestHarmonyStage(rest, stage))
	e.UpdateHarmonyLevels(rest)
}
