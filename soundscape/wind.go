package soundscape

import (
	"github.com/cwbudde/algo-grove/dsp/graph"
)

const (
	windNoiseSeconds = 2.0
	windCenter       = 500.0
	windQ            = 1.2
	windSweep        = 220.0
	windGrace        = 0.12
)

// windVoice is band-passed looping noise whose center frequency is swept
// by a slow LFO. At most one exists.
type windVoice struct {
	noise   graph.Source
	band    graph.Filter
	lfo     graph.Oscillator
	lfoGain graph.Gain

	// releaseAt is the pending teardown time, zero while sounding.
	releaseAt float64
}

// createWind builds the wind voice if there is none. A voice fading out is
// kept and revived instead.
func (e *Engine) createWind() {
	if e.wind != nil {
		e.wind.releaseAt = 0
		return
	}

	g := e.g
	now := g.Now()
	buf := make([]float64, int(windNoiseSeconds*g.SampleRate()))
	for i := range buf {
		buf[i] = e.rng.Float64()*2 - 1
	}

	w := &windVoice{
		noise:   g.NewBufferSource(buf, true),
		band:    g.NewFilter(graph.Bandpass),
		lfo:     g.NewOscillator(graph.Sine),
		lfoGain: g.NewGain(),
	}
	w.band.Frequency().SetValueAtTime(windCenter, now)
	w.band.Q().SetValueAtTime(windQ, now)
	w.lfo.Frequency().SetValueAtTime(0.15+e.rng.Float64()*0.25, now)
	w.lfoGain.Gain().SetValueAtTime(windSweep, now)

	w.lfo.Connect(w.lfoGain)
	w.lfoGain.ConnectParam(w.band.Frequency())
	w.noise.Connect(w.band)
	w.band.Connect(e.mix.wind)

	if err := w.noise.Start(now); err != nil {
		e.log.Sugar().Warnf("wind noise did not start: %v", err)
	}
	if err := w.lfo.Start(now); err != nil {
		e.log.Sugar().Warnf("wind sweep did not start: %v", err)
	}
	e.wind = w
	e.log.Debug("wind created")
}

// fadeOutWind fades the wind bus and, once the fade has run its course,
// tears down the wind voice that was sounding when the fade began.
func (e *Engine) fadeOutWind(fade float64) {
	setSmooth(e.g, e.mix.wind.Gain(), quietBusLevel, fade*0.6)

	w := e.wind
	if w == nil || w.releaseAt != 0 {
		return
	}
	delay := fade + windGrace
	w.releaseAt = e.g.Now() + delay
	e.after(delay, func() { e.reapWind(w) })
}

// reapWind releases w if it is still the wind voice and its fade is due.
func (e *Engine) reapWind(w *windVoice) {
	if e.wind != w || w.releaseAt == 0 || w.releaseAt > e.g.Now() {
		return
	}
	now := e.g.Now()
	if err := w.noise.Stop(now); err != nil {
		e.logStop("wind", err)
	}
	if err := w.lfo.Stop(now); err != nil {
		e.logStop("wind", err)
	}
	releaseNodes(w.noise, w.band, w.lfo, w.lfoGain)
	e.wind = nil
	e.log.Debug("wind released")
}
