package graph

import (
	"github.com/cwbudde/algo-grove/dsp/filter/biquad"
	"github.com/cwbudde/algo-grove/dsp/filter/design"
)

// designFilter returns coefficients for kind. Bandpass uses the constant
// 0 dB peak gain form. Frequency is clamped into the audible band below
// Nyquist; non-positive Q falls back to 1/sqrt(2) inside design.
func designFilter(kind FilterKind, freq, q, sampleRate float64) biquad.Coefficients {
	freq = clamp(freq, 10, 0.49*sampleRate)
	switch kind {
	case Highpass:
		return design.Highpass(freq, q, sampleRate)
	case Bandpass:
		return design.BandpassPeak(freq, q, sampleRate)
	default:
		return design.Lowpass(freq, q, sampleRate)
	}
}

// filterNode runs a biquad section whose coefficients are redesigned once
// per quantum when frequency or Q move.
type filterNode struct {
	node
	kind      FilterKind
	frequency *param
	q         *param

	section      biquad.Section
	designed     bool
	designedFreq float64
	designedQ    float64
}

// Frequency returns the cutoff or center frequency parameter in Hz.
func (f *filterNode) Frequency() Param { return f.frequency }

// Q returns the quality factor parameter.
func (f *filterNode) Q() Param { return f.q }

func (f *filterNode) process(q uint64) {
	freq := f.frequency.values(q)[0]
	res := f.q.values(q)[0]
	if !f.designed || freq != f.designedFreq || res != f.designedQ {
		f.section.Coefficients = designFilter(f.kind, freq, res, f.ctx.sampleRate)
		f.designed = true
		f.designedFreq = freq
		f.designedQ = res
	}

	f.mixInputs(q, f.out)
	f.section.ProcessBlock(f.out)
}
