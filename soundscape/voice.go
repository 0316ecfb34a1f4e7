package soundscape

import (
	"errors"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

// voice is one tone generator with its filter, gain and optional frequency
// modulator. A stopped voice is never restarted; it is released and
// replaced.
type voice struct {
	osc     graph.Oscillator
	filter  graph.Filter
	gain    graph.Gain
	mod     graph.Oscillator
	modGain graph.Gain

	// index is the position of the voice in its chord.
	index int
	// entersAt is the start of the entrance swell.
	entersAt float64
	// releaseAt is the pending teardown time, zero while sounding.
	releaseAt float64
}

type voiceSpec struct {
	wave   graph.Waveform
	freq   float64
	filter graph.FilterKind
	cutoff float64
	q      float64
	level  float64
}

// newVoice builds osc -> filter -> gain -> out. The voice is not started.
func newVoice(g graph.Graph, s voiceSpec, out graph.Node) *voice {
	now := g.Now()
	v := &voice{
		osc:    g.NewOscillator(s.wave),
		filter: g.NewFilter(s.filter),
		gain:   g.NewGain(),
	}
	v.osc.Frequency().SetValueAtTime(s.freq, now)
	v.filter.Frequency().SetValueAtTime(s.cutoff, now)
	if s.q > 0 {
		v.filter.Q().SetValueAtTime(s.q, now)
	}
	v.gain.Gain().SetValueAtTime(s.level, now)

	v.osc.Connect(v.filter)
	v.filter.Connect(v.gain)
	v.gain.Connect(out)
	return v
}

// modulate wobbles the oscillator frequency by depth Hz at rate Hz.
func (v *voice) modulate(g graph.Graph, rate, depth float64) {
	now := g.Now()
	v.mod = g.NewOscillator(graph.Sine)
	v.mod.Frequency().SetValueAtTime(rate, now)
	v.modGain = g.NewGain()
	v.modGain.Gain().SetValueAtTime(depth, now)
	v.mod.Connect(v.modGain)
	v.modGain.ConnectParam(v.osc.Frequency())
}

func (v *voice) start(when float64) error {
	if v.mod != nil {
		if err := v.mod.Start(when); err != nil {
			return err
		}
	}
	return v.osc.Start(when)
}

func (v *voice) stop(when float64) error {
	err := v.osc.Stop(when)
	if v.mod != nil {
		err = errors.Join(err, v.mod.Stop(when))
	}
	return err
}

// release disconnects every node of the voice from the graph.
func (v *voice) release() {
	releaseNodes(v.osc, v.filter, v.gain, v.mod, v.modGain)
}

func releaseNodes(nodes ...graph.Node) {
	for _, n := range nodes {
		if n != nil {
			n.Disconnect()
		}
	}
}
