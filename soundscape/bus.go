package soundscape

import (
	"math"

	"github.com/cwbudde/algo-grove/dsp/graph"
)

// Bus levels on Init.
const (
	ambientBusLevel = 0.6
	quietBusLevel   = 0.01
	minSmoothLevel  = 0.001
)

// mixer is the fixed part of the graph: the master bus, one bus per layer
// and the reverb. It is built once and lives as long as the engine.
type mixer struct {
	master   graph.Gain
	ambient  graph.Gain
	wind     graph.Gain
	harmony  graph.Gain
	analyser graph.Analyser
	reverb   *effectsBus
}

func newMixer(g graph.Graph, cfg Config) (*mixer, error) {
	analyser, err := g.NewAnalyser(cfg.AnalyserSize)
	if err != nil {
		return nil, err
	}
	now := g.Now()
	m := &mixer{
		master:   g.NewGain(),
		ambient:  g.NewGain(),
		wind:     g.NewGain(),
		harmony:  g.NewGain(),
		analyser: analyser,
	}
	m.master.Gain().SetValueAtTime(cfg.MasterLevel, now)
	m.master.Connect(analyser)
	analyser.Connect(g.Destination())

	m.wind.Gain().SetValueAtTime(quietBusLevel, now)
	m.harmony.Gain().SetValueAtTime(quietBusLevel, now)
	for _, bus := range []graph.Gain{m.ambient, m.wind, m.harmony} {
		bus.Connect(m.master)
	}

	m.reverb = newEffectsBus(g, cfg.Reverb, m.master)
	m.harmony.Connect(m.reverb.in)
	return m, nil
}

// effectsBus is a feedback delay standing in for reverb:
// in -> delay -> tone -> feedback -> delay, and tone -> wet -> out.
type effectsBus struct {
	in       graph.Gain
	delay    graph.Delay
	tone     graph.Filter
	feedback graph.Gain
	wet      graph.Gain
}

func newEffectsBus(g graph.Graph, rc ReverbConfig, out graph.Node) *effectsBus {
	now := g.Now()
	fx := &effectsBus{
		in:       g.NewGain(),
		delay:    g.NewDelay(rc.MaxDelay),
		tone:     g.NewFilter(graph.Lowpass),
		feedback: g.NewGain(),
		wet:      g.NewGain(),
	}
	fx.delay.DelayTime().SetValueAtTime(rc.Delay, now)
	fx.tone.Frequency().SetValueAtTime(rc.Tone, now)
	fx.feedback.Gain().SetValueAtTime(rc.Feedback, now)
	fx.wet.Gain().SetValueAtTime(rc.Wet, now)

	fx.in.Connect(fx.delay)
	fx.delay.Connect(fx.tone)
	fx.tone.Connect(fx.feedback)
	fx.feedback.Connect(fx.delay)
	fx.tone.Connect(fx.wet)
	fx.wet.Connect(out)
	return fx
}

// setSmooth moves p toward value with time constant tc, starting now. The
// target never drops below a small floor so exponential moves stay valid.
func setSmooth(g graph.Graph, p graph.Param, value, tc float64) {
	p.SetTargetAtTime(math.Max(minSmoothLevel, value), g.Now(), tc)
}
