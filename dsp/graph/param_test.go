package graph

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-grove/internal/testutil"
)

// TestParam_SetTargetAtTime_FollowsExponential verifies that a target event
// approaches its target with the requested time constant.
func TestParam_SetTargetAtTime_FollowsExponential(t *testing.T) {
	const sampleRate = 8000.0
	c := newTestContext(t, sampleRate)
	g := c.NewGain()
	g.Connect(c.Destination())

	g.Gain().SetValueAtTime(0, 0)
	g.Gain().SetTargetAtTime(1, 0, 0.1)
	c.Advance(0.1)

	want := 1 - math.Exp(-c.Now()/0.1)
	testutil.RequireNear(t, "smoothed gain", g.Gain().Value(), want, 1e-9)
}

// TestParam_SetTargetAtTime_NoClicks verifies that a large gain change is
// spread over many samples instead of applied in one step.
func TestParam_SetTargetAtTime_NoClicks(t *testing.T) {
	c := newTestContext(t, 8000)
	g := c.NewGain()
	constSource(c, 1).Connect(g)
	g.Connect(c.Destination())
	g.Gain().SetValueAtTime(0, 0)
	g.Gain().SetTargetAtTime(0.9, 0, 0.25)

	out := testutil.Render(c, 4000)
	traj := make([]float64, len(out))
	for i, v := range out {
		traj[i] = float64(v)
	}
	if step := testutil.MaxStep(traj); step > 0.001 {
		t.Fatalf("max per-sample step %v, want <= 0.001", step)
	}
}

// TestParam_ActivatedEventsAreDiscarded verifies that re-targeting a param
// every tick does not accumulate automation state.
func TestParam_ActivatedEventsAreDiscarded(t *testing.T) {
	c := newTestContext(t, 8000)
	g := c.NewGain()
	g.Connect(c.Destination())
	p := g.Gain().(*param)

	for i := 0; i < 1000; i++ {
		now := c.Now()
		p.SetTargetAtTime(float64(i%2), now, 0.5)
		c.Advance(1.0 / 60)
	}
	if len(p.events) > 1 {
		t.Fatalf("%d pending events after steady re-targeting", len(p.events))
	}
}

// TestParam_EventsActivateInTimeOrder verifies that events scheduled out of
// order still apply by time.
func TestParam_EventsActivateInTimeOrder(t *testing.T) {
	c := newTestContext(t, 8000)
	g := c.NewGain()
	g.Connect(c.Destination())
	g.Gain().SetValueAtTime(0.75, 0.2)
	g.Gain().SetValueAtTime(0.25, 0.1)

	c.Advance(0.15)
	testutil.RequireNear(t, "value after first event", g.Gain().Value(), 0.25, 1e-12)
	c.Advance(0.1)
	testutil.RequireNear(t, "value after second event", g.Gain().Value(), 0.75, 1e-12)
}

func TestParam_LinearRampReachesTarget(t *testing.T) {
	c := newTestContext(t, 8000)
	g := c.NewGain()
	g.Connect(c.Destination())
	g.Gain().SetValueAtTime(0, 0)
	g.Gain().LinearRampToValueAtTime(1, 0.5)

	c.Advance(0.25)
	testutil.RequireNear(t, "ramp midpoint", g.Gain().Value(), c.Now()/0.5, 0.01)
	c.Advance(0.3)
	testutil.RequireNear(t, "ramp end", g.Gain().Value(), 1, 1e-12)
}

func TestParam_ExponentialRampReachesTarget(t *testing.T) {
	c := newTestContext(t, 8000)
	g := c.NewGain()
	g.Connect(c.Destination())
	g.Gain().SetValueAtTime(0.3, 0)
	c.Advance(0.02)
	g.Gain().ExponentialRampToValueAtTime(0.01, c.Now()+0.1)

	c.Advance(0.05)
	v := g.Gain().Value()
	if v >= 0.3 || v <= 0.01 {
		t.Fatalf("mid-ramp value %v outside (0.01, 0.3)", v)
	}
	c.Advance(0.1)
	testutil.RequireNear(t, "ramp end", g.Gain().Value(), 0.01, 1e-12)
}

func TestParam_CancelScheduledValues(t *testing.T) {
	c := newTestContext(t, 8000)
	g := c.NewGain()
	g.Connect(c.Destination())
	g.Gain().SetValueAtTime(0.5, 0.1)
	g.Gain().SetValueAtTime(0.2, 0.3)
	g.Gain().CancelScheduledValues(0.2)

	c.Advance(0.5)
	testutil.RequireNear(t, "value after cancel", g.Gain().Value(), 0.5, 1e-12)
}

func TestParam_IgnoresNonFiniteValues(t *testing.T) {
	c := newTestContext(t, 8000)
	g := c.NewGain()
	g.Connect(c.Destination())
	g.Gain().SetValueAtTime(math.NaN(), 0)
	g.Gain().SetTargetAtTime(math.Inf(1), 0, 0.1)
	c.Advance(0.1)
	testutil.RequireNear(t, "gain", g.Gain().Value(), 1, 0)
}
