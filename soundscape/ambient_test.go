package soundscape

import (
	"testing"

	"github.com/cwbudde/algo-grove/internal/testutil"
)

func TestInit_DroneLevels(t *testing.T) {
	h := newStartedHarness(t)
	h.advance(0.05)

	testutil.RequireNear(t, "ambient bus", h.mix.ambient.Gain().Value(), 0.6, 1e-12)
	testutil.RequireNear(t, "wind bus", h.mix.wind.Gain().Value(), 0.01, 1e-12)
	testutil.RequireNear(t, "harmony bus", h.mix.harmony.Gain().Value(), 0.01, 1e-12)
	testutil.RequireNear(t, "master", h.mix.master.Gain().Value(), 0.3, 1e-12)
	for i, v := range h.ambient {
		testutil.RequireNear(t, "drone voice gain", v.gain.Gain().Value(), 0.1+float64(i)*0.02, 1e-12)
		if v.mod == nil {
			t.Fatalf("drone voice %d has no LFO", i)
		}
		rate := v.mod.Frequency().Value()
		if rate < 0.1 || rate > 0.3 {
			t.Fatalf("drone voice %d LFO rate %v outside [0.1, 0.3]", i, rate)
		}
	}
}

// TestUpdateAnxiety_DarkensDrone verifies the ambient bus settles on
// max(0.15, 0.6 - 0.45a).
func TestUpdateAnxiety_DarkensDrone(t *testing.T) {
	tests := []struct {
		anxiety float64
		want    float64
	}{
		{0, 0.6},
		{0.5, 0.375},
		{1, 0.15},
		{2, 0.15},
	}
	for _, tt := range tests {
		h := newStartedHarness(t)
		h.UpdateAnxiety(tt.anxiety, true)
		h.advance(5)
		testutil.RequireNear(t, "ambient bus", h.mix.ambient.Gain().Value(), tt.want, 1e-3)
	}
}

// TestUpdateAnxiety_NoJump verifies the ambient bus moves smoothly rather
// than jumping to its target.
func TestUpdateAnxiety_NoJump(t *testing.T) {
	h := newStartedHarness(t)
	h.advance(0.05)
	h.UpdateAnxiety(1, false)
	h.advance(0.05)
	v := h.mix.ambient.Gain().Value()
	if v <= 0.5 {
		t.Fatalf("ambient bus %v jumped toward 0.15 within 50 ms", v)
	}
}

// TestUpdateRest_DeepRestMakesRoom verifies deep rest ducks the drone and
// opens the harmony bus, and leaving it restores both.
func TestUpdateRest_DeepRestMakesRoom(t *testing.T) {
	h := newStartedHarness(t)
	h.UpdateRest(0.5, true, Budding)
	h.advance(10)
	testutil.RequireNear(t, "ambient bus in deep rest", h.mix.ambient.Gain().Value(), 0.175, 2e-3)
	testutil.RequireNear(t, "harmony bus in deep rest", h.mix.harmony.Gain().Value(), 0.345, 2e-3)
	if h.HarmonyVoiceCount() == 0 {
		t.Fatal("deep rest built no harmony")
	}

	h.UpdateRest(0.5, false, Budding)
	h.advance(10)
	testutil.RequireNear(t, "ambient bus after rest", h.mix.ambient.Gain().Value(), 0.6, 2e-3)
	testutil.RequireNear(t, "harmony bus after rest", h.mix.harmony.Gain().Value(), 0.01, 2e-3)
	if h.HarmonyVoiceCount() != 0 {
		t.Fatalf("harmony voices after rest = %d, want 0", h.HarmonyVoiceCount())
	}
}

func TestUpdateRest_AmbientFloor(t *testing.T) {
	h := newStartedHarness(t)
	h.UpdateRest(1, true, Radiant)
	h.advance(12)
	testutil.RequireNear(t, "ambient floor", h.mix.ambient.Gain().Value(), 0.04, 2e-3)
	testutil.RequireNear(t, "harmony ceiling", h.mix.harmony.Gain().Value(), 0.45, 2e-3)
}
