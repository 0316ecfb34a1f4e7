package soundscape

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/algo-grove/dsp/graph"
	"github.com/cwbudde/algo-grove/internal/testutil"
)

// TestInit_RequiresGesture verifies Init waits for a user gesture without
// disabling the engine.
func TestInit_RequiresGesture(t *testing.T) {
	h := newHarness(t)
	h.Init()
	if h.Initialized() || h.opens != 0 {
		t.Fatal("Init opened the device before a gesture")
	}
	if !h.Enabled() {
		t.Fatal("Init before a gesture disabled the engine")
	}

	h.NotifyUserGesture()
	h.Init()
	if !h.Initialized() || h.opens != 1 {
		t.Fatalf("initialized=%v opens=%d after gesture", h.Initialized(), h.opens)
	}
}

// TestInit_Idempotent verifies a second Init builds nothing: one device,
// one master bus, one reverb.
func TestInit_Idempotent(t *testing.T) {
	h := newStartedHarness(t)
	nodes := h.ctx.NodeCount()
	mix := h.mix

	h.Init()
	if h.opens != 1 {
		t.Fatalf("device opened %d times", h.opens)
	}
	if got := h.ctx.NodeCount(); got != nodes {
		t.Fatalf("node count after second Init = %d, want %d", got, nodes)
	}
	if h.mix != mix {
		t.Fatal("second Init replaced the mixer")
	}
	if h.AmbientVoiceCount() != len(testConfig().Ambient.Frequencies) {
		t.Fatalf("drone voices = %d", h.AmbientVoiceCount())
	}
}

// TestInit_BackendFailureDisables verifies a device failure is logged,
// disables the engine for good and is never retried.
func TestInit_BackendFailureDisables(t *testing.T) {
	opens := 0
	failing := BackendFunc(func(float64, int) (graph.Graph, error) {
		opens++
		return nil, errors.New("no device")
	})
	h := newHarness(t, WithBackend(failing))
	h.NotifyUserGesture()
	h.Init()
	h.Init()

	if h.Enabled() || h.Initialized() {
		t.Fatalf("enabled=%v initialized=%v after failure", h.Enabled(), h.Initialized())
	}
	if opens != 1 {
		t.Fatalf("device opened %d times, want 1", opens)
	}
	if n := h.count("audio initialization failed"); n != 1 {
		t.Fatalf("failure logged %d times, want 1", n)
	}
}

func TestInit_MissingBackendDisables(t *testing.T) {
	h := newHarness(t, WithBackend(nil))
	h.NotifyUserGesture()
	h.Init()
	if h.Enabled() || h.Initialized() {
		t.Fatal("engine without backend should be disabled")
	}
}

// TestDisabledEngine_CallsAreNoOps verifies every public call on a disabled
// engine returns without touching voices, wind or schedulers.
func TestDisabledEngine_CallsAreNoOps(t *testing.T) {
	failing := BackendFunc(func(float64, int) (graph.Graph, error) {
		return nil, errors.New("no device")
	})
	h := newHarness(t, WithBackend(failing))
	h.NotifyUserGesture()
	h.Init()

	h.Toggle()
	h.Update(Params{Anxiety: 0.8, Rest: 0.9, DeepRest: true, Stage: Radiant})
	h.UpdateAnxiety(0.8, false)
	h.UpdateRest(0.9, true, Radiant)
	h.CreateHarmonyTones(1, Blooming)
	h.BuildHarmonyVoices([]float64{220, 330}, Blooming, 1)
	h.UpdateHarmonyLevels(1)
	h.SetHarmonyChord([]float64{220}, 1, Budding)
	h.FadeOutHarmonyTones(1)
	h.PlayBloomChime(523.25)
	h.PlayRestChime(523.25, 0.1)
	h.PlayBloomBurst(523.25)
	h.PlayRestChimes(Radiant)
	h.Milestone(Radiant, true, 1)
	h.SetMasterVolume(0.5)
	h.Poll()

	if h.Enabled() {
		t.Fatal("Toggle re-enabled an engine without a device")
	}
	if h.WindActive() || h.HarmonyVoiceCount() != 0 || h.CurrentHarmonyStage() != "" {
		t.Fatal("disabled engine changed voice state")
	}
	if diff := cmp.Diff(SchedulerState{Interval: 7}, h.ChordScheduler()); diff != "" {
		t.Fatalf("chord scheduler changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(SchedulerState{Interval: 12}, h.ChimeScheduler()); diff != "" {
		t.Fatalf("chime scheduler changed (-want +got):\n%s", diff)
	}
	if h.Spectrum(nil) != nil || h.Level() != 0 || h.Now() != 0 {
		t.Fatal("disabled engine reported meter data")
	}
	if h.pending.Len() != 0 {
		t.Fatalf("disabled engine queued %d actions", h.pending.Len())
	}
}

// TestToggle_MutesAndResumes verifies Toggle suspends the graph, that a
// muted engine ignores updates, and that a second Toggle resumes.
func TestToggle_MutesAndResumes(t *testing.T) {
	h := newStartedHarness(t)

	h.Toggle()
	if h.Enabled() || h.ctx.State() != graph.Suspended {
		t.Fatalf("enabled=%v state=%v after mute", h.Enabled(), h.ctx.State())
	}
	h.Update(Params{Anxiety: 0.8, DeepRest: true, Rest: 0.5, Stage: Budding})
	if h.WindActive() || h.ChordScheduler().Armed() || h.CurrentHarmonyStage() != "" {
		t.Fatal("muted engine reacted to an update")
	}

	h.Toggle()
	if !h.Enabled() || h.ctx.State() != graph.Running {
		t.Fatalf("enabled=%v state=%v after unmute", h.Enabled(), h.ctx.State())
	}
	h.Update(Params{Anxiety: 0.8})
	if !h.WindActive() {
		t.Fatal("unmuted engine ignored an update")
	}
}

// TestToggle_FreezesPendingActions verifies deferred actions wait out a
// mute instead of being lost.
func TestToggle_FreezesPendingActions(t *testing.T) {
	h := newStartedHarness(t)
	h.UpdateAnxiety(0.6, false)
	h.UpdateAnxiety(0, false)

	h.Toggle()
	h.ctx.Advance(5)
	h.Poll()
	if !h.WindActive() {
		t.Fatal("wind torn down while muted")
	}

	h.Toggle()
	h.advance(2)
	if h.WindActive() {
		t.Fatal("wind teardown lost across a mute")
	}
}

func TestSetMasterVolume_Ramps(t *testing.T) {
	h := newStartedHarness(t)
	h.SetMasterVolume(0.5)
	h.advance(0.2)
	testutil.RequireNear(t, "master gain", h.mix.master.Gain().Value(), 0.5, 1e-9)

	h.SetMasterVolume(0)
	h.advance(0.2)
	testutil.RequireNear(t, "master gain floor", h.mix.master.Gain().Value(), 0.01, 1e-9)
}

// TestMeter_ReportsDrone verifies the master meter sees the drone.
func TestMeter_ReportsDrone(t *testing.T) {
	h := newHarness(t)
	if h.Spectrum(nil) != nil {
		t.Fatal("spectrum before Init")
	}
	h.NotifyUserGesture()
	h.Init()
	h.advance(1)

	if h.Level() <= 0 {
		t.Fatal("drone not audible on the master meter")
	}
	spec := h.Spectrum(nil)
	if len(spec) != testConfig().AnalyserSize/2+1 {
		t.Fatalf("spectrum bins = %d", len(spec))
	}
}

func TestNew_RejectsBadOptions(t *testing.T) {
	bad := testConfig()
	bad.MasterLevel = 2
	if _, err := New(WithConfig(bad)); err == nil {
		t.Fatal("expected error for invalid config")
	}
	if _, err := New(WithLogger(nil)); err == nil {
		t.Fatal("expected error for nil logger")
	}
	if _, err := New(WithRand(nil)); err == nil {
		t.Fatal("expected error for nil rand")
	}
}

// TestNew_SeedIsDeterministic verifies two engines with one seed make the
// same random choices.
func TestNew_SeedIsDeterministic(t *testing.T) {
	a := newStartedHarness(t, WithSeed(99))
	b := newStartedHarness(t, WithSeed(99))
	for i := 0; i < 5; i++ {
		a.UpdateRest(0.5, true, Bare)
		b.UpdateRest(0.5, true, Bare)
		a.Update(Params{Rest: 0.5, DeepRest: true, Resting: true, Stage: Bare})
		b.Update(Params{Rest: 0.5, DeepRest: true, Resting: true, Stage: Bare})
		a.advance(1)
		b.advance(1)
	}
	if diff := cmp.Diff(a.ChimeScheduler(), b.ChimeScheduler()); diff != "" {
		t.Fatalf("chime schedules differ (-a +b):\n%s", diff)
	}
}
