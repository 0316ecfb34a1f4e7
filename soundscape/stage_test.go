package soundscape

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRestHarmonyStage_BareGrove(t *testing.T) {
	tests := []struct {
		rest float64
		want Stage
	}{
		{0.0, Budding},
		{0.32, Budding},
		{0.33, Sprouting},
		{0.65, Sprouting},
		{0.66, Blooming},
		{0.84, Blooming},
		{0.85, Flourishing},
		{1.0, Flourishing},
	}
	for _, tt := range tests {
		if got := RestHarmonyStage(tt.rest, Bare); got != tt.want {
			t.Errorf("RestHarmonyStage(%v, bare) = %q, want %q", tt.rest, got, tt.want)
		}
	}
}

func TestRestHarmonyStage_GrownGroveKeepsStage(t *testing.T) {
	if got := RestHarmonyStage(0.9, Sprouting); got != Sprouting {
		t.Fatalf("RestHarmonyStage(0.9, sprouting) = %q", got)
	}
	if got := RestHarmonyStage(0.1, Stage("unknown")); got != Stage("unknown") {
		t.Fatalf("unknown stage not passed through: %q", got)
	}
}

func TestStage_OrderAndParse(t *testing.T) {
	want := []Stage{Bare, Budding, Sprouting, Blooming, Flourishing, Radiant}
	if diff := cmp.Diff(want, Stages()); diff != "" {
		t.Fatalf("stage order mismatch (-want +got):\n%s", diff)
	}
	for i, s := range want {
		if s.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", s, s.Index(), i)
		}
		got, err := ParseStage(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStage(%q) = %q, %v", s, got, err)
		}
	}
	if Stage("unknown").Index() != -1 {
		t.Fatal("unknown stage has an index")
	}
	if _, err := ParseStage("wilted"); err == nil {
		t.Fatal("ParseStage accepted an unknown stage")
	}
}

func TestDefaultChordLibrary_Counts(t *testing.T) {
	got := map[Stage]int{}
	for stage, pool := range DefaultChordLibrary().Pools() {
		got[stage] = len(pool)
	}
	want := map[Stage]int{
		Bare: 1, Budding: 1, Sprouting: 2, Blooming: 1, Flourishing: 1, Radiant: 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("chord counts mismatch (-want +got):\n%s", diff)
	}
}

// TestChordLibrary_LookupFallsBackToBudding verifies unknown and empty
// stage names resolve to the budding pool.
func TestChordLibrary_LookupFallsBackToBudding(t *testing.T) {
	lib := DefaultChordLibrary()
	for _, name := range []Stage{"unknown", ""} {
		stage, pool := lib.Lookup(name)
		if stage != Budding {
			t.Fatalf("Lookup(%q) stage = %q, want budding", name, stage)
		}
		if diff := cmp.Diff([][]float64{{261.63, 329.63}}, pool); diff != "" {
			t.Fatalf("Lookup(%q) pool mismatch (-want +got):\n%s", name, diff)
		}
	}
	if stage, _ := lib.Lookup(Radiant); stage != Radiant {
		t.Fatalf("Lookup(radiant) = %q", stage)
	}
}

func TestChordLibrary_PoolsIsACopy(t *testing.T) {
	lib := DefaultChordLibrary()
	pools := lib.Pools()
	pools[Budding][0][0] = 1
	pools[Radiant] = nil
	if diff := cmp.Diff(defaultPools(), lib.Pools()); diff != "" {
		t.Fatalf("library changed through its copy (-want +got):\n%s", diff)
	}
}

func TestNewChordLibrary_Validates(t *testing.T) {
	tests := []struct {
		name  string
		pools map[Stage][][]float64
	}{
		{"unknown stage", map[Stage][][]float64{Budding: {{220}}, "wilted": {{220}}}},
		{"empty chord", map[Stage][][]float64{Budding: {{}}}},
		{"negative frequency", map[Stage][][]float64{Budding: {{-220}}}},
		{"missing budding", map[Stage][][]float64{Radiant: {{220}}}},
	}
	for _, tt := range tests {
		if _, err := NewChordLibrary(tt.pools); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	src := map[Stage][][]float64{Budding: {{220, 330}}}
	lib, err := NewChordLibrary(src)
	if err != nil {
		t.Fatalf("NewChordLibrary: %v", err)
	}
	src[Budding][0][0] = 1
	if _, pool := lib.Lookup(Budding); pool[0][0] != 220 {
		t.Fatal("library shares memory with its input")
	}
}

// TestEngine_ChordPoolsOverride verifies configured pools reach the engine.
func TestEngine_ChordPoolsOverride(t *testing.T) {
	cfg := testConfig()
	cfg.ChordPools = map[Stage][][]float64{Budding: {{110, 220}}}
	h := newStartedHarness(t, WithConfig(cfg))
	if diff := cmp.Diff(cfg.ChordPools, h.ChordPools()); diff != "" {
		t.Fatalf("pools mismatch (-want +got):\n%s", diff)
	}
	h.CreateHarmonyTones(1, Radiant)
	if h.CurrentHarmonyStage() != Budding {
		t.Fatalf("stage without chords resolved to %q, want budding", h.CurrentHarmonyStage())
	}
}
