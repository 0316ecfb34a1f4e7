package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/device"
	"github.com/cwbudde/algo-grove/soundscape"
)

// useConfig writes a small configuration and points the commands at it.
func useConfig(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	cfg := soundscape.DefaultConfig()
	cfg.SampleRate = 8000
	cfg.AnalyserSize = 256
	cfg.Seed = 3
	path := filepath.Join(t.TempDir(), "grove.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	configPath = path
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

// TestSession_Phases verifies the script swells, settles and ends in deep
// rest.
func TestSession_Phases(t *testing.T) {
	var s session
	p, _ := s.step(10)
	if p.Resting || p.DeepRest || p.Anxiety < 0.4 {
		t.Fatalf("swell phase = %+v", p)
	}
	p, _ = s.step(30)
	if !p.Resting || p.DeepRest || p.Rest <= 0 || p.Rest >= 0.3 {
		t.Fatalf("settle phase = %+v", p)
	}
	p, _ = s.step(60)
	if !p.DeepRest || p.Anxiety != 0 || p.Rest < 0.3 {
		t.Fatalf("deep rest phase = %+v", p)
	}
	p, _ = s.step(1000)
	if p.Rest != 1 || p.Stage != soundscape.Radiant {
		t.Fatalf("late session = %+v", p)
	}
}

// TestSession_GrowsThroughEveryStage verifies each stage is reached once,
// in order, and reported as growth.
func TestSession_GrowsThroughEveryStage(t *testing.T) {
	var s session
	var grown []soundscape.Stage
	for i := 0; i < 130*tickRate; i++ {
		if p, grew := s.step(float64(i) / tickRate); grew {
			grown = append(grown, p.Stage)
		}
	}
	want := soundscape.Stages()[1:]
	if len(grown) != len(want) {
		t.Fatalf("grew %v, want %v", grown, want)
	}
	for i := range want {
		if grown[i] != want[i] {
			t.Fatalf("grew %v, want %v", grown, want)
		}
	}
}

func TestRunRender_WritesPCM(t *testing.T) {
	useConfig(t)
	renderOut = filepath.Join(t.TempDir(), "out.f32")
	renderSeconds = 2

	cmd, out := newTestCmd()
	if err := runRender(cmd, nil); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	info, err := os.Stat(renderOut)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 2*8000*4 {
		t.Fatalf("output size = %d, want %d", info.Size(), 2*8000*4)
	}
	if !strings.Contains(out.String(), "wrote 16000 frames") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	data, err := os.ReadFile(renderOut)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Count(data, []byte{0}) == len(data) {
		t.Fatal("render is silent")
	}
}

func TestRunRender_RejectsBadLength(t *testing.T) {
	useConfig(t)
	renderOut = filepath.Join(t.TempDir(), "out.f32")
	renderSeconds = 0
	cmd, _ := newTestCmd()
	if err := runRender(cmd, nil); err == nil {
		t.Fatal("expected error for zero seconds")
	}
}

func TestRunChords_ListsEveryStage(t *testing.T) {
	useConfig(t)
	cmd, out := newTestCmd()
	if err := runChords(cmd, nil); err != nil {
		t.Fatalf("runChords: %v", err)
	}
	for _, stage := range soundscape.Stages() {
		if !strings.Contains(out.String(), string(stage)) {
			t.Errorf("chord listing lacks %s:\n%s", stage, out.String())
		}
	}
	if !strings.Contains(out.String(), "349.23 440 523.25") {
		t.Errorf("chord listing lacks the second sprouting chord:\n%s", out.String())
	}
}

func TestRunPlay_UnknownBackend(t *testing.T) {
	useConfig(t)
	backendName = "no-such-backend"
	cmd, _ := newTestCmd()
	if err := runPlay(cmd, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

// TestReloadMasterLevel verifies a valid file is applied and a broken one
// is reported.
func TestReloadMasterLevel(t *testing.T) {
	useConfig(t)
	var dev device.Offline
	defer dev.Close()
	cmd, _ := newTestCmd()
	e, err := newEngine(cmd, &dev)
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}

	cfg, err := soundscape.LoadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	cfg.MasterLevel = 0.6
	if err := cfg.Save(configPath); err != nil {
		t.Fatal(err)
	}
	if err := reloadMasterLevel(e, configPath); err != nil {
		t.Fatalf("reloadMasterLevel: %v", err)
	}

	if err := os.WriteFile(configPath, []byte("master_level: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reloadMasterLevel(e, configPath); err == nil {
		t.Fatal("expected error for a broken config")
	}
}
