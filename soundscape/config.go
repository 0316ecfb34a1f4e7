package soundscape

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable constants of the engine.
type Config struct {
	// SampleRate and BlockSize are passed to the backend on Init.
	SampleRate float64 `yaml:"sample_rate"`
	BlockSize  int     `yaml:"block_size"`

	// MasterLevel is the initial master gain.
	MasterLevel float64 `yaml:"master_level"`

	// Seed seeds every random choice of the engine. Zero draws a random seed.
	Seed uint64 `yaml:"seed"`

	// AnalyserSize is the FFT size of the master meter.
	AnalyserSize int `yaml:"analyser_size"`

	Ambient AmbientConfig `yaml:"ambient"`
	Reverb  ReverbConfig  `yaml:"reverb"`

	// ChordPools replaces the built-in chord table when non-empty.
	ChordPools map[Stage][][]float64 `yaml:"chord_pools,omitempty"`
}

// AmbientConfig configures the drone layer.
type AmbientConfig struct {
	Frequencies []float64 `yaml:"frequencies"`
}

// maxReverbDelay bounds the reverb line, which is allocated up front.
const maxReverbDelay = 10.0

// ReverbConfig configures the feedback-delay reverb fed by the harmony bus.
type ReverbConfig struct {
	Delay    float64 `yaml:"delay"`
	MaxDelay float64 `yaml:"max_delay"`
	Tone     float64 `yaml:"tone"`
	Feedback float64 `yaml:"feedback"`
	Wet      float64 `yaml:"wet"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		BlockSize:    128,
		MasterLevel:  0.3,
		AnalyserSize: 2048,
		Ambient: AmbientConfig{
			Frequencies: []float64{55, 82.5, 110, 165},
		},
		Reverb: ReverbConfig{
			Delay:    0.22,
			MaxDelay: 1.2,
			Tone:     2500,
			Feedback: 0.25,
			Wet:      0.25,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. A missing file yields
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks ranges of every field.
func (c Config) Validate() error {
	if !positive(c.SampleRate) {
		return fmt.Errorf("sample rate must be > 0: %v", c.SampleRate)
	}
	if c.BlockSize < 16 || c.BlockSize > 4096 {
		return fmt.Errorf("block size must be in [16, 4096]: %d", c.BlockSize)
	}
	if !positive(c.MasterLevel) || c.MasterLevel > 1 {
		return fmt.Errorf("master level must be in (0, 1]: %v", c.MasterLevel)
	}
	if n := c.AnalyserSize; n < 32 || n > 32768 || n&(n-1) != 0 {
		return fmt.Errorf("analyser size must be a power of two in [32, 32768]: %d", n)
	}
	if len(c.Ambient.Frequencies) == 0 {
		return errors.New("ambient frequencies must not be empty")
	}
	for _, f := range c.Ambient.Frequencies {
		if !positive(f) || f >= c.SampleRate/2 {
			return fmt.Errorf("ambient frequency must be in (0, nyquist): %v", f)
		}
	}
	if err := c.Reverb.validate(); err != nil {
		return err
	}
	if len(c.ChordPools) > 0 {
		if _, err := NewChordLibrary(c.ChordPools); err != nil {
			return err
		}
	}
	return nil
}

func (r ReverbConfig) validate() error {
	if !positive(r.MaxDelay) || r.MaxDelay > maxReverbDelay {
		return fmt.Errorf("reverb max delay must be in (0, %v]: %v", maxReverbDelay, r.MaxDelay)
	}
	if !positive(r.Delay) || r.Delay > r.MaxDelay {
		return fmt.Errorf("reverb delay must be in (0, %v]: %v", r.MaxDelay, r.Delay)
	}
	if !positive(r.Tone) {
		return fmt.Errorf("reverb tone must be > 0: %v", r.Tone)
	}
	if r.Feedback < 0 || r.Feedback >= 1 || math.IsNaN(r.Feedback) {
		return fmt.Errorf("reverb feedback must be in [0, 1): %v", r.Feedback)
	}
	if r.Wet < 0 || math.IsNaN(r.Wet) || math.IsInf(r.Wet, 0) {
		return fmt.Errorf("reverb wet must be >= 0: %v", r.Wet)
	}
	return nil
}

// chordLibrary returns the configured table.
func (c Config) chordLibrary() (*ChordLibrary, error) {
	if len(c.ChordPools) == 0 {
		return DefaultChordLibrary(), nil
	}
	return NewChordLibrary(c.ChordPools)
}

func positive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
