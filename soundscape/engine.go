package soundscape

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-grove/dsp/graph"
	"github.com/cwbudde/algo-grove/internal/timeline"
)

var errNoBackend = errors.New("soundscape: no audio backend")

// Backend opens the signal graph of an audio device.
type Backend interface {
	Open(sampleRate float64, blockSize int) (graph.Graph, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(sampleRate float64, blockSize int) (graph.Graph, error)

// Open calls f.
func (f BackendFunc) Open(sampleRate float64, blockSize int) (graph.Graph, error) {
	return f(sampleRate, blockSize)
}

// Params is the listener state fed to Update once per tick.
type Params struct {
	Anxiety  float64
	Resting  bool
	Rest     float64
	DeepRest bool
	Stage    Stage
}

type config struct {
	cfg     Config
	backend Backend
	logger  *zap.Logger
	rng     *rand.Rand
	seed    uint64
	hasSeed bool
}

// Option configures an [Engine].
type Option func(*config) error

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(c *config) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("soundscape: %w", err)
		}
		c.cfg = cfg
		return nil
	}
}

// WithBackend sets the device backend opened by Init.
func WithBackend(b Backend) Option {
	return func(c *config) error {
		c.backend = b
		return nil
	}
}

// WithLogger sets the logger (default no-op).
func WithLogger(l *zap.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return errors.New("soundscape: logger must not be nil")
		}
		c.logger = l
		return nil
	}
}

// WithRand sets the random source for every chord, pitch and timing choice.
func WithRand(r *rand.Rand) Option {
	return func(c *config) error {
		if r == nil {
			return errors.New("soundscape: rand must not be nil")
		}
		c.rng = r
		return nil
	}
}

// WithSeed seeds the random source, overriding Config.Seed.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed
		c.hasSeed = true
		return nil
	}
}

// Engine is the generative soundscape. It reshapes a signal graph from the
// listener state fed to Update and fires chord changes and chimes against
// the graph clock.
//
// Engine is not safe for concurrent use. Every call, and every deferred
// action run from Poll, happens on the caller's goroutine. The engine never
// returns errors from its playback calls: a missing device turns it into a
// silent no-op.
type Engine struct {
	cfg     Config
	backend Backend
	log     *zap.Logger
	rng     *rand.Rand
	chords  *ChordLibrary

	gesture     bool
	initialized bool
	enabled     bool

	g       graph.Graph
	mix     *mixer
	pending timeline.Queue

	ambient []*voice
	wind    *windVoice

	harmony      []*voice
	harmonyStage Stage
	buildSeq     uint64
	buildWaiting bool

	chordSched *Scheduler
	chimeSched *Scheduler
}

// New creates an engine. Nothing is built until Init.
func New(opts ...Option) (*Engine, error) {
	c := config{cfg: DefaultConfig()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&c); err != nil {
			return nil, err
		}
	}

	chords, err := c.cfg.chordLibrary()
	if err != nil {
		return nil, fmt.Errorf("soundscape: %w", err)
	}

	rng := c.rng
	if rng == nil {
		seed := c.cfg.Seed
		if c.hasSeed {
			seed = c.seed
		}
		if seed == 0 {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		} else {
			rng = rand.New(rand.NewPCG(seed, 0))
		}
	}

	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		cfg:        c.cfg,
		backend:    c.backend,
		log:        logger.Named("soundscape"),
		rng:        rng,
		chords:     chords,
		enabled:    true,
		chordSched: newChordScheduler(),
		chimeSched: newChimeScheduler(),
	}, nil
}

// NotifyUserGesture records that the user interacted with the host. Init
// does nothing before this, mirroring platform autoplay policies.
func (e *Engine) NotifyUserGesture() { e.gesture = true }

// Init opens the device and builds the buses, the reverb and the drone.
// It is idempotent. A device failure disables the engine for good.
func (e *Engine) Init() {
	if e.initialized || !e.enabled {
		return
	}
	if !e.gesture {
		e.log.Debug("init deferred until a user gesture")
		return
	}
	if e.backend == nil {
		e.fail(errNoBackend)
		return
	}

	g, err := e.backend.Open(e.cfg.SampleRate, e.cfg.BlockSize)
	if err != nil {
		e.fail(err)
		return
	}
	if g == nil {
		e.fail(errNoBackend)
		return
	}
	mix, err := newMixer(g, e.cfg)
	if err != nil {
		e.fail(err)
		return
	}

	e.g = g
	e.mix = mix
	e.buildAmbient()
	e.initialized = true
	e.log.Info("audio initialized",
		zap.Float64("sample_rate", g.SampleRate()),
		zap.Int("drone_voices", len(e.ambient)))
}

func (e *Engine) fail(err error) {
	e.enabled = false
	e.log.Warn("audio initialization failed", zap.Error(err))
}

// active reports whether playback calls should do anything.
func (e *Engine) active() bool {
	return e.enabled && e.g != nil
}

// Toggle mutes by suspending the device graph, or unmutes by resuming it.
// Enabled mirrors the result.
func (e *Engine) Toggle() {
	if e.g == nil {
		return
	}
	if e.g.State() == graph.Suspended {
		if err := e.g.Resume(); err != nil {
			e.log.Warn("resume failed", zap.Error(err))
			return
		}
		e.enabled = true
		return
	}
	e.Poll()
	if err := e.g.Suspend(); err != nil {
		e.log.Warn("suspend failed", zap.Error(err))
		return
	}
	e.enabled = false
}

// SetMasterVolume ramps the master gain to v over 100 ms.
func (e *Engine) SetMasterVolume(v float64) {
	if !e.active() || math.IsNaN(v) {
		return
	}
	e.mix.master.Gain().ExponentialRampToValueAtTime(math.Max(0.01, v), e.g.Now()+0.1)
}

// Poll runs deferred actions that are due on the graph clock.
func (e *Engine) Poll() {
	if e.g == nil {
		return
	}
	e.pending.RunDue(e.g.Now())
}

// Update applies one tick of listener state. Rest rules run after anxiety
// rules, so rest decides the ambient level when both move it.
func (e *Engine) Update(p Params) {
	if !e.active() {
		return
	}
	e.Poll()
	e.UpdateAnxiety(p.Anxiety, p.Resting)
	e.UpdateRest(p.Rest, p.DeepRest, p.Stage)
	e.tickSchedulers(p)
}

// Milestone marks the grove reaching stage. Any stage past bare plays the
// bloom burst and, when the listener is in deep rest, the harmony is
// rebuilt for the new stage at once.
func (e *Engine) Milestone(stage Stage, deepRest bool, rest float64) {
	if !e.active() {
		return
	}
	if stage != Bare {
		e.PlayBloomBurst(bloomBasePitch)
	}
	if deepRest {
		e.log.Debug("milestone restage", zap.Stringer("stage", stage))
		e.harmonyStage = ""
		e.UpdateRest(rest, true, stage)
	}
}

// Enabled reports whether the engine is producing sound.
func (e *Engine) Enabled() bool { return e.enabled }

// Initialized reports whether Init succeeded.
func (e *Engine) Initialized() bool { return e.initialized }

// Now returns the graph clock, or 0 before Init.
func (e *Engine) Now() float64 {
	if e.g == nil {
		return 0
	}
	return e.g.Now()
}

// CurrentHarmonyStage returns the stage of the active harmony, or "" if
// none was chosen yet.
func (e *Engine) CurrentHarmonyStage() Stage { return e.harmonyStage }

// ChordPools returns a copy of the chord table.
func (e *Engine) ChordPools() map[Stage][][]float64 { return e.chords.Pools() }

// HarmonyVoiceCount returns the number of harmony voices, including voices
// fading out.
func (e *Engine) HarmonyVoiceCount() int { return len(e.harmony) }

// AmbientVoiceCount returns the number of drone voices.
func (e *Engine) AmbientVoiceCount() int { return len(e.ambient) }

// WindActive reports whether the wind voice exists.
func (e *Engine) WindActive() bool { return e.wind != nil }

// ChordScheduler returns the chord timer state.
func (e *Engine) ChordScheduler() SchedulerState { return e.chordSched.SchedulerState }

// ChimeScheduler returns the chime timer state.
func (e *Engine) ChimeScheduler() SchedulerState { return e.chimeSched.SchedulerState }

// Spectrum writes the master spectrum in dBFS into dst. It returns nil
// before Init.
func (e *Engine) Spectrum(dst []float64) []float64 {
	if e.mix == nil {
		return nil
	}
	return e.mix.analyser.Spectrum(dst)
}

// Level returns the RMS level of the master output.
func (e *Engine) Level() float64 {
	if e.mix == nil {
		return 0
	}
	return e.mix.analyser.Level()
}

// after schedules fn delay seconds from now. fn only runs while the engine
// is enabled.
func (e *Engine) after(delay float64, fn func()) {
	e.pending.At(e.g.Now()+delay, func() {
		if !e.active() {
			return
		}
		fn()
	})
}

// stopVoice stops v at when. Stopping a voice that already stopped is
// expected during overlapping fades and only logged at debug level.
func (e *Engine) stopVoice(layer string, v *voice, when float64) {
	if err := v.stop(when); err != nil {
		e.logStop(layer, err)
	}
}

func (e *Engine) logStop(layer string, err error) {
	if errors.Is(err, graph.ErrInvalidState) {
		e.log.Debug("stale node stop ignored", zap.String("layer", layer))
		return
	}
	e.log.Warn("node stop failed", zap.String("layer", layer), zap.Error(err))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
