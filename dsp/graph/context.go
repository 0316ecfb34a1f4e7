package graph

import (
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-grove/dsp/delay"
)

const (
	defaultBlockSize = 128
	minBlockSize     = 16
	maxBlockSize     = 4096
)

// Option configures a Context.
type Option func(*Context)

// WithBlockSize sets the render quantum in frames. Values outside
// [16, 4096] are ignored.
func WithBlockSize(frames int) Option {
	return func(c *Context) {
		if frames >= minBlockSize && frames <= maxBlockSize {
			c.blockSize = frames
		}
	}
}

// Context is the native pull-based implementation of Graph. It renders
// mono audio in fixed quanta and owns the graph clock.
//
// All node and parameter methods are safe to call while another goroutine
// is inside Render.
type Context struct {
	mu sync.Mutex

	sampleRate float64
	blockSize  int
	frames     int64
	quantum    uint64
	state      State

	dest    *destinationNode
	nodes   map[*node]struct{}
	delays  []*delayNode
	silence []float64
	pending []float64
}

var _ Graph = (*Context)(nil)

// NewContext creates a running graph at sampleRate.
func NewContext(sampleRate float64, opts ...Option) (*Context, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("graph sample rate must be > 0: %f", sampleRate)
	}
	c := &Context{
		sampleRate: sampleRate,
		blockSize:  defaultBlockSize,
		nodes:      make(map[*node]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.silence = make([]float64, c.blockSize)
	c.dest = &destinationNode{}
	c.initNode(&c.dest.node, c.dest)
	// The destination is not a releasable node.
	delete(c.nodes, &c.dest.node)
	return c, nil
}

// SampleRate returns the sample rate in Hz.
func (c *Context) SampleRate() float64 { return c.sampleRate }

// BlockSize returns the render quantum in frames.
func (c *Context) BlockSize() int { return c.blockSize }

// Now returns the graph clock in seconds. It only advances while rendering.
func (c *Context) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frames) / c.sampleRate
}

// Destination returns the node whose input is rendered.
func (c *Context) Destination() Node { return c.dest }

// State returns the run state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Suspend stops the clock; Render produces silence until Resume.
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed {
		return ErrClosed
	}
	c.state = Suspended
	return nil
}

// Resume restarts the clock.
func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed {
		return ErrClosed
	}
	c.state = Running
	return nil
}

// Close permanently stops rendering.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Closed
	c.pending = nil
	return nil
}

// NodeCount returns the number of live nodes, excluding the destination.
func (c *Context) NodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Render fills dst with mono samples in [-1, 1]. While the graph is not
// running it writes silence and the clock stands still.
func (c *Context) Render(dst []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := 0; i < len(dst); {
		if c.state != Running {
			clear(dst[i:])
			return
		}
		if len(c.pending) == 0 {
			c.renderQuantum()
			c.pending = c.dest.out
		}
		n := min(len(dst)-i, len(c.pending))
		for j, x := range c.pending[:n] {
			dst[i+j] = float32(clamp(x, -1, 1))
		}
		c.pending = c.pending[n:]
		i += n
	}
}

// Advance renders and discards at least seconds of audio. It is the
// offline clock used by tests and headless hosts.
func (c *Context) Advance(seconds float64) {
	if seconds <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		return
	}
	target := c.frames + int64(math.Ceil(seconds*c.sampleRate))
	c.pending = nil
	for c.frames < target {
		c.renderQuantum()
	}
}

func (c *Context) renderQuantum() {
	c.quantum++
	q := c.quantum
	c.dest.pull(q)
	for _, d := range c.delays {
		d.commit(q)
	}
	c.frames += int64(c.blockSize)
}

// NewOscillator creates a stopped oscillator at 440 Hz.
func (c *Context) NewOscillator(w Waveform) Oscillator {
	c.mu.Lock()
	defer c.mu.Unlock()
	o := &oscillatorNode{waveform: w}
	c.initNode(&o.node, o)
	o.frequency = c.newParam(440)
	return o
}

// NewBufferSource creates a stopped source playing buf. The buffer is
// not copied.
func (c *Context) NewBufferSource(buf []float64, loop bool) Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &bufferSourceNode{buf: buf, loop: loop}
	c.initNode(&s.node, s)
	return s
}

// NewFilter creates a biquad filter at 350 Hz, Q 1.
func (c *Context) NewFilter(kind FilterKind) Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := &filterNode{kind: kind}
	c.initNode(&f.node, f)
	f.frequency = c.newParam(350)
	f.q = c.newParam(1)
	return f
}

// NewGain creates a unity gain node.
func (c *Context) NewGain() Gain {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := &gainNode{}
	c.initNode(&g.node, g)
	g.gain = c.newParam(1)
	return g
}

// NewDelay creates a delay able to hold maxSeconds. The effective delay is
// never shorter than one render quantum.
func (c *Context) NewDelay(maxSeconds float64) Delay {
	c.mu.Lock()
	defer c.mu.Unlock()
	if maxSeconds <= 0 || math.IsNaN(maxSeconds) || math.IsInf(maxSeconds, 0) {
		maxSeconds = 1
	}
	size := int(math.Ceil(maxSeconds*c.sampleRate)) + 2*c.blockSize
	line, _ := delay.New(size) // size > 0
	d := &delayNode{line: line, scratch: make([]float64, c.blockSize)}
	c.initNode(&d.node, d)
	d.delayTime = c.newParam(0)
	c.delays = append(c.delays, d)
	return d
}

// NewAnalyser creates a pass-through analyser with an fftSize window.
func (c *Context) NewAnalyser(fftSize int) (Analyser, error) {
	a, err := newAnalyserNode(fftSize, c.sampleRate)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initNode(&a.node, a)
	return a, nil
}

func (c *Context) initNode(n *node, self renderer) {
	n.ctx = c
	n.self = self
	n.out = make([]float64, c.blockSize)
	c.nodes[n] = struct{}{}
}

func (c *Context) newParam(value float64) *param {
	return &param{ctx: c, value: value, buf: make([]float64, c.blockSize)}
}

// frameAt converts a clock time to a frame index, never earlier than now.
func (c *Context) frameAt(t float64) int64 {
	if math.IsNaN(t) || t <= c.now() {
		return c.frames
	}
	return int64(math.Round(t * c.sampleRate))
}

func (c *Context) nativeNode(dst Node) *node {
	r, ok := dst.(renderer)
	if !ok || r.base().ctx != c {
		panic(fmt.Sprintf("graph: cannot connect to foreign node %T", dst))
	}
	return r.base()
}

func (c *Context) nativeParam(p Param) *param {
	np, ok := p.(*param)
	if !ok || np.ctx != c {
		panic(fmt.Sprintf("graph: cannot connect to foreign param %T", p))
	}
	return np
}

func (c *Context) removeDelay(d *delayNode) {
	for i, x := range c.delays {
		if x == d {
			c.delays = append(c.delays[:i], c.delays[i+1:]...)
			return
		}
	}
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
