package graph

import "math"

// schedule tracks the start and stop frames of a source.
type schedule struct {
	started    bool
	stopped    bool
	startFrame int64
	stopFrame  int64
}

func (s *schedule) start(c *Context, when float64) error {
	if s.started {
		return ErrInvalidState
	}
	s.started = true
	s.startFrame = c.frameAt(when)
	s.stopFrame = math.MaxInt64
	return nil
}

func (s *schedule) stop(c *Context, when float64) error {
	if !s.started || s.stopped {
		return ErrInvalidState
	}
	s.stopped = true
	s.stopFrame = max(c.frameAt(when), s.startFrame)
	return nil
}

func (s *schedule) active(frame int64) bool {
	return s.started && frame >= s.startFrame && frame < s.stopFrame
}

func (s *schedule) playing(c *Context) bool {
	return s.started && c.frames < s.stopFrame
}

type oscillatorNode struct {
	node
	schedule

	waveform  Waveform
	frequency *param
	phase     float64
}

// Frequency returns the frequency parameter in Hz.
func (o *oscillatorNode) Frequency() Param { return o.frequency }

// Start begins playback at when.
func (o *oscillatorNode) Start(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.start(o.ctx, when)
}

// Stop ends playback at when. Stopping twice returns ErrInvalidState.
func (o *oscillatorNode) Stop(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.stop(o.ctx, when)
}

// Playing reports whether the oscillator was started and has not reached
// its stop time.
func (o *oscillatorNode) Playing() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.playing(o.ctx)
}

func (o *oscillatorNode) process(q uint64) {
	c := o.ctx
	freq := o.frequency.values(q)
	step := 2 * math.Pi / c.sampleRate
	for i := range o.out {
		if !o.active(c.frames + int64(i)) {
			o.out[i] = 0
			continue
		}
		o.out[i] = waveSample(o.waveform, o.phase)
		o.phase += step * freq[i]
		if o.phase > math.Pi {
			o.phase -= 2 * math.Pi
		} else if o.phase < -math.Pi {
			o.phase += 2 * math.Pi
		}
	}
}

// waveSample evaluates w at phase in [-pi, pi].
func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case Triangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case Sawtooth:
		return phase / math.Pi
	case Square:
		if phase >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}

type bufferSourceNode struct {
	node
	schedule

	buf  []float64
	loop bool
	pos  int
}

// Start begins playback at when.
func (s *bufferSourceNode) Start(when float64) error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.start(s.ctx, when)
}

// Stop ends playback at when. Stopping twice returns ErrInvalidState.
func (s *bufferSourceNode) Stop(when float64) error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.stop(s.ctx, when)
}

// Playing reports whether the source is still producing samples.
func (s *bufferSourceNode) Playing() bool {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if !s.loop && s.pos >= len(s.buf) {
		return false
	}
	return s.playing(s.ctx)
}

func (s *bufferSourceNode) process(_ uint64) {
	c := s.ctx
	for i := range s.out {
		if len(s.buf) == 0 || !s.active(c.frames+int64(i)) {
			s.out[i] = 0
			continue
		}
		if s.pos >= len(s.buf) {
			if !s.loop {
				s.out[i] = 0
				continue
			}
			s.pos = 0
		}
		s.out[i] = s.buf[s.pos]
		s.pos++
	}
}
