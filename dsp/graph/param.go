package graph

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

type eventKind int

const (
	eventSet eventKind = iota
	eventTarget
	eventLinearRamp
	eventExpRamp
)

// automation is a pending parameter event. Ramps activate at time and
// reach value at end.
type automation struct {
	kind         eventKind
	time         float64
	end          float64
	value        float64
	timeConstant float64
}

type paramMode int

const (
	modeHold paramMode = iota
	modeTarget
	modeRamp
)

// param evaluates automation per sample. Events are consumed when they
// activate, so repeated re-targeting does not accumulate state.
type param struct {
	ctx    *Context
	value  float64
	events []automation
	inputs []*node
	buf    []float64

	mode   paramMode
	target float64
	alpha  float64

	rampExp    bool
	rampStartT float64
	rampStartV float64
	rampEndT   float64
	rampEndV   float64
}

// SetValueAtTime jumps to value at t.
func (p *param) SetValueAtTime(value, t float64) {
	p.schedule(automation{kind: eventSet, time: t, value: value})
}

// SetTargetAtTime approaches target exponentially from start with the
// given time constant in seconds. A zero time constant jumps.
func (p *param) SetTargetAtTime(target, start, timeConstant float64) {
	p.schedule(automation{kind: eventTarget, time: start, value: target, timeConstant: timeConstant})
}

// LinearRampToValueAtTime ramps linearly from the current value to value,
// arriving at t.
func (p *param) LinearRampToValueAtTime(value, t float64) {
	p.scheduleRamp(eventLinearRamp, value, t)
}

// ExponentialRampToValueAtTime ramps exponentially from the current value
// to value, arriving at t. It falls back to a linear ramp when either end
// is zero or the signs differ.
func (p *param) ExponentialRampToValueAtTime(value, t float64) {
	p.scheduleRamp(eventExpRamp, value, t)
}

// CancelScheduledValues drops pending events at or after t.
func (p *param) CancelScheduledValues(t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	keep := p.events[:0]
	for _, ev := range p.events {
		if ev.time < t {
			keep = append(keep, ev)
		}
	}
	p.events = keep
}

// Value returns the automated value after the last rendered sample,
// excluding modulation inputs.
func (p *param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.value
}

func (p *param) scheduleRamp(kind eventKind, value, t float64) {
	p.ctx.mu.Lock()
	now := p.ctx.now()
	p.ctx.mu.Unlock()
	p.schedule(automation{kind: kind, time: now, end: t, value: value})
}

func (p *param) schedule(ev automation) {
	if math.IsNaN(ev.value) || math.IsInf(ev.value, 0) || math.IsNaN(ev.time) {
		return
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	i := len(p.events)
	for i > 0 && p.events[i-1].time > ev.time {
		i--
	}
	p.events = append(p.events, automation{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

// values renders the parameter for quantum q, including modulation.
func (p *param) values(q uint64) []float64 {
	c := p.ctx
	start := c.frames
	for i := range p.buf {
		t := float64(start+int64(i)) / c.sampleRate
		for len(p.events) > 0 && p.events[0].time <= t {
			p.activate(p.events[0], t)
			p.events = p.events[1:]
		}
		p.step(t)
		p.buf[i] = p.value
	}
	for _, in := range p.inputs {
		vecmath.AddBlockInPlace(p.buf, in.pull(q))
	}
	return p.buf
}

func (p *param) activate(ev automation, t float64) {
	switch ev.kind {
	case eventSet:
		p.value = ev.value
		p.mode = modeHold
	case eventTarget:
		if ev.timeConstant <= 0 {
			p.value = ev.value
			p.mode = modeHold
			return
		}
		p.mode = modeTarget
		p.target = ev.value
		p.alpha = 1 - math.Exp(-1/(ev.timeConstant*p.ctx.sampleRate))
	case eventLinearRamp, eventExpRamp:
		if ev.end <= t {
			p.value = ev.value
			p.mode = modeHold
			return
		}
		p.mode = modeRamp
		p.rampExp = ev.kind == eventExpRamp && p.value*ev.value > 0
		p.rampStartT = t
		p.rampStartV = p.value
		p.rampEndT = ev.end
		p.rampEndV = ev.value
	}
}

func (p *param) step(t float64) {
	switch p.mode {
	case modeTarget:
		p.value += (p.target - p.value) * p.alpha
	case modeRamp:
		if t >= p.rampEndT {
			p.value = p.rampEndV
			p.mode = modeHold
			return
		}
		frac := (t - p.rampStartT) / (p.rampEndT - p.rampStartT)
		if p.rampExp {
			p.value = p.rampStartV * math.Pow(p.rampEndV/p.rampStartV, frac)
		} else {
			p.value = p.rampStartV + (p.rampEndV-p.rampStartV)*frac
		}
	}
}
