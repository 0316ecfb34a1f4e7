package graph

import "errors"

var (
	// ErrInvalidState is returned when a source is started twice, stopped
	// before it was started, or stopped again after a stop was scheduled.
	ErrInvalidState = errors.New("graph: invalid node state")
	// ErrClosed is returned by state transitions on a closed graph.
	ErrClosed = errors.New("graph: closed")
)

// Waveform selects the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Sawtooth
	Square
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	default:
		return "sine"
	}
}

// FilterKind selects the biquad response.
type FilterKind int

const (
	Lowpass FilterKind = iota
	Highpass
	Bandpass
)

// String returns the filter kind name.
func (k FilterKind) String() string {
	switch k {
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return "lowpass"
	}
}

// State is the run state of a graph.
type State int

const (
	Running State = iota
	Suspended
	Closed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Closed:
		return "closed"
	default:
		return "running"
	}
}

// Param is an automatable node parameter. Times are in seconds on the
// graph clock. Nodes connected with ConnectParam add their output to the
// automated value sample by sample.
type Param interface {
	SetValueAtTime(value, t float64)
	SetTargetAtTime(target, start, timeConstant float64)
	LinearRampToValueAtTime(value, t float64)
	ExponentialRampToValueAtTime(value, t float64)
	CancelScheduledValues(t float64)
	Value() float64
}

// Node is a vertex of the signal graph.
//
// Connect and ConnectParam panic when dst belongs to a different graph
// implementation or context.
type Node interface {
	Connect(dst Node)
	ConnectParam(p Param)
	// Disconnect removes every outgoing connection and releases the node.
	Disconnect()
}

// Source is a node that produces sound between a start and a stop time.
type Source interface {
	Node
	Start(when float64) error
	Stop(when float64) error
	Playing() bool
}

// Oscillator is a periodic Source.
type Oscillator interface {
	Source
	Frequency() Param
}

// Filter is a biquad filter node.
type Filter interface {
	Node
	Frequency() Param
	Q() Param
}

// Gain scales its summed inputs.
type Gain interface {
	Node
	Gain() Param
}

// Delay delays its summed inputs. A Delay is the only node allowed inside
// a feedback cycle.
type Delay interface {
	Node
	DelayTime() Param
}

// Analyser passes its input through and keeps a window of recent samples
// for metering.
type Analyser interface {
	Node
	// Spectrum writes the magnitude spectrum in dBFS (fftSize/2+1 bins)
	// into dst, growing it if needed, and returns it.
	Spectrum(dst []float64) []float64
	// Level returns the RMS level of the analysis window.
	Level() float64
}

// Graph is the capability set a platform audio backend provides.
type Graph interface {
	Now() float64
	SampleRate() float64
	Destination() Node
	NewOscillator(w Waveform) Oscillator
	NewBufferSource(buf []float64, loop bool) Source
	NewFilter(kind FilterKind) Filter
	NewGain() Gain
	NewDelay(maxSeconds float64) Delay
	NewAnalyser(fftSize int) (Analyser, error)
	Suspend() error
	Resume() error
	State() State
}
