package graph

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-grove/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	minAnalyserSize = 32
	maxAnalyserSize = 32768
	analyserFloorDB = -130.0
)

// analyserNode passes audio through unchanged and keeps the last fftSize
// samples in a ring for spectrum and level queries.
type analyserNode struct {
	node

	plan   *algofft.Plan[complex128]
	window []float64
	gain   float64

	ring   []float64
	write  int
	filled int

	in     []complex128
	bins   []complex128
	re, im []float64
}

func newAnalyserNode(fftSize int, sampleRate float64) (*analyserNode, error) {
	if fftSize < minAnalyserSize || fftSize > maxAnalyserSize || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("analyser fft size must be a power of two in [%d, %d]: %d",
			minAnalyserSize, maxAnalyserSize, fftSize)
	}
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyser fft plan: %w", err)
	}

	win := window.Generate(window.TypeBlackmanHarris4Term, fftSize, window.WithPeriodic())
	gain, err := window.CoherentGain(win)
	if err != nil {
		return nil, fmt.Errorf("analyser window: %w", err)
	}

	half := fftSize/2 + 1
	return &analyserNode{
		plan:   plan,
		window: win,
		gain:   gain,
		ring:   make([]float64, fftSize),
		in:     make([]complex128, fftSize),
		bins:   make([]complex128, fftSize),
		re:     make([]float64, half),
		im:     make([]float64, half),
	}, nil
}

func (a *analyserNode) process(q uint64) {
	a.mixInputs(q, a.out)
	for _, x := range a.out {
		a.ring[a.write] = x
		a.write++
		if a.write >= len(a.ring) {
			a.write = 0
		}
	}
	a.filled = min(a.filled+len(a.out), len(a.ring))
}

// Spectrum writes the windowed magnitude spectrum in dBFS into dst.
// Before the window has filled every bin reads the floor value.
func (a *analyserNode) Spectrum(dst []float64) []float64 {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()

	n := len(a.ring)
	half := n/2 + 1
	if cap(dst) < half {
		dst = make([]float64, half)
	}
	dst = dst[:half]

	if a.filled < n {
		for i := range dst {
			dst[i] = analyserFloorDB
		}
		return dst
	}

	read := a.write
	for i := 0; i < n; i++ {
		a.in[i] = complex(a.ring[read]*a.window[i], 0)
		read++
		if read >= n {
			read = 0
		}
	}
	if err := a.plan.Forward(a.bins, a.in); err != nil {
		for i := range dst {
			dst[i] = analyserFloorDB
		}
		return dst
	}

	for k := 0; k < half; k++ {
		a.re[k] = real(a.bins[k])
		a.im[k] = imag(a.bins[k])
	}
	vecmath.Magnitude(dst, a.re, a.im)

	norm := float64(n) * math.Max(a.gain, 1e-12)
	for k := range dst {
		mag := dst[k] / norm
		if k > 0 && k < half-1 {
			mag *= 2
		}
		dst[k] = math.Max(analyserFloorDB, 20*math.Log10(math.Max(1e-12, mag)))
	}
	return dst
}

// Level returns the RMS level of the analysis window.
func (a *analyserNode) Level() float64 {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()
	if a.filled == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range a.ring {
		sum += x * x
	}
	return math.Sqrt(sum / float64(a.filled))
}
