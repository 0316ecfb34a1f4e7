package testutil

import "math"

// Renderer is anything that produces mono float32 audio.
type Renderer interface {
	Render(dst []float32)
}

// Render pulls frames samples from r.
func Render(r Renderer, frames int) []float32 {
	out := make([]float32, frames)
	r.Render(out)
	return out
}

// RMS returns the root mean square of data.
func RMS(data []float32) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(data)))
}

// Peak returns the largest absolute sample.
func Peak(data []float32) float64 {
	peak := 0.0
	for _, v := range data {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	return peak
}
