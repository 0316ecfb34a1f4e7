package testutil

import (
	"math"
	"testing"
)

// RequireNear fails t if got differs from want by more than eps.
func RequireNear(t *testing.T, what string, got, want, eps float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > eps {
		t.Fatalf("%s: got %v, want %v (eps %v)", what, got, want, eps)
	}
}

// RequireFinite fails t if any sample is NaN or Inf.
func RequireFinite(t *testing.T, data []float32) {
	t.Helper()
	for i, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("index %d: non-finite sample %v", i, v)
		}
	}
}

// MaxStep returns the largest absolute difference between neighbouring
// samples. Large steps in a gain trajectory are audible as clicks.
func MaxStep(data []float64) float64 {
	step := 0.0
	for i := 1; i < len(data); i++ {
		step = math.Max(step, math.Abs(data[i]-data[i-1]))
	}
	return step
}
