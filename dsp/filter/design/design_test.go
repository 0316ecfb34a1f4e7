package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-grove/dsp/filter/biquad"
)

const sr = 48000.0

func near(t *testing.T, what string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v ± %v", what, got, want, tol)
	}
}

func TestLowpass(t *testing.T) {
	c := Lowpass(1000, defaultQ, sr)
	near(t, "passband", c.Magnitude(50, sr), 1, 0.01)
	near(t, "cutoff", c.MagnitudeDB(1000, sr), -3.01, 0.05)
	if g := c.Magnitude(10000, sr); g > 0.02 {
		t.Fatalf("stopband gain at 10 kHz = %v, want <= 0.02", g)
	}
}

func TestHighpass(t *testing.T) {
	c := Highpass(200, defaultQ, sr)
	near(t, "passband", c.Magnitude(10000, sr), 1, 0.01)
	if g := c.Magnitude(20, sr); g > 0.02 {
		t.Fatalf("stopband gain at 20 Hz = %v, want <= 0.02", g)
	}
}

// TestBandpass_PeakForms verifies the skirt-gain form peaks at q and the
// peak form at unity.
func TestBandpass_PeakForms(t *testing.T) {
	for _, q := range []float64{0.5, 1.2, 4} {
		skirt := Bandpass(500, q, sr)
		near(t, "skirt peak", skirt.Magnitude(500, sr), q, 1e-9)

		peak := BandpassPeak(500, q, sr)
		near(t, "0 dB peak", peak.Magnitude(500, sr), 1, 1e-9)
		if g := peak.Magnitude(50, sr); g > 0.3 {
			t.Fatalf("Q %v: gain at 50 Hz = %v, want <= 0.3", q, g)
		}
	}
}

func TestDesign_InvalidInputs(t *testing.T) {
	zero := biquad.Coefficients{}
	for _, c := range []biquad.Coefficients{
		Lowpass(0, 1, sr),
		Highpass(sr, 1, sr),
		Bandpass(math.NaN(), 1, sr),
		BandpassPeak(500, 1, 0),
	} {
		if c != zero {
			t.Fatalf("invalid design returned %+v, want zero coefficients", c)
		}
	}
	c := Lowpass(1000, -1, sr)
	near(t, "default Q at cutoff", c.MagnitudeDB(1000, sr), -3.01, 0.05)
}
