package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vocalcut/dsp/filter/biquad"
)

func mag(c biquad.Coefficients, f, sr float64) float64 {
	return math.Sqrt(c.MagnitudeSquared(f, sr))
}

func TestPassDesigners_ResponseShape(t *testing.T) {
	const sr = 48000.0

	lp := Lowpass(1000, 0.7, sr)
	if !(mag(lp, 100, sr) > 0.99 && mag(lp, 10000, sr) < 0.05) {
		t.Fatalf("lowpass shape: 100Hz=%g 10kHz=%g", mag(lp, 100, sr), mag(lp, 10000, sr))
	}

	hp := Highpass(1000, 0.7, sr)
	if !(mag(hp, 10000, sr) > 0.99 && mag(hp, 100, sr) < 0.05) {
		t.Fatalf("highpass shape: 100Hz=%g 10kHz=%g", mag(hp, 100, sr), mag(hp, 10000, sr))
	}

	// Unity DC gain for the lowpass, zero at Nyquist.
	if dc := lp.B0 + lp.B1 + lp.B2; math.Abs(dc/(1+lp.A1+lp.A2)-1) > 1e-12 {
		t.Fatalf("lowpass DC gain=%g", dc/(1+lp.A1+lp.A2))
	}
}

func TestPassDesigners_CutoffMagnitudeFollowsQ(t *testing.T) {
	// At the cutoff an RBJ second-order LP/HP has |H| = Q.
	for _, q := range []float64{0.5, 0.7, 1 / math.Sqrt2, 2} {
		for _, c := range []biquad.Coefficients{Lowpass(400, q, 48000), Highpass(400, q, 48000)} {
			if got := mag(c, 400, 48000); math.Abs(got-q) > 1e-9 {
				t.Fatalf("q=%g: |H(fc)|=%g", q, got)
			}
		}
	}
}

func TestEQDesigners_Gain(t *testing.T) {
	const sr = 48000.0

	tests := []struct {
		name string
		c    biquad.Coefficients
		f    float64
		want float64
	}{
		{"peak center", Peak(1000, 6, 1, sr), 1000, 6},
		{"peak cut", Peak(1000, -6, 1, sr), 1000, -6},
		{"low shelf DC", LowShelf(200, 6, ShelfQ, sr), 5, 6},
		{"low shelf midpoint", LowShelf(200, 6, ShelfQ, sr), 200, 3},
		{"high shelf top", HighShelf(5000, -6, ShelfQ, sr), 23000, -6},
		{"high shelf midpoint", HighShelf(5000, -6, ShelfQ, sr), 5000, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.MagnitudeDB(tt.f, sr); math.Abs(got-tt.want) > 0.1 {
				t.Fatalf("got=%.3f dB want=%.3f dB", got, tt.want)
			}
		})
	}
}

func TestEQDesigners_ZeroGainIsFlat(t *testing.T) {
	const sr = 44100.0
	for _, c := range []biquad.Coefficients{
		Peak(1000, 0, 1, sr),
		LowShelf(200, 0, ShelfQ, sr),
		HighShelf(5000, 0, ShelfQ, sr),
	} {
		for _, f := range []float64{20, 200, 1000, 5000, 18000} {
			if db := c.MagnitudeDB(f, sr); math.Abs(db) > 1e-9 {
				t.Fatalf("%+v at %g Hz: %g dB", c, f, db)
			}
		}
	}
}

func TestInvalidInputs(t *testing.T) {
	zero := biquad.Coefficients{}
	for name, c := range map[string]biquad.Coefficients{
		"zero freq":     Lowpass(0, 0.7, 48000),
		"above nyquist": Highpass(30000, 0.7, 48000),
		"nan rate":      Peak(1000, 3, 1, math.NaN()),
		"negative rate": LowShelf(200, 3, ShelfQ, -1),
		"infinite freq": HighShelf(math.Inf(1), 3, ShelfQ, 48000),
	} {
		if c != zero {
			t.Fatalf("%s: expected zero coefficients, got %+v", name, c)
		}
	}

	// Invalid Q falls back to ShelfQ.
	if Lowpass(1000, -1, 48000) != Lowpass(1000, ShelfQ, 48000) {
		t.Fatal("invalid q did not fall back to default")
	}
}
