package eq

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vocalcut/dsp/filter/biquad"
	"github.com/cwbudde/algo-vocalcut/internal/testutil"
)

func TestClampGain(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{20, 6}, {-50, -6}, {100, 6}, {3.5, 3.5}, {math.NaN(), 0}, {math.Inf(-1), -6},
	}
	for _, tt := range tests {
		if got := ClampGain(tt.in); got != tt.want {
			t.Fatalf("ClampGain(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetClampsEveryBand(t *testing.T) {
	tc, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}

	got := tc.Set(Settings{BassDB: 20, MidDB: -50, TrebleDB: 100})
	want := Settings{BassDB: 6, MidDB: -6, TrebleDB: 6}
	if got != want || tc.Settings() != want {
		t.Fatalf("Set = %+v, Settings = %+v, want %+v", got, tc.Settings(), want)
	}
}

func TestNewValidation(t *testing.T) {
	for _, sr := range []float64{0, math.NaN(), 8000} {
		if _, err := New(sr); err == nil {
			t.Fatalf("expected error for %v", sr)
		}
	}
}

func TestDesignFlatIsPassthrough(t *testing.T) {
	for i, c := range Design(Settings{}, 44100) {
		if c != biquad.Passthrough {
			t.Fatalf("band %d: %+v, want passthrough", i, c)
		}
	}
}

func TestFlatToneControlIsBitExact(t *testing.T) {
	tc, _ := New(48000)
	tc.Set(Settings{BassDB: 4})
	tc.Set(Settings{})

	l := testutil.DeterministicNoise(11, 0.9, 300)
	r := testutil.DeterministicNoise(12, 0.9, 300)
	gotL := append([]float64(nil), l...)
	gotR := append([]float64(nil), r...)

	tc.ProcessBlock(gotL, gotR)
	testutil.RequireSliceNearlyEqual(t, gotL, l, 0)
	testutil.RequireSliceNearlyEqual(t, gotR, r, 0)
}

func TestMagnitudeAtBandCenters(t *testing.T) {
	const sr = 48000.0
	s := Settings{BassDB: 6, MidDB: -6, TrebleDB: 6}

	tests := []struct {
		f, want, tol float64
	}{
		{20, 6, 0.5},
		{1000, -6, 0.6},
		{20000, 6, 0.5},
	}
	for _, tt := range tests {
		if got := MagnitudeDB(s, tt.f, sr); math.Abs(got-tt.want) > tt.tol {
			t.Fatalf("f=%g: %.2f dB, want %.2f±%.1f", tt.f, got, tt.want, tt.tol)
		}
	}

	h := Response(s, 1000, sr)
	if db := 20 * math.Log10(math.Hypot(real(h), imag(h))); math.Abs(db-MagnitudeDB(s, 1000, sr)) > 1e-9 {
		t.Fatalf("Response and MagnitudeDB disagree: %g vs %g", db, MagnitudeDB(s, 1000, sr))
	}
}

func TestSettingsApplyAtNextBlock(t *testing.T) {
	tc, _ := New(48000)
	x := testutil.DeterministicSine(100, 48000, 0.5, 4800)

	l := append([]float64(nil), x...)
	r := append([]float64(nil), x...)
	tc.ProcessBlock(l[:2400], r[:2400])
	tc.Set(Settings{BassDB: 6})
	tc.ProcessBlock(l[2400:], r[2400:])

	testutil.RequireSliceNearlyEqual(t, l[:2400], x[:2400], 0)

	peakIn, peakOut := 0.0, 0.0
	for i := 3600; i < 4800; i++ {
		peakIn = math.Max(peakIn, math.Abs(x[i]))
		peakOut = math.Max(peakOut, math.Abs(l[i]))
	}
	if ratio := peakOut / peakIn; ratio < 1.6 || ratio > 2.1 {
		t.Fatalf("bass boost ratio = %g, want about 2 (6 dB minus shelf skirt)", ratio)
	}
}
