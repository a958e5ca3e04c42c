package spectrum

import (
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-vocalcut/internal/testutil"
)

func TestNewAnalyzerDefaults(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatal(err)
	}
	if a.FFTSize() != 2048 || a.FrequencyBinCount() != 1024 {
		t.Fatalf("fft=%d bins=%d", a.FFTSize(), a.FrequencyBinCount())
	}
	if lo, hi := a.DecibelRange(); lo != -100 || hi != -30 {
		t.Fatalf("range=[%g,%g]", lo, hi)
	}
}

func TestNewAnalyzerOptionErrors(t *testing.T) {
	tests := []AnalyzerOption{
		WithFFTSize(1000),
		WithFFTSize(16),
		WithSmoothing(1),
		WithSmoothing(-0.1),
		WithDecibelRange(-30, -100),
	}
	for i, opt := range tests {
		if _, err := NewAnalyzer(opt); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestAnalyzerPeakAtToneBin(t *testing.T) {
	const (
		sr   = 48000.0
		size = 1024
	)
	a, err := NewAnalyzer(WithFFTSize(size), WithSmoothing(0))
	if err != nil {
		t.Fatal(err)
	}

	// Bin 64 lies exactly at 3000 Hz.
	x := testutil.DeterministicSine(3000, sr, 0.5, size)
	a.Write(x, x)

	db := make([]float64, a.FrequencyBinCount())
	if n := a.FloatFrequencyData(db); n != size/2 {
		t.Fatalf("wrote %d bins", n)
	}

	peak := 0
	for k := range db {
		if db[k] > db[peak] {
			peak = k
		}
	}
	if peak != 64 {
		t.Fatalf("peak bin = %d, want 64", peak)
	}

	// |X|/N for a bin-centered sine of amplitude A under Blackman is A*0.42/2.
	want := 20 * math.Log10(0.5*0.42/2)
	if math.Abs(db[64]-want) > 0.01 {
		t.Fatalf("peak level = %.3f dB, want %.3f dB", db[64], want)
	}
}

func TestAnalyzerSmoothing(t *testing.T) {
	a, _ := NewAnalyzer(WithFFTSize(256), WithSmoothing(0.5))
	x := testutil.DeterministicSine(48000.0/256*8, 48000, 1, 256)
	a.Write(x, nil)

	db := make([]float64, 128)
	a.FloatFrequencyData(db)
	first := db[8]
	a.FloatFrequencyData(db)
	second := db[8]

	// Same frame twice: 0.5*m then 0.75*m.
	if diff := second - first; math.Abs(diff-20*math.Log10(1.5)) > 1e-9 {
		t.Fatalf("smoothing step = %g dB, want %g dB", diff, 20*math.Log10(1.5))
	}
}

func TestAnalyzerByteData(t *testing.T) {
	a, _ := NewAnalyzer(WithFFTSize(256), WithSmoothing(0))

	out := make([]byte, 128)
	for i := range out {
		out[i] = 7
	}
	a.ByteFrequencyData(out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("silent bin %d = %d, want 0", i, v)
		}
	}

	a.Write(testutil.DC(1, 256), nil)
	a.ByteFrequencyData(out)
	if out[0] != 255 {
		t.Fatalf("loud DC bin = %d, want 255", out[0])
	}
}

func TestAnalyzerTimeDomainOrder(t *testing.T) {
	a, _ := NewAnalyzer(WithFFTSize(32))
	a.Write([]float64{1, 2, 3}, []float64{1, 2, 3})
	a.Write([]float64{4}, []float64{6})

	dst := make([]float64, 4)
	a.TimeDomainData(dst)
	want := []float64{1, 2, 3, 5}
	testutil.RequireSliceNearlyEqual(t, dst, want, 0)

	a.Reset()
	a.TimeDomainData(dst)
	testutil.RequireSliceNearlyEqual(t, dst, make([]float64, 4), 0)
}

func TestAnalyzerConcurrentWriteRead(t *testing.T) {
	a, _ := NewAnalyzer(WithFFTSize(512))
	block := testutil.DeterministicNoise(3, 0.5, 128)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 500 {
			a.Write(block, block)
		}
	}()

	db := make([]float64, a.FrequencyBinCount())
	for range 50 {
		a.FloatFrequencyData(db)
	}
	wg.Wait()
}
