package window

import (
	"math"
	"testing"
)

func TestGenerateEndpoints(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeBlackman} {
		w := Generate(typ, 65)
		if math.Abs(w[0]) > 1e-12 || math.Abs(w[64]) > 1e-12 {
			t.Fatalf("type %d: endpoints %g %g, want 0", typ, w[0], w[64])
		}
		if math.Abs(w[32]-1) > 1e-12 {
			t.Fatalf("type %d: center %g, want 1", typ, w[32])
		}
	}
}

func TestGenerateEmptyAndRectangular(t *testing.T) {
	if w := Generate(TypeBlackman, 0); w != nil {
		t.Fatalf("zero length: got %v", w)
	}
	for i, v := range Generate(TypeRectangular, 8) {
		if v != 1 {
			t.Fatalf("rectangular[%d]=%g", i, v)
		}
	}
}

func TestPeriodicBlackman(t *testing.T) {
	w := Generate(TypeBlackman, 8, WithPeriodic())
	if math.Abs(w[0]) > 1e-12 || math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("periodic blackman: w[0]=%g w[4]=%g", w[0], w[4])
	}
	// Symmetric about the center in the periodic sense.
	for i := 1; i < 4; i++ {
		if math.Abs(w[i]-w[8-i]) > 1e-12 {
			t.Fatalf("w[%d]=%g w[%d]=%g", i, w[i], 8-i, w[8-i])
		}
	}
}

func TestPeriodicBlackmanMean(t *testing.T) {
	w := Generate(TypeBlackman, 2048, WithPeriodic())
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	if got := sum / float64(len(w)); math.Abs(got-0.42) > 1e-9 {
		t.Fatalf("mean %g, want 0.42", got)
	}
}

func TestApplyCoefficientsInPlace(t *testing.T) {
	if err := ApplyCoefficientsInPlace(make([]float64, 3), make([]float64, 2)); err == nil {
		t.Fatal("expected mismatch error")
	}

	buf := []float64{2, 2, 2, 2, 2}
	w := Generate(TypeHann, 5)
	if err := ApplyCoefficientsInPlace(buf, w); err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		if math.Abs(buf[i]-2*w[i]) > 1e-15 {
			t.Fatalf("index %d: got %g want %g", i, buf[i], 2*w[i])
		}
	}
}
