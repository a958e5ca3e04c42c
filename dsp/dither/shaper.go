package dither

import (
	"fmt"
	"strings"
)

// Shaping selects an error-feedback filter that moves quantization noise
// towards frequencies where hearing is less sensitive.
type Shaping int

const (
	// Flat leaves the noise spectrum white.
	Flat Shaping = iota
	// FirstOrder is simple error feedback.
	FirstOrder
	// FWeighted3 is a 3rd-order F-weighted curve.
	FWeighted3
	// FWeighted9 is a 9th-order F-weighted curve.
	FWeighted9
	// Sharp15k pushes the noise above 15 kHz with coefficients chosen for
	// the sample rate.
	Sharp15k

	shapingCount
)

var shapingNames = [shapingCount]string{"flat", "efb", "3fc", "9fc", "sharp"}

func (s Shaping) String() string {
	if s >= 0 && s < shapingCount {
		return shapingNames[s]
	}
	return fmt.Sprintf("Shaping(%d)", s)
}

// Valid reports whether s is a known curve.
func (s Shaping) Valid() bool { return s >= 0 && s < shapingCount }

// ParseShaping accepts the names printed by String.
func ParseShaping(name string) (Shaping, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range shapingNames {
		if name == n {
			return Shaping(i), nil
		}
	}
	return Flat, fmt.Errorf("dither: unknown noise shaping %q", name)
}

// Coefficients returns the feedback filter for s at sampleRate. Flat
// returns nil.
func (s Shaping) Coefficients(sampleRate float64) []float64 {
	var src []float64
	switch s {
	case FirstOrder:
		src = []float64{1}
	case FWeighted3:
		src = []float64{1.623, -0.982, 0.109}
	case FWeighted9:
		src = []float64{
			2.412, -3.370, 3.937, -4.174, 3.353,
			-2.205, 1.281, -0.569, 0.0847,
		}
	case Sharp15k:
		src = sharp15k(sampleRate)
	}
	return append([]float64(nil), src...)
}

func sharp15k(sampleRate float64) []float64 {
	switch {
	case sampleRate < 41000:
		return []float64{
			0.919387305668676, -1.04843437730544,
			1.04843048925451, -0.868972788711174,
			0.60853001063849, -0.3449209471469,
			0.147484332561636, -0.0370652871194614,
		}
	case sampleRate < 46000:
		return []float64{
			1.34860378444905, -1.80123976889643,
			2.04804746376671, -1.93234174830592,
			1.59264693241396, -1.04979311664936,
			0.599422666305319, -0.213194268754789,
		}
	case sampleRate < 55000:
		return []float64{
			1.4247141061364, -1.5437678148854,
			1.0967969510044, -0.32075758107035,
			-0.32074811729292, 0.525494723539046,
			-0.38058984415197, 0.14824460513256,
		}
	case sampleRate < 75100:
		return []float64{
			2.49725554745212, -3.23587161287721,
			2.31844946822861, -0.54326047010533,
			-0.54325301319653, 0.543289788745007,
			-0.142132484905, -0.0202120370327948,
		}
	default:
		return []float64{
			3.14014081409305, -3.76888037179035,
			1.26107138314221, 1.26088059917107,
			-0.807698715053922, -0.80767075968406,
			1.0101984930848, -0.322351688402064,
		}
	}
}

// errorFeedback subtracts a weighted history of past quantization errors
// from each new sample.
type errorFeedback struct {
	coeffs  []float64
	history []float64 // ring, newest at pos-1
	pos     int
}

func newErrorFeedback(coeffs []float64) *errorFeedback {
	return &errorFeedback{coeffs: coeffs, history: make([]float64, len(coeffs))}
}

func (f *errorFeedback) shape(x float64) float64 {
	n := len(f.coeffs)
	for i, c := range f.coeffs {
		x -= c * f.history[(f.pos-1-i+2*n)%n]
	}
	return x
}

func (f *errorFeedback) record(err float64) {
	if len(f.history) == 0 {
		return
	}
	f.history[f.pos] = err
	f.pos = (f.pos + 1) % len(f.history)
}

func (f *errorFeedback) reset() {
	clear(f.history)
	f.pos = 0
}
