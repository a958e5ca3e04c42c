package biquad

import "github.com/cwbudde/algo-vocalcut/dsp/core"

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Passthrough is the identity section.
var Passthrough = Coefficients{B0: 1}

// Section is a single biquad filter with coefficients and internal state.
// It implements Direct Form II Transposed processing.
type Section struct {
	Coefficients

	d0, d1 float64
}

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
//
// The loop is unrolled by two; results are identical to calling
// ProcessSample for each element.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	i := 0

	n := len(buf)
	for ; i+1 < n; i += 2 {
		x0 := buf[i]
		y0 := b0*x0 + d0
		d0n := b1*x0 - a1*y0 + d1
		d1n := b2*x0 - a2*y0

		x1 := buf[i+1]
		y1 := b0*x1 + d0n
		d0 = b1*x1 - a1*y1 + d1n
		d1 = b2*x1 - a2*y1

		buf[i] = y0
		buf[i+1] = y1
	}

	if i < n {
		x := buf[i]
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	// A silent input lets the state decay into the denormal range.
	s.d0, s.d1 = core.FlushDenormals(d0), core.FlushDenormals(d1)
}

// ProcessBlockTo filters src into dst. dst must be at least len(src) long.
// Zero-alloc.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		y := s.B0*x + s.d0
		s.d0 = s.B1*x - s.A1*y + s.d1
		s.d1 = s.B2*x - s.A2*y
		dst[i] = y
	}
	s.d0, s.d1 = core.FlushDenormals(s.d0), core.FlushDenormals(s.d1)
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// State returns the current delay-line state [d0, d1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state [2]float64) {
	s.d0 = state[0]
	s.d1 = state[1]
}

// Stereo is a pair of sections sharing one coefficient set, one per channel.
// Updating coefficients keeps both delay lines so a parameter change does
// not click.
type Stereo struct {
	L, R Section
}

// NewStereo returns a stereo section pair with zero state.
func NewStereo(c Coefficients) *Stereo {
	return &Stereo{L: Section{Coefficients: c}, R: Section{Coefficients: c}}
}

// SetCoefficients replaces the coefficients of both channels, keeping state.
func (s *Stereo) SetCoefficients(c Coefficients) {
	s.L.Coefficients = c
	s.R.Coefficients = c
}

// Coefficients returns the shared coefficient set.
func (s *Stereo) Coefficients() Coefficients {
	return s.L.Coefficients
}

// ProcessBlock filters left and right in-place.
func (s *Stereo) ProcessBlock(left, right []float64) {
	s.L.ProcessBlock(left)
	s.R.ProcessBlock(right)
}

// ProcessBlockTo filters srcL/srcR into dstL/dstR.
func (s *Stereo) ProcessBlockTo(dstL, dstR, srcL, srcR []float64) {
	s.L.ProcessBlockTo(dstL, srcL)
	s.R.ProcessBlockTo(dstR, srcR)
}

// Reset clears both delay lines.
func (s *Stereo) Reset() {
	s.L.Reset()
	s.R.Reset()
}
