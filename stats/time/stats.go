// Package time accumulates time-domain level statistics over a stream of
// blocks: DC offset, RMS, peak and crest factor.
package time

import (
	"math"

	"github.com/cwbudde/algo-vocalcut/dsp/core"
)

// Stats holds the level of one channel.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64 // mean
	RMS            float64
	RMS_dB         float64
	Peak           float64 // max |x|
	PeakPos        int
	Peak_dB        float64
	CrestFactor_dB float64
	Clipped        int // samples with |x| >= 1
}

// ampTodB converts an amplitude to dBFS, returning -Inf for zero.
func ampTodB(v float64) float64 { return core.LinearToDB(math.Abs(v)) }

// Calculate returns the statistics of a complete signal.
func Calculate(signal []float64) Stats {
	var s Stream
	s.Update(signal)
	return s.Result()
}

// RMS returns the root mean square of signal, 0 when empty.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	var sum float64
	for _, x := range signal {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(signal)))
}

// Stream accumulates statistics block by block. The zero value is ready to
// use.
type Stream struct {
	n       int
	sum     float64
	sumSq   float64
	peak    float64
	peakPos int
	clipped int
}

// Update adds samples to the running statistics.
func (s *Stream) Update(samples []float64) {
	for _, x := range samples {
		a := math.Abs(x)
		if a > s.peak {
			s.peak = a
			s.peakPos = s.n
		}
		if a >= 1 {
			s.clipped++
		}
		s.sum += x
		s.sumSq += x * x
		s.n++
	}
}

// Result returns the statistics so far. dB fields are -Inf when nothing
// non-zero has been seen.
func (s *Stream) Result() Stats {
	if s.n == 0 {
		return Stats{
			RMS_dB:  math.Inf(-1),
			Peak_dB: math.Inf(-1),
		}
	}

	rms := math.Sqrt(s.sumSq / float64(s.n))
	var crest float64
	if rms > 0 {
		crest = core.LinearToDB(s.peak / rms)
	}

	return Stats{
		Length:         s.n,
		DC:             s.sum / float64(s.n),
		RMS:            rms,
		RMS_dB:         ampTodB(rms),
		Peak:           s.peak,
		PeakPos:        s.peakPos,
		Peak_dB:        ampTodB(s.peak),
		CrestFactor_dB: crest,
		Clipped:        s.clipped,
	}
}

// Reset clears the accumulated data.
func (s *Stream) Reset() { *s = Stream{} }
