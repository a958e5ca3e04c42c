package webdemo

import "math"

// floorDB is reported for bins without energy.
const floorDB = -130.0

// SpectrumCurveDB samples the smoothed output spectrum at freqs, linearly
// interpolating between FFT bins.
func (s *Session) SpectrumCurveDB(freqs []float64) []float64 {
	out := make([]float64, len(freqs))
	n := s.eng.FloatFrequencyData(s.bins)
	if n < 2 {
		for i := range out {
			out[i] = floorDB
		}
		return out
	}

	sr := s.eng.SampleRate()
	binHz := sr / float64(2*n)
	last := n - 1

	for i, f := range freqs {
		bin := clamp(f, 0, sr/2) / binHz
		var v float64
		switch {
		case bin <= 0:
			v = s.bins[0]
		case bin >= float64(last):
			v = s.bins[last]
		default:
			base := int(bin)
			frac := bin - float64(base)
			d0 := math.Max(s.bins[base], floorDB)
			d1 := math.Max(s.bins[base+1], floorDB)
			v = d0 + frac*(d1-d0)
		}
		out[i] = math.Max(v, floorDB)
	}
	return out
}

// ResponseCurveDB returns the tone-control magnitude in dB at freqs.
func (s *Session) ResponseCurveDB(freqs []float64) []float64 {
	out := make([]float64, len(freqs))
	nyq := s.eng.SampleRate() * 0.49
	for i, f := range freqs {
		out[i] = s.eng.EQResponseDB(clamp(f, 1, nyq))
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
