package buffer

import "github.com/cwbudde/algo-vocalcut/dsp/core"

// Stereo is a block of planar stereo samples. L and R always have the same
// length.
type Stereo struct {
	L, R []float64
}

// NewStereo returns a zero-filled stereo block of the given length.
func NewStereo(frames int) Stereo {
	if frames < 0 {
		frames = 0
	}
	return Stereo{L: make([]float64, frames), R: make([]float64, frames)}
}

// Len returns the number of frames.
func (s Stereo) Len() int {
	return min(len(s.L), len(s.R))
}

// Resize sets the length to n, reusing existing capacity when possible.
// The contents after a resize are unspecified; call Zero if needed.
func (s *Stereo) Resize(n int) {
	s.L = core.EnsureLen(s.L, n)
	s.R = core.EnsureLen(s.R, n)
}

// Zero sets all samples to 0.
func (s Stereo) Zero() {
	core.Zero(s.L)
	core.Zero(s.R)
}

// Slice returns the frames [start, end) sharing the backing arrays.
func (s Stereo) Slice(start, end int) Stereo {
	return Stereo{L: s.L[start:end], R: s.R[start:end]}
}

// CopyFrom copies min(s.Len(), src.Len()) frames from src and returns the
// number copied.
func (s Stereo) CopyFrom(src Stereo) int {
	n := copy(s.L, src.L[:min(len(src.L), len(src.R))])
	copy(s.R[:n], src.R)
	return n
}

// Mono writes (L+R) into dst, the fold a mono listener hears. dst must be at
// least s.Len() long.
func (s Stereo) Mono(dst []float64) {
	for i := range s.Len() {
		dst[i] = s.L[i] + s.R[i]
	}
}
