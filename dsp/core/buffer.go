package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// Deinterleave splits interleaved samples with the given channel count into
// left and right. Mono input is copied to both outputs; channels beyond the
// second are ignored. It returns the number of frames written.
func Deinterleave(left, right []float64, src []float32, channels int) int {
	if channels <= 0 {
		return 0
	}

	frames := len(src) / channels
	if frames > len(left) {
		frames = len(left)
	}
	if frames > len(right) {
		frames = len(right)
	}

	if channels == 1 {
		for i := 0; i < frames; i++ {
			v := float64(src[i])
			left[i] = v
			right[i] = v
		}
		return frames
	}

	for i := 0; i < frames; i++ {
		base := i * channels
		left[i] = float64(src[base])
		right[i] = float64(src[base+1])
	}
	return frames
}

// InterleaveClamped writes left/right into dst as interleaved stereo float32,
// hard-clipping each sample to [-1, 1]. It returns the number of frames written.
func InterleaveClamped(dst []float32, left, right []float64) int {
	frames := len(dst) / 2
	if frames > len(left) {
		frames = len(left)
	}
	if frames > len(right) {
		frames = len(right)
	}

	for i := 0; i < frames; i++ {
		dst[2*i] = float32(Clamp(left[i], -1, 1))
		dst[2*i+1] = float32(Clamp(right[i], -1, 1))
	}
	return frames
}
