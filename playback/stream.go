package playback

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

// Renderer produces interleaved stereo float32 samples.
type Renderer interface {
	Render(dst []float32)
}

// Finisher is a Renderer that can tell when its input has ended. The
// stream returns io.EOF once SourceDone reports true.
type Finisher interface {
	Renderer
	SourceDone() bool
}

const bytesPerFrame = 8 // two float32 channels

// StreamReader adapts a Renderer to the io.Reader oto pulls from.
type StreamReader struct {
	mu        sync.Mutex
	r         Renderer
	buf       []float32
	stopOnEnd bool
}

// NewStreamReader returns a reader over r. When stopOnEnd is set and r is a
// Finisher, the stream ends with the source.
func NewStreamReader(r Renderer, stopOnEnd bool) *StreamReader {
	return &StreamReader{r: r, stopOnEnd: stopOnEnd}
}

// Read renders len(p)/8 frames.
func (s *StreamReader) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	s.buf = s.buf[:need]
	s.r.Render(s.buf)

	for i, v := range s.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	n := frames * bytesPerFrame

	if f, ok := s.r.(Finisher); ok && s.stopOnEnd && f.SourceDone() {
		return n, io.EOF
	}
	return n, nil
}
