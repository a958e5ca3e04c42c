package source

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-vocalcut/dsp/resample"
)

// Resampled converts src to rate. When src already runs at rate it is
// returned unchanged. Closing the result closes src.
func Resampled(src Source, rate int, q resample.Quality) (Source, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("source: target rate must be > 0: %d", rate)
	}
	if src.SampleRate() == rate {
		return src, nil
	}
	ch := src.Channels()
	if ch <= 0 {
		return nil, fmt.Errorf("source: %d channels", ch)
	}

	s := &resampled{
		src:      src,
		rate:     rate,
		channels: ch,
		conv:     make([]*resample.Resampler, ch),
		in:       make([][]float64, ch),
		out:      make([][]float64, ch),
		raw:      make([]float32, 1024*ch),
	}
	for c := range s.conv {
		r, err := resample.NewForRates(float64(src.SampleRate()), float64(rate), resample.WithQuality(q))
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		s.conv[c] = r
	}
	// Zeros fed after the end push the filter tail out.
	s.tail = int(math.Ceil(s.conv[0].Latency()))

	return s, nil
}

type resampled struct {
	src      Source
	rate     int
	channels int
	conv     []*resample.Resampler

	raw     []float32
	in, out [][]float64
	pending int // frames in out not yet handed out
	read    int // frames of out already handed out
	tail    int
	ended   bool
	err     error
}

func (s *resampled) SampleRate() int { return s.rate }
func (s *resampled) Channels() int   { return s.channels }
func (s *resampled) Close() error    { return s.src.Close() }

func (s *resampled) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	written := 0

	for written < frames {
		if s.pending == 0 {
			if !s.refill() {
				break
			}
			continue
		}
		n := min(s.pending, frames-written)
		for i := range n {
			for c := range s.channels {
				dst[(written+i)*s.channels+c] = float32(s.out[c][s.read+i])
			}
		}
		s.read += n
		s.pending -= n
		written += n
	}

	if written > 0 {
		return written * s.channels, nil
	}
	if s.err != nil {
		return 0, s.err
	}
	if !s.ended {
		return 0, nil
	}
	return 0, io.EOF
}

// refill converts the next chunk of the wrapped source. It returns false
// when nothing more will come.
func (s *resampled) refill() bool {
	if s.ended {
		if s.tail == 0 {
			return false
		}
		for c := range s.in {
			s.in[c] = s.in[c][:0]
			for range s.tail {
				s.in[c] = append(s.in[c], 0)
			}
		}
		s.tail = 0
		return s.convert()
	}

	n, err := s.src.ReadSamples(s.raw)
	n -= n % s.channels
	for c := range s.in {
		s.in[c] = s.in[c][:0]
	}
	for i := 0; i < n; i += s.channels {
		for c := range s.channels {
			s.in[c] = append(s.in[c], float64(s.raw[i+c]))
		}
	}

	if err != nil {
		s.ended = true
		if !errors.Is(err, io.EOF) {
			s.err = err
			s.tail = 0
		}
	}

	if n == 0 {
		if !s.ended {
			return false
		}
		return s.refill()
	}
	return s.convert()
}

func (s *resampled) convert() bool {
	for c, r := range s.conv {
		s.out[c] = r.Append(s.out[c][:0], s.in[c])
	}
	s.read = 0
	s.pending = len(s.out[0])
	return true
}
