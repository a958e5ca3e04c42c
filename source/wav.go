package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// WAVDecoder decodes integer PCM WAV files (8, 16, 24 or 32 bit).
type WAVDecoder struct{}

// Decode implements Decoder. Non-seekable input is buffered in memory
// because the RIFF parser needs to seek.
func (WAVDecoder) Decode(r io.Reader) (Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: wav header: %w", ErrUnsupportedFormat, err)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: wav format tag %d, want PCM", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("%w: wav with %d channels at %d Hz", ErrUnsupportedFormat, dec.NumChans, dec.SampleRate)
	}

	depth := int(dec.BitDepth)
	full := audio.IntMaxSignedValue(depth)
	if full == 0 {
		return nil, fmt.Errorf("%w: %d-bit wav", ErrUnsupportedFormat, depth)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("source: wav data chunk: %w", err)
	}

	s := &wavSource{
		dec:      dec,
		rate:     int(dec.SampleRate),
		channels: int(dec.NumChans),
		scale:    1 / float32(full+1),
		buf:      &audio.IntBuffer{Format: dec.Format(), SourceBitDepth: depth},
	}
	// 8-bit WAV samples are unsigned around 128.
	if depth == 8 {
		s.offset = 128
	}
	return s, nil
}

type wavSource struct {
	dec      *wav.Decoder
	rate     int
	channels int
	scale    float32
	offset   int
	buf      *audio.IntBuffer
	done     bool
}

func (s *wavSource) SampleRate() int { return s.rate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	n -= n % s.channels
	for i := range n {
		dst[i] = float32(s.buf.Data[i]-s.offset) * s.scale
	}
	if err != nil {
		return n, err
	}
	if n == 0 {
		s.done = true
		return 0, io.EOF
	}
	return n, nil
}
