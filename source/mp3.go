package source

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MPEG-1/2 Layer III streams. The output is always
// stereo; mono files are duplicated by the decoder.
type MP3Decoder struct{}

// Decode implements Decoder.
func (MP3Decoder) Decode(r io.Reader) (Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %w", ErrUnsupportedFormat, err)
	}
	return &mp3Source{dec: dec, rate: dec.SampleRate()}, nil
}

// mp3Reader is the part of gomp3.Decoder the source uses.
type mp3Reader interface {
	Read([]byte) (int, error)
}

type mp3Source struct {
	dec  mp3Reader
	rate int
	buf  []byte
	// An odd trailing byte from a short read.
	carry []byte
}

func (s *mp3Source) SampleRate() int { return s.rate }
func (s *mp3Source) Channels() int   { return 2 }
func (s *mp3Source) Close() error    { return nil }

// ReadSamples converts the decoder's 16-bit little-endian stereo PCM.
func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	samples := len(dst) - len(dst)%2
	if samples == 0 {
		return 0, nil
	}
	need := samples * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	pre := copy(buf, s.carry)
	s.carry = s.carry[:0]
	n, err := s.dec.Read(buf[pre:])
	n += pre

	// Only whole frames (4 bytes) are emitted; keep the remainder.
	whole := n - n%4
	s.carry = append(s.carry, buf[whole:n]...)

	out := whole / 2
	for i := range out {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(buf[2*i:]))) / 32768
	}
	if out == 0 && err == nil {
		return 0, nil
	}
	return out, err
}
