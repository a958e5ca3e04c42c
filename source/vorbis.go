package source

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// VorbisDecoder decodes Ogg Vorbis streams.
type VorbisDecoder struct{}

// Decode implements Decoder.
func (VorbisDecoder) Decode(r io.Reader) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: ogg vorbis: %w", ErrUnsupportedFormat, err)
	}
	return &vorbisSource{dec: dec, rate: dec.SampleRate(), channels: dec.Channels()}, nil
}

// vorbisReader is the part of oggvorbis.Reader the source uses.
type vorbisReader interface {
	Read([]float32) (int, error)
}

type vorbisSource struct {
	dec      vorbisReader
	rate     int
	channels int
}

func (s *vorbisSource) SampleRate() int { return s.rate }
func (s *vorbisSource) Channels() int   { return s.channels }
func (s *vorbisSource) Close() error    { return nil }

// ReadSamples reads whole frames; the reader already returns interleaved
// values in [-1, 1].
func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}
	return s.dec.Read(dst[:want])
}
