package webdemo

import (
	"errors"
	"io"
)

// pcmSource replays a fixed block of interleaved samples.
type pcmSource struct {
	data     []float32
	channels int
	rate     int
	pos      int
}

func newPCMSource(samples []float32, channels, rate int) (*pcmSource, error) {
	if channels <= 0 {
		return nil, errors.New("webdemo: pcm needs at least one channel")
	}
	if rate <= 0 {
		return nil, errors.New("webdemo: pcm sample rate must be > 0")
	}
	n := len(samples) - len(samples)%channels
	return &pcmSource{data: samples[:n], channels: channels, rate: rate}, nil
}

func (p *pcmSource) SampleRate() int { return p.rate }
func (p *pcmSource) Channels() int   { return p.channels }
func (p *pcmSource) Close() error    { return nil }

func (p *pcmSource) ReadSamples(dst []float32) (int, error) {
	if p.pos >= len(p.data) {
		return 0, io.EOF
	}
	n := len(dst) - len(dst)%p.channels
	n = copy(dst[:n], p.data[p.pos:])
	p.pos += n
	return n, nil
}
