package export

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-vocalcut/dsp/buffer"
	"github.com/cwbudde/algo-vocalcut/dsp/core"
	"github.com/cwbudde/algo-vocalcut/dsp/dither"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// HeaderSize is the size of the canonical RIFF/WAVE PCM header.
const HeaderSize = 44

const (
	bitDepth    = 16
	channels    = 2
	formatPCM   = 1
	encodeChunk = 4096
)

// Quantize converts a sample to signed 16-bit PCM. Input is clamped to
// [-1, 1]; negative values scale by 32768 and positive values by 32767,
// truncating toward zero.
func Quantize(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = core.Clamp(v, -1, 1)
	if v < 0 {
		return int(v * 32768)
	}
	return int(v * 32767)
}

// EncodeOption configures EncodeWAV and WriteFile.
type EncodeOption func(*encodeConfig)

type encodeConfig struct {
	dither  dither.Type
	shaping dither.Shaping
	seed    uint64
}

// WithDither requantizes with dither noise and noise shaping instead of
// plain truncation. A zero seed draws a random one. The right channel uses
// seed+1 so the channels get independent noise.
func WithDither(t dither.Type, s dither.Shaping, seed uint64) EncodeOption {
	return func(c *encodeConfig) {
		c.dither, c.shaping, c.seed = t, s, seed
	}
}

func (c encodeConfig) quantizers(sampleRate int) (left, right func(float64) int, err error) {
	if c.dither == dither.None && c.shaping == dither.Flat {
		return Quantize, Quantize, nil
	}
	seed := c.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	newQuant := func(seed uint64) (func(float64) int, error) {
		q, err := dither.NewQuantizer(float64(sampleRate),
			dither.WithType(c.dither),
			dither.WithShaping(c.shaping),
			dither.WithSeed(seed),
		)
		if err != nil {
			return nil, err
		}
		return q.Quantize, nil
	}
	if left, err = newQuant(seed); err != nil {
		return nil, nil, err
	}
	if right, err = newQuant(seed + 1); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// EncodeWAV writes buf as interleaved stereo PCM16 at sampleRate. The
// output is a 44-byte header followed by frames*4 bytes of sample data.
// Without options samples are converted with Quantize.
func EncodeWAV(w io.WriteSeeker, buf buffer.Stereo, sampleRate int, opts ...EncodeOption) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %d", ErrRender, sampleRate)
	}

	var cfg encodeConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	quantL, quantR, err := cfg.quantizers(sampleRate)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}

	frames := buf.Len()
	data := make([]int, 0, 2*min(frames, encodeChunk))
	off := 0
	for {
		end := min(off+encodeChunk, frames)
		data = data[:0]
		for i := off; i < end; i++ {
			data = append(data, quantL(buf.L[i]), quantR(buf.R[i]))
		}
		ib.Data = data
		// The first call also emits the header, so it runs even for an
		// empty buffer.
		if err := enc.Write(ib); err != nil {
			return fmt.Errorf("%w: encode: %w", ErrRender, err)
		}
		off = end
		if off >= frames {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: finalize: %w", ErrRender, err)
	}
	return nil
}

// WriteFile encodes buf to path. The data goes to a temporary file in the
// same directory that is renamed into place only after a successful encode,
// so a failed export leaves no partial file behind.
func WriteFile(path string, buf buffer.Stereo, sampleRate int, opts ...EncodeOption) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = EncodeWAV(tmp, buf, sampleRate, opts...); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}
