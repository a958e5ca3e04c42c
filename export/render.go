package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-vocalcut/dsp/buffer"
)

// ErrRender wraps every failure of an offline render or export.
var ErrRender = errors.New("export: render failed")

// chunkBlocks is the number of engine blocks rendered between context checks.
const chunkBlocks = 16

// Renderer is the offline side of an engine.
type Renderer interface {
	RenderStereo(left, right []float64)
	SampleRate() float64
	BlockSize() int
}

// SourceRenderer can also report that its input is exhausted.
type SourceRenderer interface {
	Renderer
	SourceDone() bool
	Err() error
}

// Frames returns the number of frames in d at sampleRate, rounded to the
// nearest frame.
func Frames(d time.Duration, sampleRate float64) int {
	return int(math.Round(d.Seconds() * sampleRate))
}

// Render pulls round(d * rate) frames through r. It stops early with an
// ErrRender-wrapped context error when ctx is cancelled.
func Render(ctx context.Context, r Renderer, d time.Duration) (buffer.Stereo, error) {
	if d < 0 {
		return buffer.Stereo{}, fmt.Errorf("%w: negative duration %s", ErrRender, d)
	}

	frames := Frames(d, r.SampleRate())
	out := buffer.NewStereo(frames)
	chunk := max(1, r.BlockSize()) * chunkBlocks

	for off := 0; off < frames; off += chunk {
		if err := ctx.Err(); err != nil {
			return buffer.Stereo{}, fmt.Errorf("%w: %w", ErrRender, err)
		}
		end := min(off+chunk, frames)
		r.RenderStereo(out.L[off:end], out.R[off:end])
	}

	return out, nil
}

// RenderSource renders until the source is exhausted, at most limit long.
// A non-EOF source error aborts the render.
func RenderSource(ctx context.Context, r SourceRenderer, limit time.Duration) (buffer.Stereo, error) {
	if limit <= 0 {
		return buffer.Stereo{}, fmt.Errorf("%w: limit must be > 0: %s", ErrRender, limit)
	}

	maxFrames := Frames(limit, r.SampleRate())
	chunk := max(1, r.BlockSize()) * chunkBlocks
	scratch := buffer.NewStereo(chunk)
	var out buffer.Stereo

	for out.Len() < maxFrames && !r.SourceDone() {
		if err := ctx.Err(); err != nil {
			return buffer.Stereo{}, fmt.Errorf("%w: %w", ErrRender, err)
		}
		block := scratch.Slice(0, min(chunk, maxFrames-out.Len()))
		r.RenderStereo(block.L, block.R)
		out.L = append(out.L, block.L...)
		out.R = append(out.R, block.R...)
	}

	if err := r.Err(); err != nil {
		return buffer.Stereo{}, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return out, nil
}
