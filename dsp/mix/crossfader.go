package mix

import (
	"fmt"
	"math"
	"sync/atomic"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-vocalcut/dsp/automation"
	"github.com/cwbudde/algo-vocalcut/dsp/buffer"
	"github.com/cwbudde/algo-vocalcut/dsp/core"
)

// Crossfader blends a dry and a wet stereo signal:
//
//	out = dry*dryGain + wet*wetGain
//
// SetLevel(level) retargets the gains to (1-level, level). Both gains ramp
// linearly from wherever they are to their targets over the ramp time, so
// after any ramp completes dryGain + wetGain == 1. Initially the output is
// fully dry.
//
// SetLevel may be called from one control goroutine while Process runs on
// the render goroutine. Process is real-time safe and does not allocate.
type Crossfader struct {
	rampFrames int64

	levels automation.Mailbox[automation.Event]
	seen   uint64

	// Control-side copy of the last requested level, as float64 bits.
	level atomic.Uint64

	dry, wet automation.Param

	dryCurve, wetCurve []float64
	tmp                []float64
}

// NewCrossfader creates a crossfader for blocks of up to maxBlock frames.
func NewCrossfader(rampFrames int64, maxBlock int) (*Crossfader, error) {
	if rampFrames <= 0 {
		return nil, fmt.Errorf("crossfader ramp frames must be > 0: %d", rampFrames)
	}
	if maxBlock <= 0 {
		return nil, fmt.Errorf("crossfader block size must be > 0: %d", maxBlock)
	}

	return &Crossfader{
		rampFrames: rampFrames,
		dry:        automation.NewParam(1, 1),
		wet:        automation.NewParam(0, 1),
		dryCurve:   make([]float64, maxBlock),
		wetCurve:   make([]float64, maxBlock),
		tmp:        make([]float64, maxBlock),
	}, nil
}

// LevelFromIntensity maps a 0-100 intensity to a 0-1 wet level. Out of range
// and NaN inputs are clamped.
func LevelFromIntensity(intensity float64) float64 {
	return core.Clamp(intensity/100, 0, 1)
}

// SetLevel requests a new wet level in [0, 1] at audio-clock frame now and
// returns the clamped level. Pending requests that the render side has not
// yet observed are replaced.
func (c *Crossfader) SetLevel(level float64, now int64) float64 {
	level = core.Clamp(level, 0, 1)
	c.level.Store(math.Float64bits(level))
	c.levels.Post(automation.Event{
		Target:     level,
		StartFrame: now,
		RampFrames: c.rampFrames,
	})
	return level
}

// Level returns the last requested wet level.
func (c *Crossfader) Level() float64 {
	return math.Float64frombits(c.level.Load())
}

// Gains returns the render-side dry and wet gains of the last processed
// sample. Call it only from the render goroutine.
func (c *Crossfader) Gains() (dry, wet float64) {
	return c.dry.Value(), c.wet.Value()
}

// Process mixes dry and wet into dstL/dstR. blockStart is the audio-clock
// frame of the first sample. dst may alias dry or wet. Blocks longer than
// the configured maximum are processed in pieces.
func (c *Crossfader) Process(dstL, dstR []float64, dry, wet buffer.Stereo, blockStart int64) {
	n := min(len(dstL), len(dstR), dry.Len(), wet.Len())
	maxBlock := len(c.dryCurve)

	for off := 0; off < n; off += maxBlock {
		end := min(off+maxBlock, n)
		c.process(dstL[off:end], dstR[off:end], dry.Slice(off, end), wet.Slice(off, end), blockStart+int64(off))
	}
}

func (c *Crossfader) process(dstL, dstR []float64, dry, wet buffer.Stereo, now int64) {
	if ev, seq, ok := c.levels.Poll(c.seen); ok {
		c.seen = seq
		c.dry.Apply(automation.Event{Target: 1 - ev.Target, StartFrame: ev.StartFrame, RampFrames: ev.RampFrames, Seq: seq}, now)
		c.wet.Apply(automation.Event{Target: ev.Target, StartFrame: ev.StartFrame, RampFrames: ev.RampFrames, Seq: seq}, now)
	}

	n := len(dstL)
	dryCurve := c.dryCurve[:n]
	wetCurve := c.wetCurve[:n]
	tmp := c.tmp[:n]

	c.dry.Fill(dryCurve)
	c.wet.Fill(wetCurve)

	mixChannel(dstL, dry.L, wet.L, dryCurve, wetCurve, tmp)
	mixChannel(dstR, dry.R, wet.R, dryCurve, wetCurve, tmp)
}

func mixChannel(dst, dry, wet, dryCurve, wetCurve, tmp []float64) {
	vecmath.MulBlock(tmp, wet, wetCurve)
	vecmath.MulBlock(dst, dry, dryCurve)
	for i := range dst {
		dst[i] += tmp[i]
	}
}
