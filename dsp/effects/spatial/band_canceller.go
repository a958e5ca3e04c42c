package spatial

import (
	"fmt"
	"math"
)

// BandCanceller performs center cancellation on one frequency band.
//
// The left channel is scaled by the retain gain and the right channel is
// polarity inverted, so a downstream mono fold yields g*L - R: content that
// is identical in both channels is reduced to (g-1) times its level instead
// of vanishing completely. The retain gain sets how much of the band's
// center survives.
//
// This processor is stereo, stateless, and real-time safe.
type BandCanceller struct {
	retain float64
}

// NewBandCanceller creates a canceller with the given retain gain in [0, 1].
func NewBandCanceller(retainGain float64) (*BandCanceller, error) {
	if retainGain < 0 || retainGain > 1 || math.IsNaN(retainGain) {
		return nil, fmt.Errorf("band canceller retain gain must be in [0, 1]: %f", retainGain)
	}

	return &BandCanceller{retain: retainGain}, nil
}

// RetainGain returns the left-channel gain.
func (c *BandCanceller) RetainGain() float64 { return c.retain }

// ProcessStereo processes a single stereo sample pair.
func (c *BandCanceller) ProcessStereo(left, right float64) (float64, float64) {
	return left * c.retain, -right
}

// ProcessStereoInPlace processes left and right buffers in place.
func (c *BandCanceller) ProcessStereoInPlace(left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("band canceller: left and right lengths must match: %d != %d", len(left), len(right))
	}

	c.ProcessBlock(left, right)

	return nil
}

// ProcessBlock processes the first min(len(left), len(right)) frames in
// place. It is the unchecked form for callers that size both channels from
// the same buffer.
func (c *BandCanceller) ProcessBlock(left, right []float64) {
	n := min(len(left), len(right))
	g := c.retain
	for i := range n {
		left[i] *= g
		right[i] = -right[i]
	}
}
