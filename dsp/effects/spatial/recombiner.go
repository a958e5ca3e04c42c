package spatial

import (
	"fmt"

	"github.com/cwbudde/algo-vocalcut/dsp/buffer"
)

// WidthReduction scales the summed band outputs before they reach the wet
// input of the mixer.
const WidthReduction = 0.7

// Recombiner sums the processed bands and applies the fixed width
// reduction. It is stateless and real-time safe.
type Recombiner struct{}

// Sum writes WidthReduction * sum(bands) into dstL and dstR. Every band must
// be at least len(dstL) frames long.
func (Recombiner) Sum(dstL, dstR []float64, bands ...buffer.Stereo) error {
	n := len(dstL)
	if len(dstR) != n {
		return fmt.Errorf("recombiner: left and right lengths must match: %d != %d", n, len(dstR))
	}

	for i, b := range bands {
		if b.Len() < n {
			return fmt.Errorf("recombiner: band %d has %d frames, need %d", i, b.Len(), n)
		}
	}

	Recombiner{}.SumBlock(dstL, dstR, bands...)

	return nil
}

// SumBlock is Sum without length checks. It writes the first n frames,
// where n is the shortest of dstL, dstR and every band, and returns n.
func (Recombiner) SumBlock(dstL, dstR []float64, bands ...buffer.Stereo) int {
	n := min(len(dstL), len(dstR))
	for _, b := range bands {
		n = min(n, b.Len())
	}

	for i := range n {
		var l, r float64
		for _, b := range bands {
			l += b.L[i]
			r += b.R[i]
		}
		dstL[i] = l * WidthReduction
		dstR[i] = r * WidthReduction
	}

	return n
}
