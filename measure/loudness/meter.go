// Package loudness measures the programme loudness of a stereo stream
// following ITU-R BS.1770: K-weighting, 400 ms momentary and 3 s short-term
// windows, and gated integrated loudness.
package loudness

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vocalcut/dsp/filter/biquad"
	"github.com/cwbudde/algo-vocalcut/dsp/filter/design"
)

const (
	kShelfFreq = 1500.0
	kShelfGain = 4.0
	kHpfFreq   = 38.0

	momentarySeconds = 0.4
	shortTermSeconds = 3.0

	absGate = -70.0
	relGate = -10.0

	// Gating blocks overlap by 75%.
	blockStep = 0.25

	// Floor reported for silence.
	Floor = -120.0
)

// ErrInvalidSampleRate is returned by NewMeter for non-positive rates.
var ErrInvalidSampleRate = errors.New("loudness: invalid sample rate")

// window is a sliding sum of squared, channel-summed samples.
type window struct {
	hist []float64
	pos  int
	sum  float64
}

func newWindow(n int) window { return window{hist: make([]float64, max(n, 1))} }

func (w *window) push(v float64) {
	w.sum += v - w.hist[w.pos]
	if w.sum < 0 {
		w.sum = 0
	}
	w.hist[w.pos] = v
	w.pos++
	if w.pos == len(w.hist) {
		w.pos = 0
	}
}

func (w *window) meanSquare() float64 { return w.sum / float64(len(w.hist)) }

func (w *window) reset() {
	clear(w.hist)
	w.pos = 0
	w.sum = 0
}

// Meter is a stereo BS.1770 loudness meter. It is not safe for concurrent
// use.
type Meter struct {
	sampleRate float64

	shelf, hpf *biquad.Stereo
	kl, kr     []float64

	momentary window
	shortTerm window

	step      int
	sinceStep int
	blocks    []float64 // mean-square power of each gating block

	frames int64
	peak   float64
}

// NewMeter returns a meter for the given sample rate.
func NewMeter(sampleRate float64) (*Meter, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSampleRate, sampleRate)
	}

	q := 1 / math.Sqrt2
	m := &Meter{
		sampleRate: sampleRate,
		shelf:      biquad.NewStereo(design.HighShelf(kShelfFreq, kShelfGain, q, sampleRate)),
		hpf:        biquad.NewStereo(design.Highpass(kHpfFreq, q, sampleRate)),
		momentary:  newWindow(int(math.Round(momentarySeconds * sampleRate))),
		shortTerm:  newWindow(int(math.Round(shortTermSeconds * sampleRate))),
		step:       max(int(math.Round(momentarySeconds*blockStep*sampleRate)), 1),
	}

	return m, nil
}

// SampleRate returns the rate the K-weighting was designed for.
func (m *Meter) SampleRate() float64 { return m.sampleRate }

// Process feeds one block. left and right must have the same length; the
// shorter length wins otherwise.
func (m *Meter) Process(left, right []float64) {
	n := min(len(left), len(right))
	if n == 0 {
		return
	}
	if cap(m.kl) < n {
		m.kl = make([]float64, n)
		m.kr = make([]float64, n)
	}
	kl, kr := m.kl[:n], m.kr[:n]

	m.shelf.ProcessBlockTo(kl, kr, left[:n], right[:n])
	m.hpf.ProcessBlock(kl, kr)

	for i := range n {
		if a := math.Abs(left[i]); a > m.peak {
			m.peak = a
		}
		if a := math.Abs(right[i]); a > m.peak {
			m.peak = a
		}

		sq := kl[i]*kl[i] + kr[i]*kr[i]
		m.momentary.push(sq)
		m.shortTerm.push(sq)

		m.sinceStep++
		if m.sinceStep >= m.step {
			m.sinceStep = 0
			m.blocks = append(m.blocks, m.momentary.meanSquare())
		}
	}
	m.frames += int64(n)
}

// Frames returns the number of frames measured since the last Reset.
func (m *Meter) Frames() int64 { return m.frames }

// Momentary returns the loudness of the last 400 ms in LUFS.
func (m *Meter) Momentary() float64 { return toLUFS(m.momentary.meanSquare()) }

// ShortTerm returns the loudness of the last 3 s in LUFS.
func (m *Meter) ShortTerm() float64 { return toLUFS(m.shortTerm.meanSquare()) }

// Integrated returns the gated loudness of everything measured since Reset.
// It is -Inf when no block passes the gates.
func (m *Meter) Integrated() float64 {
	var sum float64
	var count int
	for _, b := range m.blocks {
		if toLUFS(b) > absGate {
			sum += b
			count++
		}
	}
	if count == 0 {
		return math.Inf(-1)
	}

	gate := toLUFS(sum/float64(count)) + relGate
	sum, count = 0, 0
	for _, b := range m.blocks {
		if l := toLUFS(b); l > absGate && l > gate {
			sum += b
			count++
		}
	}
	if count == 0 {
		return math.Inf(-1)
	}

	return toLUFS(sum / float64(count))
}

// Peak returns the largest absolute sample on either channel.
func (m *Meter) Peak() float64 { return m.peak }

// Reset clears filter state, windows, gating blocks and the peak.
func (m *Meter) Reset() {
	m.shelf.Reset()
	m.hpf.Reset()
	m.momentary.reset()
	m.shortTerm.reset()
	m.sinceStep = 0
	m.blocks = m.blocks[:0]
	m.frames = 0
	m.peak = 0
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return Floor
	}
	return -0.691 + 10*math.Log10(meanSquare)
}
