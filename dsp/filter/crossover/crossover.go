package crossover

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vocalcut/dsp/filter/biquad"
	"github.com/cwbudde/algo-vocalcut/dsp/filter/design"
)

const (
	// LowCrossoverHz splits the low band from the mid band.
	LowCrossoverHz = 400.0
	// HighCrossoverHz splits the mid band from the high band.
	HighCrossoverHz = 4000.0
	// Q is the quality factor of every crossover section.
	Q = 0.7
)

// Band describes one fixed band of the bank. A zero cutoff means the band
// is open on that side.
type Band struct {
	Name         string
	LowCutoffHz  float64
	HighCutoffHz float64
	// RetainGain is the left-channel gain the band canceller applies.
	RetainGain float64
}

// Bands is the fixed band table, ordered low to high.
var Bands = [3]Band{
	{Name: "low", HighCutoffHz: LowCrossoverHz, RetainGain: 0.5},
	{Name: "mid", LowCutoffHz: LowCrossoverHz, HighCutoffHz: HighCrossoverHz, RetainGain: 0.3},
	{Name: "high", LowCutoffHz: HighCrossoverHz, RetainGain: 0.4},
}

// ThreeBand splits one channel into low, mid and high bands:
//
//	low  = LP(400)
//	mid  = HP(400) -> LP(4000)
//	high = HP(4000)
//
// All sections are second-order RBJ biquads with Q = 0.7. The bands are not
// phase aligned, so their plain sum notches at both crossover frequencies
// (about -21 dB) while staying within 3 dB of unity elsewhere in the audio
// band.
//
// ThreeBand is stateful; feed it contiguous blocks of a single channel.
// It is real-time safe and not thread-safe.
type ThreeBand struct {
	lowLP  biquad.Section
	midHP  biquad.Section
	midLP  biquad.Section
	highHP biquad.Section
	sr     float64
}

// NewThreeBand creates the filter bank for the given sample rate. The
// Nyquist frequency must lie above HighCrossoverHz.
func NewThreeBand(sampleRate float64) (*ThreeBand, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("crossover: sample rate must be > 0 and finite: %v", sampleRate)
	}
	if sampleRate/2 <= HighCrossoverHz {
		return nil, fmt.Errorf("crossover: sample rate %v too low for %v Hz crossover", sampleRate, HighCrossoverHz)
	}

	lp400 := design.Lowpass(LowCrossoverHz, Q, sampleRate)
	hp400 := design.Highpass(LowCrossoverHz, Q, sampleRate)

	return &ThreeBand{
		lowLP:  biquad.Section{Coefficients: lp400},
		midHP:  biquad.Section{Coefficients: hp400},
		midLP:  biquad.Section{Coefficients: design.Lowpass(HighCrossoverHz, Q, sampleRate)},
		highHP: biquad.Section{Coefficients: design.Highpass(HighCrossoverHz, Q, sampleRate)},
		sr:     sampleRate,
	}, nil
}

// ProcessSample filters one input sample into the three bands.
func (b *ThreeBand) ProcessSample(x float64) (low, mid, high float64) {
	low = b.lowLP.ProcessSample(x)
	mid = b.midLP.ProcessSample(b.midHP.ProcessSample(x))
	high = b.highHP.ProcessSample(x)

	return low, mid, high
}

// ProcessBlock filters input into low, mid and high. The outputs must be at
// least as long as input and must not alias it.
func (b *ThreeBand) ProcessBlock(input, low, mid, high []float64) {
	n := len(input)
	if n == 0 {
		return
	}

	b.lowLP.ProcessBlockTo(low[:n], input)
	b.midHP.ProcessBlockTo(mid[:n], input)
	b.midLP.ProcessBlock(mid[:n])
	b.highHP.ProcessBlockTo(high[:n], input)
}

// Response returns the complex frequency response of each band at freqHz.
func (b *ThreeBand) Response(freqHz float64) (low, mid, high complex128) {
	low = b.lowLP.Response(freqHz, b.sr)
	mid = b.midHP.Response(freqHz, b.sr) * b.midLP.Response(freqHz, b.sr)
	high = b.highHP.Response(freqHz, b.sr)

	return low, mid, high
}

// SampleRate returns the sample rate in Hz.
func (b *ThreeBand) SampleRate() float64 { return b.sr }

// Reset clears all filter state.
func (b *ThreeBand) Reset() {
	b.lowLP.Reset()
	b.midHP.Reset()
	b.midLP.Reset()
	b.highHP.Reset()
}
