package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vocalcut/dsp/core"
)

// Oscillator is a streaming sine source. Its frequency either stays fixed
// or glides exponentially from a start to an end frequency over a fixed
// number of samples, after which it holds the end frequency.
type Oscillator struct {
	cfg       core.ProcessorConfig
	amplitude float64

	startHz, endHz float64
	glide          int

	phase float64
	freq  float64
	ratio float64
	pos   int
}

// NewSine creates a fixed-frequency oscillator.
func NewSine(freqHz, amplitude float64, opts ...core.ProcessorOption) (*Oscillator, error) {
	return NewSweep(freqHz, freqHz, amplitude, 0, opts...)
}

// NewSweep creates an exponential sweep from startHz to endHz lasting
// samples samples. A zero length yields a fixed tone at startHz.
func NewSweep(startHz, endHz, amplitude float64, samples int, opts ...core.ProcessorOption) (*Oscillator, error) {
	cfg := core.ApplyProcessorOptions(opts...)
	nyquist := cfg.SampleRate / 2

	if !(startHz > 0 && startHz < nyquist) || !(endHz > 0 && endHz < nyquist) {
		return nil, fmt.Errorf("oscillator frequencies must be in (0, %g): %g, %g", nyquist, startHz, endHz)
	}
	if samples < 0 {
		return nil, fmt.Errorf("oscillator sweep length must be >= 0: %d", samples)
	}
	if !core.IsFinite(amplitude) {
		return nil, fmt.Errorf("oscillator amplitude must be finite: %f", amplitude)
	}

	o := &Oscillator{
		cfg:       cfg,
		amplitude: amplitude,
		startHz:   startHz,
		endHz:     endHz,
		glide:     samples,
	}
	o.Reset()
	return o, nil
}

// Reset restarts at phase zero and the start frequency.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.pos = 0
	o.freq = o.startHz
	o.ratio = 1
	if o.glide > 0 {
		o.ratio = math.Pow(o.endHz/o.startHz, 1/float64(o.glide))
	}
}

// Frequency returns the instantaneous frequency of the next sample.
func (o *Oscillator) Frequency() float64 { return o.freq }

// Process fills dst with the next len(dst) samples.
func (o *Oscillator) Process(dst []float64) {
	twoPi := 2 * math.Pi
	inv := twoPi / o.cfg.SampleRate
	for i := range dst {
		dst[i] = o.amplitude * math.Sin(o.phase)
		o.phase += o.freq * inv
		if o.phase >= twoPi {
			o.phase -= twoPi
		}
		if o.pos < o.glide {
			o.pos++
			o.freq *= o.ratio
			if o.pos == o.glide {
				o.freq = o.endHz
			}
		}
	}
}

// Noise is a deterministic white-noise source in [-amplitude, amplitude].
type Noise struct {
	amplitude float64
	seed      int64
	rng       *rand.Rand
}

// NewNoise creates a noise source. Equal seeds produce equal sequences.
func NewNoise(amplitude float64, seed int64) (*Noise, error) {
	if amplitude < 0 || !core.IsFinite(amplitude) {
		return nil, fmt.Errorf("noise amplitude must be >= 0 and finite: %f", amplitude)
	}
	return &Noise{amplitude: amplitude, seed: seed, rng: rand.New(rand.NewSource(seed))}, nil
}

// Reset restarts the sequence.
func (n *Noise) Reset() { n.rng.Seed(n.seed) }

// Process fills dst with the next len(dst) samples.
func (n *Noise) Process(dst []float64) {
	for i := range dst {
		dst[i] = (n.rng.Float64()*2 - 1) * n.amplitude
	}
}
