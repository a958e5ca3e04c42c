package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

type config struct {
	bitDepth  int
	typ       Type
	amplitude float64
	shaping   Shaping
	seed      uint64
	seeded    bool
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target depth in bits (8 to 24, default 16).
func WithBitDepth(bits int) Option {
	return func(c *config) error {
		if bits < 8 || bits > 24 {
			return fmt.Errorf("dither: bit depth must be in [8, 24]: %d", bits)
		}
		c.bitDepth = bits
		return nil
	}
}

// WithType sets the noise distribution (default Triangular).
func WithType(t Type) Option {
	return func(c *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type %d", t)
		}
		c.typ = t
		return nil
	}
}

// WithAmplitude scales the dither noise in LSB (default 1).
func WithAmplitude(a float64) Option {
	return func(c *config) error {
		if a < 0 || math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("dither: amplitude must be >= 0 and finite: %f", a)
		}
		c.amplitude = a
		return nil
	}
}

// WithShaping selects the noise-shaping curve (default Flat).
func WithShaping(s Shaping) Option {
	return func(c *config) error {
		if !s.Valid() {
			return fmt.Errorf("dither: invalid shaping %d", s)
		}
		c.shaping = s
		return nil
	}
}

// WithSeed makes the noise reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed, c.seeded = seed, true
		return nil
	}
}

// Quantizer converts one channel of float samples in [-1, 1] to integers.
// It keeps noise-shaping state, so use one Quantizer per channel.
type Quantizer struct {
	typ       Type
	amplitude float64
	bitDepth  int
	scale     float64
	lo, hi    int
	fb        *errorFeedback
	rng       *rand.Rand
}

// NewQuantizer returns a quantizer for a stream at sampleRate.
func NewQuantizer(sampleRate float64, opts ...Option) (*Quantizer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("dither: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := config{bitDepth: 16, typ: Triangular, amplitude: 1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	seed := cfg.seed
	if !cfg.seeded {
		seed = rand.Uint64()
	}

	half := math.Exp2(float64(cfg.bitDepth - 1))
	return &Quantizer{
		typ:       cfg.typ,
		amplitude: cfg.amplitude,
		bitDepth:  cfg.bitDepth,
		scale:     half - 0.5,
		lo:        -int(half),
		hi:        int(half) - 1,
		fb:        newErrorFeedback(cfg.shaping.Coefficients(sampleRate)),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// BitDepth returns the target depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Quantize converts v and returns the integer sample. Input is clamped to
// [-1, 1], NaN is treated as 0 and the result is limited to the target
// range.
func (q *Quantizer) Quantize(v float64) int {
	if math.IsNaN(v) {
		v = 0
	}
	v = max(-1, min(1, v))
	x := q.fb.shape(v * q.scale)

	n := int(math.Floor(x + q.noise()))
	n = max(q.lo, min(q.hi, n))

	q.fb.record(float64(n) - x)
	return n
}

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case Rectangular:
		return q.amplitude * (q.rng.Float64() - 0.5)
	case Triangular:
		return q.amplitude * (q.rng.Float64() - q.rng.Float64())
	default:
		return 0
	}
}

// Reset clears the noise-shaping history.
func (q *Quantizer) Reset() { q.fb.reset() }
