package source

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/cwbudde/algo-vocalcut/dsp/core"
	"github.com/cwbudde/algo-vocalcut/dsp/signal"
)

// Layout selects how a mono test signal is placed in the stereo field.
type Layout int

const (
	// Center feeds the same signal to both channels, like a lead vocal.
	Center Layout = iota
	// Antiphase feeds the signal to the left and its negation to the right.
	Antiphase
	// LeftOnly feeds only the left channel.
	LeftOnly
)

func (l Layout) String() string {
	switch l {
	case Center:
		return "center"
	case Antiphase:
		return "antiphase"
	case LeftOnly:
		return "left"
	default:
		return "unknown"
	}
}

// ParseLayout maps "center", "antiphase" and "left" to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "center", "":
		return Center, nil
	case "antiphase":
		return Antiphase, nil
	case "left":
		return LeftOnly, nil
	default:
		return Center, fmt.Errorf("source: unknown layout %q", s)
	}
}

type processor interface {
	Process(dst []float64)
}

// Generator is a stereo Source backed by a synthetic signal. A zero
// duration makes it endless.
type Generator struct {
	rate   int
	layout Layout
	gen    processor
	frames int64
	pos    int64
	mono   []float64
}

func newGenerator(rate int, d time.Duration, layout Layout, gen processor) *Generator {
	return &Generator{
		rate:   rate,
		layout: layout,
		gen:    gen,
		frames: int64(math.Round(d.Seconds() * float64(rate))),
	}
}

// NewSineGenerator returns a sine tone at freqHz.
func NewSineGenerator(rate int, freqHz, amplitude float64, d time.Duration, layout Layout) (*Generator, error) {
	if err := validateGenerator(rate, d); err != nil {
		return nil, err
	}
	osc, err := signal.NewSine(freqHz, amplitude, core.WithSampleRate(float64(rate)))
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return newGenerator(rate, d, layout, osc), nil
}

// NewSweepGenerator returns an exponential sweep from startHz to endHz over
// d. The duration must be positive.
func NewSweepGenerator(rate int, startHz, endHz, amplitude float64, d time.Duration, layout Layout) (*Generator, error) {
	if err := validateGenerator(rate, d); err != nil {
		return nil, err
	}
	if d == 0 {
		return nil, fmt.Errorf("source: sweep needs a positive duration")
	}
	samples := int(math.Round(d.Seconds() * float64(rate)))
	osc, err := signal.NewSweep(startHz, endHz, amplitude, samples, core.WithSampleRate(float64(rate)))
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return newGenerator(rate, d, layout, osc), nil
}

// NewNoiseGenerator returns deterministic white noise.
func NewNoiseGenerator(rate int, amplitude float64, seed int64, d time.Duration, layout Layout) (*Generator, error) {
	if err := validateGenerator(rate, d); err != nil {
		return nil, err
	}
	n, err := signal.NewNoise(amplitude, seed)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return newGenerator(rate, d, layout, n), nil
}

func validateGenerator(rate int, d time.Duration) error {
	if rate <= 0 {
		return fmt.Errorf("source: sample rate must be > 0: %d", rate)
	}
	if d < 0 {
		return fmt.Errorf("source: duration must be >= 0: %s", d)
	}
	return nil
}

func (g *Generator) SampleRate() int { return g.rate }
func (g *Generator) Channels() int   { return 2 }
func (g *Generator) Close() error    { return nil }

// ReadSamples implements Source.
func (g *Generator) ReadSamples(dst []float32) (int, error) {
	frames := int64(len(dst) / 2)
	if g.frames > 0 {
		if g.pos >= g.frames {
			return 0, io.EOF
		}
		frames = min(frames, g.frames-g.pos)
	}
	n := int(frames)
	g.mono = core.EnsureLen(g.mono, n)
	g.gen.Process(g.mono)

	for i, v := range g.mono {
		l, r := v, v
		switch g.layout {
		case Antiphase:
			r = -v
		case LeftOnly:
			r = 0
		}
		dst[2*i] = float32(l)
		dst[2*i+1] = float32(r)
	}
	g.pos += frames
	return 2 * n, nil
}
