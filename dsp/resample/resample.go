package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality controls default anti-aliasing filter settings.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

// ParseQuality maps "fast", "balanced" and "best" to a Quality.
func ParseQuality(s string) (Quality, bool) {
	switch s {
	case "fast":
		return QualityFast, true
	case "balanced", "":
		return QualityBalanced, true
	case "best":
		return QualityBest, true
	default:
		return QualityBalanced, false
	}
}

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityBest:
		return "best"
	default:
		return "balanced"
	}
}

type profile struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
}

func qualityProfile(q Quality) profile {
	switch q {
	case QualityFast:
		return profile{tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5.0}
	case QualityBest:
		return profile{tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9.0}
	default:
		return profile{tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5}
	}
}

type config struct {
	quality Quality
	maxDen  int
}

// Option configures the resampler.
type Option func(*config)

// WithQuality selects the anti-aliasing filter.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
	}
}

// WithMaxDenominator caps the denominator used to approximate a rate ratio.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Resampler performs streaming rational sample-rate conversion with a
// polyphase FIR. One Resampler handles one channel.
type Resampler struct {
	up   int
	down int

	phases     [][]float64
	maxPhaseLn int
	delay      float64

	phase      int
	inputIndex int
	totalIn    int
	history    []float64
	work       []float64
}

// NewRational creates a resampler for ratio up/down.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := newConfig(opts)

	phases, nTaps, err := designPolyphaseFIR(up, down, qualityProfile(cfg.quality))
	if err != nil {
		return nil, err
	}

	maxLn := 0
	for _, p := range phases {
		maxLn = max(maxLn, len(p))
	}

	return &Resampler{
		up:         up,
		down:       down,
		phases:     phases,
		maxPhaseLn: maxLn,
		delay:      float64(nTaps-1) / 2 / float64(up),
		history:    make([]float64, 0, max(0, maxLn-1)),
	}, nil
}

// NewForRates creates a resampler converting inRate to outRate.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if inRate <= 0 || outRate <= 0 || math.IsNaN(inRate) || math.IsNaN(outRate) ||
		math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, ErrInvalidRate
	}

	up, down := approximateRatio(outRate/inRate, newConfig(opts).maxDen)

	return NewRational(up, down, opts...)
}

// Reset clears the filter history.
func (r *Resampler) Reset() {
	r.phase = 0
	r.inputIndex = 0
	r.totalIn = 0
	r.history = r.history[:0]
}

// Ratio returns the reduced up/down conversion factors.
func (r *Resampler) Ratio() (up, down int) {
	return r.up, r.down
}

// Latency returns the filter group delay in input samples.
func (r *Resampler) Latency() float64 {
	return r.delay
}

// Process converts one block of input into a newly allocated slice.
func (r *Resampler) Process(input []float64) []float64 {
	return r.Append(nil, input)
}

// Append converts one block of input and appends the result to dst. Once
// dst and the internal work buffer have grown to their steady-state size
// it does not allocate.
func (r *Resampler) Append(dst, input []float64) []float64 {
	if len(input) == 0 {
		return dst
	}

	n := len(r.history) + len(input)
	if cap(r.work) < n {
		r.work = make([]float64, n)
	}
	work := r.work[:n]
	copy(work, r.history)
	copy(work[len(r.history):], input)

	baseIndex := r.totalIn - len(r.history)
	lastAvail := r.totalIn + len(input) - 1

	for r.inputIndex <= lastAvail {
		var y float64
		for k, c := range r.phases[r.phase] {
			idx := r.inputIndex - k
			if idx < baseIndex {
				break
			}
			if idx > lastAvail {
				continue
			}
			y += c * work[idx-baseIndex]
		}
		dst = append(dst, y)

		r.phase += r.down
		r.inputIndex += r.phase / r.up
		r.phase %= r.up
	}

	r.totalIn += len(input)

	keep := min(max(0, r.maxPhaseLn-1), len(work))
	r.history = append(r.history[:0], work[len(work)-keep:]...)

	return dst
}

// OutputLen returns how many samples the next Append of inputLen samples
// produces.
func (r *Resampler) OutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	lastAvail := r.totalIn + inputLen - 1
	i, phase := r.inputIndex, r.phase

	count := 0
	for i <= lastAvail {
		count++
		phase += r.down
		i += phase / r.up
		phase %= r.up
	}

	return count
}
