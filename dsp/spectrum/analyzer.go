package spectrum

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-vocalcut/dsp/window"
)

const (
	DefaultFFTSize   = 2048
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0

	// floorDB is reported for bins with zero energy.
	floorDB = -math.MaxFloat64
)

// AnalyzerOption mutates analyzer construction parameters.
type AnalyzerOption func(*analyzerConfig) error

type analyzerConfig struct {
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64
}

func defaultAnalyzerConfig() analyzerConfig {
	return analyzerConfig{
		fftSize:   DefaultFFTSize,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
	}
}

// WithFFTSize sets the analysis frame length, a power of two in [32, 32768].
func WithFFTSize(n int) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if n < 32 || n > 32768 || n&(n-1) != 0 {
			return fmt.Errorf("analyzer fft size must be a power of two in [32, 32768]: %d", n)
		}
		cfg.fftSize = n
		return nil
	}
}

// WithSmoothing sets the time constant in [0, 1) used to average successive
// magnitude frames.
func WithSmoothing(tau float64) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if tau < 0 || tau >= 1 || math.IsNaN(tau) {
			return fmt.Errorf("analyzer smoothing must be in [0, 1): %f", tau)
		}
		cfg.smoothing = tau
		return nil
	}
}

// WithDecibelRange sets the dB range mapped onto 0..255 by ByteFrequencyData.
func WithDecibelRange(minDB, maxDB float64) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if !(minDB < maxDB) || math.IsInf(minDB, 0) || math.IsInf(maxDB, 0) {
			return fmt.Errorf("analyzer decibel range must satisfy min < max: [%f, %f]", minDB, maxDB)
		}
		cfg.minDB = minDB
		cfg.maxDB = maxDB
		return nil
	}
}

// Analyzer is a tap that exposes the spectrum of the most recent audio.
//
// The render goroutine calls Write with every processed block. Any other
// goroutine may call the data methods; they window the latest FFTSize
// samples with a Blackman window, transform them and smooth the magnitudes
// against the previous call:
//
//	X[k] = tau*X_prev[k] + (1-tau)*|FFT[k]|/N
//
// Write never blocks and never allocates. Samples are stored individually as
// atomics, so a frame read while Write is running may mix two blocks.
type Analyzer struct {
	cfg analyzerConfig

	ring    []atomic.Uint64
	written atomic.Int64

	mu       sync.Mutex
	plan     *algofft.Plan[complex128]
	window   []float64
	frame    []float64
	in, out  []complex128
	re, im   []float64
	mag      []float64
	smoothed []float64
}

// NewAnalyzer creates an analyzer with Web-Audio-like defaults: 2048 point
// frames, smoothing 0.8 and a [-100, -30] dB byte range.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	cfg := defaultAnalyzerConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	plan, err := algofft.NewPlan64(cfg.fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer init fft plan: %w", err)
	}

	n := cfg.fftSize
	bins := n / 2

	return &Analyzer{
		cfg:      cfg,
		ring:     make([]atomic.Uint64, n),
		plan:     plan,
		window:   window.Generate(window.TypeBlackman, n, window.WithPeriodic()),
		frame:    make([]float64, n),
		in:       make([]complex128, n),
		out:      make([]complex128, n),
		re:       make([]float64, bins),
		im:       make([]float64, bins),
		mag:      make([]float64, bins),
		smoothed: make([]float64, bins),
	}, nil
}

// FFTSize returns the analysis frame length.
func (a *Analyzer) FFTSize() int { return a.cfg.fftSize }

// FrequencyBinCount returns the number of bins, half the FFT size.
func (a *Analyzer) FrequencyBinCount() int { return a.cfg.fftSize / 2 }

// DecibelRange returns the range used by ByteFrequencyData.
func (a *Analyzer) DecibelRange() (minDB, maxDB float64) { return a.cfg.minDB, a.cfg.maxDB }

// Write appends the mono downmix (L+R)/2 of a stereo block. right may be nil
// for mono input.
func (a *Analyzer) Write(left, right []float64) {
	n := int64(len(a.ring))
	pos := a.written.Load()

	for i, l := range left {
		x := l
		if right != nil {
			x = 0.5 * (l + right[i])
		}
		a.ring[(pos+int64(i))%n].Store(math.Float64bits(x))
	}

	a.written.Store(pos + int64(len(left)))
}

// TimeDomainData copies the most recent min(len(dst), FFTSize) samples,
// oldest first, and returns the number copied.
func (a *Analyzer) TimeDomainData(dst []float64) int {
	n := min(len(dst), len(a.ring))
	a.snapshot(dst[:n])
	return n
}

func (a *Analyzer) snapshot(dst []float64) {
	size := int64(len(a.ring))
	end := a.written.Load()
	start := end - int64(len(dst))

	for i := range dst {
		idx := start + int64(i)
		if idx < 0 {
			dst[i] = 0
			continue
		}
		dst[i] = math.Float64frombits(a.ring[idx%size].Load())
	}
}

// FloatFrequencyData writes the smoothed spectrum in dB into dst and
// returns the number of bins written. Bins without energy report
// -math.MaxFloat64.
func (a *Analyzer) FloatFrequencyData(dst []float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.analyze()

	n := min(len(dst), len(a.smoothed))
	for k := range n {
		dst[k] = toDB(a.smoothed[k])
	}
	return n
}

// ByteFrequencyData writes the smoothed spectrum scaled from the configured
// dB range onto 0..255 and returns the number of bins written.
func (a *Analyzer) ByteFrequencyData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.analyze()

	scale := 255 / (a.cfg.maxDB - a.cfg.minDB)
	n := min(len(dst), len(a.smoothed))
	for k := range n {
		v := math.Floor(scale * (toDB(a.smoothed[k]) - a.cfg.minDB))
		switch {
		case v < 0:
			dst[k] = 0
		case v > 255:
			dst[k] = 255
		default:
			dst[k] = byte(v)
		}
	}
	return n
}

// Reset clears the sample history and the smoothing state.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.ring {
		a.ring[i].Store(0)
	}
	a.written.Store(0)
	clear(a.smoothed)
}

// analyze must be called with mu held.
func (a *Analyzer) analyze() {
	a.snapshot(a.frame)

	if err := window.ApplyCoefficientsInPlace(a.frame, a.window); err != nil {
		return
	}
	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}
	MagnitudeFromParts(a.mag, a.re, a.im)

	tau := a.cfg.smoothing
	norm := 1 / float64(len(a.frame))
	for k, m := range a.mag {
		v := tau*a.smoothed[k] + (1-tau)*m*norm
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v
	}
}

func toDB(v float64) float64 {
	if v <= 0 {
		return floorDB
	}
	return 20 * math.Log10(v)
}
