package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-vocalcut/dsp/core"
	"github.com/cwbudde/algo-vocalcut/dsp/spectrum"
	"github.com/sirupsen/logrus"
)

// Option configures an Engine.
type Option func(*options) error

type options struct {
	proc    core.ProcessorConfig
	fftSize int
	logger  logrus.FieldLogger
}

func defaultOptions() options {
	return options{
		proc:    core.DefaultProcessorConfig(),
		fftSize: spectrum.DefaultFFTSize,
		logger:  logrus.StandardLogger(),
	}
}

// WithSampleRate sets the processing rate in Hz. Attached sources must
// deliver audio at this rate.
func WithSampleRate(sampleRate float64) Option {
	return func(o *options) error {
		if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
			return fmt.Errorf("engine: sample rate must be > 0 and finite: %f", sampleRate)
		}
		o.proc.SampleRate = sampleRate
		return nil
	}
}

// WithBlockSize sets the largest block processed in one pass. Longer render
// requests are split.
func WithBlockSize(frames int) Option {
	return func(o *options) error {
		if frames <= 0 {
			return fmt.Errorf("engine: block size must be > 0: %d", frames)
		}
		o.proc.BlockSize = frames
		return nil
	}
}

// WithRampDuration overrides the 50 ms dry/wet transition time.
func WithRampDuration(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("engine: ramp duration must be > 0: %s", d)
		}
		o.proc.RampDuration = d
		return nil
	}
}

// WithFFTSize sets the spectrum tap FFT length.
func WithFFTSize(n int) Option {
	return func(o *options) error {
		o.fftSize = n
		return nil
	}
}

// WithLogger routes control-path log output. The render path never logs.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("engine: logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}
