package core

import "time"

// ProcessorConfig holds the settings shared by every stage of the engine.
type ProcessorConfig struct {
	SampleRate   float64
	BlockSize    int
	RampDuration time.Duration
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the defaults used for both real-time and
// offline rendering.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:   48000,
		BlockSize:    512,
		RampDuration: 50 * time.Millisecond,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the maximum number of frames processed per block.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithRampDuration sets the length of click-free parameter transitions.
func WithRampDuration(d time.Duration) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if d > 0 {
			cfg.RampDuration = d
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// RampFrames converts the configured ramp duration to a whole number of
// frames, never less than one.
func (c ProcessorConfig) RampFrames() int64 {
	n := int64(c.RampDuration.Seconds()*c.SampleRate + 0.5)
	if n < 1 {
		return 1
	}
	return n
}
