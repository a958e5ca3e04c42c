package core

import (
	"testing"
	"time"
)

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(44100), WithBlockSize(256), WithRampDuration(10*time.Millisecond))
	if cfg.SampleRate != 44100 {
		t.Fatalf("sample rate = %v, want 44100", cfg.SampleRate)
	}
	if cfg.BlockSize != 256 {
		t.Fatalf("block size = %d, want 256", cfg.BlockSize)
	}
	if cfg.RampDuration != 10*time.Millisecond {
		t.Fatalf("ramp = %v, want 10ms", cfg.RampDuration)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1), WithRampDuration(0), nil)
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestRampFrames(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProcessorConfig
		want int64
	}{
		{name: "50ms at 48k", cfg: ProcessorConfig{SampleRate: 48000, RampDuration: 50 * time.Millisecond}, want: 2400},
		{name: "50ms at 44.1k", cfg: ProcessorConfig{SampleRate: 44100, RampDuration: 50 * time.Millisecond}, want: 2205},
		{name: "sub-frame", cfg: ProcessorConfig{SampleRate: 1000, RampDuration: time.Microsecond}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.RampFrames(); got != tt.want {
				t.Fatalf("RampFrames() = %d, want %d", got, tt.want)
			}
		})
	}
}
