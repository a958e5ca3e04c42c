package main

import (
	"fmt"

	"github.com/cwbudde/algo-vocalcut/dsp/resample"
	"github.com/cwbudde/algo-vocalcut/engine"
	"github.com/cwbudde/algo-vocalcut/internal/config"
	"github.com/cwbudde/algo-vocalcut/source"
	"github.com/sirupsen/logrus"
)

// newEngine builds an engine on backend and applies the processing
// settings from cfg.
func newEngine(cfg config.Config, backend engine.Backend, log logrus.FieldLogger) (*engine.Engine, error) {
	eng, err := engine.New(backend,
		engine.WithSampleRate(float64(cfg.SampleRate)),
		engine.WithBlockSize(cfg.BlockSize),
		engine.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	eng.SetVocalRemovalLevel(cfg.Level)
	eng.SetEQ(cfg.Bass, cfg.Mid, cfg.Treble)
	eng.SetVolume(cfg.Volume)
	eng.SetNoiseGate(cfg.Gate, cfg.GateThreshold)

	return eng, nil
}

// openInput decodes path and converts it to the processing rate.
func openInput(cfg config.Config, path string) (source.Source, error) {
	src, err := source.Open(path)
	if err != nil {
		return nil, err
	}

	q, ok := resample.ParseQuality(cfg.Resample)
	if !ok {
		_ = src.Close()
		return nil, fmt.Errorf("unknown resample quality %q", cfg.Resample)
	}
	out, err := source.Resampled(src, cfg.SampleRate, q)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return out, nil
}
