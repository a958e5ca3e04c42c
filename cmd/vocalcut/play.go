package main

import (
	"context"
	"time"

	"github.com/cwbudde/algo-vocalcut/internal/config"
	"github.com/cwbudde/algo-vocalcut/playback"
	"github.com/sirupsen/logrus"
)

const pollInterval = 100 * time.Millisecond

// play renders path through the default audio device until the source and
// the device buffer are drained, or ctx is cancelled.
func play(ctx context.Context, cfg config.Config, log logrus.FieldLogger, path string) error {
	src, err := openInput(cfg, path)
	if err != nil {
		return err
	}

	backend := playback.New(
		playback.StopAtEnd(),
		playback.WithBufferSize(cfg.BufferSize),
		playback.WithLogger(log),
	)
	eng, err := newEngine(cfg, backend, log)
	if err != nil {
		_ = src.Close()
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.WithError(err).Warn("closing engine failed")
		}
	}()

	if err := eng.AttachSource(src); err != nil {
		_ = src.Close()
		return err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastReport time.Duration
	for {
		select {
		case <-ctx.Done():
			log.Info("playback interrupted")
			return nil
		case <-ticker.C:
		}

		pos := time.Duration(float64(eng.Clock()) / eng.SampleRate() * float64(time.Second))
		if pos-lastReport >= 10*time.Second {
			lastReport = pos
			log.WithField("position", pos.Truncate(time.Second)).Debug("playing")
		}

		if eng.SourceDone() && !backend.Playing() {
			return eng.Err()
		}
	}
}
