// Package webdemo backs the browser demo: it owns an engine driven by the
// page's audio callback and turns UI parameters into engine calls.
package webdemo

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cwbudde/algo-vocalcut/dsp/resample"
	"github.com/cwbudde/algo-vocalcut/engine"
	"github.com/cwbudde/algo-vocalcut/internal/config"
	"github.com/cwbudde/algo-vocalcut/metadata"
	"github.com/cwbudde/algo-vocalcut/source"
	"github.com/sirupsen/logrus"
)

const (
	generatorSine  = "sine"
	generatorSweep = "sweep"
	generatorNoise = "noise"
)

// GeneratorParams selects a test signal for AttachGenerator.
type GeneratorParams struct {
	Kind      string  // sine, sweep or noise
	FreqHz    float64 // sine frequency or sweep start
	EndHz     float64 // sweep end
	Amplitude float64
	Seconds   float64 // 0 loops forever for sine and noise
	Layout    string  // center, antiphase or left
	Seed      int64
}

// Session is one browser page's processing state. The page pulls audio with
// Render from its audio callback and calls the setters from UI events.
type Session struct {
	eng     *engine.Engine
	backend *engine.Offline
	log     logrus.FieldLogger
	tracker *metadata.Tracker

	bins []float64
}

// NewSession builds an engine at sampleRate. lookup may be nil, in which case
// song identification reports metadata.ErrNotConfigured.
func NewSession(sampleRate float64, lookup metadata.Lookup, log logrus.FieldLogger) (*Session, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	backend := &engine.Offline{}
	eng, err := engine.New(backend,
		engine.WithSampleRate(sampleRate),
		engine.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	return &Session{
		eng:     eng,
		backend: backend,
		log:     log,
		tracker: metadata.NewTracker(lookup, log),
		bins:    make([]float64, eng.FrequencyBinCount()),
	}, nil
}

// Engine exposes the underlying engine for direct parameter calls.
func (s *Session) Engine() *engine.Engine { return s.eng }

func (s *Session) rate() int { return int(math.Round(s.eng.SampleRate())) }

// AttachGenerator replaces the source with a synthetic signal.
func (s *Session) AttachGenerator(p GeneratorParams) error {
	layout, err := source.ParseLayout(p.Layout)
	if err != nil {
		return err
	}
	d := time.Duration(p.Seconds * float64(time.Second))

	var g *source.Generator
	switch strings.ToLower(p.Kind) {
	case generatorSine, "":
		g, err = source.NewSineGenerator(s.rate(), p.FreqHz, p.Amplitude, d, layout)
	case generatorSweep:
		g, err = source.NewSweepGenerator(s.rate(), p.FreqHz, p.EndHz, p.Amplitude, d, layout)
	case generatorNoise:
		g, err = source.NewNoiseGenerator(s.rate(), p.Amplitude, p.Seed, d, layout)
	default:
		return fmt.Errorf("webdemo: unknown generator %q", p.Kind)
	}
	if err != nil {
		return err
	}
	return s.eng.AttachSource(g)
}

// AttachPCM plays interleaved samples the page already decoded, converting
// them to the session rate.
func (s *Session) AttachPCM(samples []float32, channels, sampleRate int) error {
	src, err := newPCMSource(samples, channels, sampleRate)
	if err != nil {
		return err
	}
	return s.attachResampled(src)
}

// AttachEncoded decodes a WAV, MP3 or Ogg Vorbis file picked by the user.
// name is only used for its extension.
func (s *Session) AttachEncoded(data []byte, name string) error {
	ext := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		ext = name[i:]
	}
	dec, ok := source.DefaultRegistry().Lookup(ext)
	if !ok {
		return fmt.Errorf("%w: %q", source.ErrUnsupportedFormat, ext)
	}
	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return s.attachResampled(src)
}

func (s *Session) attachResampled(src source.Source) error {
	out, err := source.Resampled(src, s.rate(), resample.QualityBalanced)
	if err != nil {
		_ = src.Close()
		return err
	}
	if err := s.eng.AttachSource(out); err != nil {
		_ = out.Close()
		return err
	}
	return nil
}

// Detach removes the current source; the output falls silent.
func (s *Session) Detach() error { return s.eng.AttachSource(nil) }

// ApplyPreset sets the removal level and EQ of a named preset.
func (s *Session) ApplyPreset(name string) error {
	p, ok := config.LookupPreset(name)
	if !ok {
		return fmt.Errorf("webdemo: unknown preset %q", name)
	}
	s.eng.SetVocalRemovalLevel(p.Level)
	s.eng.SetEQ(p.Bass, p.Mid, p.Treble)
	return nil
}

// Resume marks the page's audio context as running.
func (s *Session) Resume() error { return s.eng.Resume() }

// Running reports whether Resume has succeeded since the session started.
func (s *Session) Running() bool { return s.backend.Running() }

// Render fills dst with interleaved stereo output.
func (s *Session) Render(dst []float32) { s.eng.Render(dst) }

// CaptureFailed turns a getUserMedia rejection into a classified error
// and logs it. name is the DOMException name.
func (s *Session) CaptureFailed(device, name, message string) error {
	var cause error
	if message != "" {
		cause = errors.New(message)
	}
	err := &source.CaptureError{Cause: source.CauseFromName(name), Device: device, Err: cause}
	s.log.WithError(err).WithField("cause", err.Cause.String()).Warn("microphone unavailable")
	return err
}

// Snapshot returns the control state in the shape the page stores.
func (s *Session) Snapshot() map[string]any {
	snap := s.eng.Snapshot()
	return map[string]any{
		"vocalRemovalLevel": snap.VocalRemovalLevel,
		"eq": map[string]any{
			"bass":   snap.EQ.BassDB,
			"mid":    snap.EQ.MidDB,
			"treble": snap.EQ.TrebleDB,
		},
		"volume": snap.MasterVolume,
		"noiseGate": map[string]any{
			"enabled":   snap.NoiseGate.Enabled,
			"threshold": snap.NoiseGate.ThresholdDB,
		},
		"timestamp": snap.Timestamp.UnixMilli(),
	}
}

// Close releases the engine.
func (s *Session) Close() error { return s.eng.Close() }
