package engine

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-vocalcut/dsp/buffer"
	"github.com/cwbudde/algo-vocalcut/dsp/core"
	"github.com/cwbudde/algo-vocalcut/dsp/effects/dynamics"
	"github.com/cwbudde/algo-vocalcut/dsp/effects/spatial"
	"github.com/cwbudde/algo-vocalcut/dsp/filter/crossover"
	"github.com/cwbudde/algo-vocalcut/dsp/filter/eq"
	"github.com/cwbudde/algo-vocalcut/dsp/mix"
	"github.com/cwbudde/algo-vocalcut/dsp/spectrum"
	"github.com/sirupsen/logrus"
)

// sourceSlot wraps an attached source. The render side holds mu (via
// TryLock) while reading; the control side takes it to retire the slot, so
// a source is never closed during a read.
type sourceSlot struct {
	src      Source
	channels int
	raw      []float32

	mu      sync.Mutex
	retired bool

	finished atomic.Bool
	err      error // written by the render side before finished is set
}

// Engine is the vocal-removal processor. Create it with New and release it
// with Close.
type Engine struct {
	sr         float64
	blockSize  int
	rampFrames int64
	log        logrus.FieldLogger
	backend    Backend

	// Control side.
	mu        sync.Mutex
	state     ControlState
	lifecycle Lifecycle
	current   *sourceSlot

	// Shared.
	clock  atomic.Int64
	slot   atomic.Pointer[sourceSlot]
	volume atomic.Uint64
	closed atomic.Bool

	// Render side.
	bankL, bankR *crossover.ThreeBand
	cancellers   [3]*spatial.BandCanceller
	recombiner   spatial.Recombiner
	mixer        *mix.Crossfader
	tone         *eq.ToneControl
	gate         *dynamics.Gate
	analyzer     *spectrum.Analyzer

	in, wet, out buffer.Stereo
	bands        [3]buffer.Stereo
	views        [3]buffer.Stereo
}

// New builds the processing graph and starts the backend. The engine starts
// in the Ready state with no source, fully dry output, flat EQ, unity volume
// and the noise gate disabled.
func New(backend Backend, opts ...Option) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrBackendInit)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	sr := o.proc.SampleRate
	block := o.proc.BlockSize

	e := &Engine{
		sr:         sr,
		blockSize:  block,
		rampFrames: o.proc.RampFrames(),
		log:        o.logger,
		backend:    backend,
		state:      DefaultControlState(),
		in:         buffer.NewStereo(block),
		wet:        buffer.NewStereo(block),
		out:        buffer.NewStereo(block),
	}
	e.volume.Store(math.Float64bits(1))

	var err error
	if e.bankL, err = crossover.NewThreeBand(sr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.bankR, err = crossover.NewThreeBand(sr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	for i, band := range crossover.Bands {
		if e.cancellers[i], err = spatial.NewBandCanceller(band.RetainGain); err != nil {
			return nil, fmt.Errorf("engine: %s band: %w", band.Name, err)
		}
		e.bands[i] = buffer.NewStereo(block)
	}
	if e.mixer, err = mix.NewCrossfader(e.rampFrames, block); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.tone, err = eq.New(sr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.gate, err = dynamics.NewGate(sr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.analyzer, err = spectrum.NewAnalyzer(spectrum.WithFFTSize(o.fftSize)); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	if err := backend.Start(e, int(math.Round(sr))); err != nil {
		e.log.WithError(err).Error("audio backend failed to start")
		return nil, fmt.Errorf("%w: %w", ErrBackendInit, err)
	}

	e.lifecycle = Ready
	e.log.WithFields(logrus.Fields{
		"sample_rate": sr,
		"block_size":  block,
		"ramp_frames": e.rampFrames,
	}).Debug("engine ready")

	return e, nil
}

// SampleRate returns the processing rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sr }

// BlockSize returns the largest block processed in one pass.
func (e *Engine) BlockSize() int { return e.blockSize }

// Clock returns the number of frames rendered so far.
func (e *Engine) Clock() int64 { return e.clock.Load() }

// Lifecycle returns the current state machine position.
func (e *Engine) Lifecycle() Lifecycle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lifecycle
}

// AttachSource routes src into the graph, replacing and releasing any
// previous source. Attaching the current source again is a no-op and a nil
// src detaches. Filter state and pending automation survive the swap.
func (e *Engine) AttachSource(src Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == Closed {
		return ErrClosed
	}

	var slot *sourceSlot
	if src != nil {
		if e.current != nil && sameSource(e.current.src, src) {
			return nil
		}

		ch := src.Channels()
		if ch <= 0 {
			return fmt.Errorf("%w: %d", ErrNoChannels, ch)
		}
		if float64(src.SampleRate()) != e.sr {
			return fmt.Errorf("%w: source %d Hz, engine %g Hz", ErrSampleRateMismatch, src.SampleRate(), e.sr)
		}

		slot = &sourceSlot{
			src:      src,
			channels: ch,
			raw:      make([]float32, e.blockSize*ch),
		}
	}

	e.slot.Store(nil)
	if e.current != nil {
		e.retire(e.current)
	}
	e.current = slot
	e.slot.Store(slot)

	if slot == nil {
		e.lifecycle = Ready
		e.log.Debug("source detached")
		return nil
	}

	e.lifecycle = Active
	e.log.WithFields(logrus.Fields{
		"channels":    slot.channels,
		"sample_rate": src.SampleRate(),
	}).Info("source attached")

	return nil
}

// retire waits for an in-flight read to finish, then closes the source.
func (e *Engine) retire(s *sourceSlot) {
	s.mu.Lock()
	s.retired = true
	s.mu.Unlock()

	if c, ok := s.src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			e.log.WithError(err).Warn("closing source failed")
			return
		}
	}
	e.log.Debug("source released")
}

func sameSource(a, b Source) bool {
	ta := reflect.TypeOf(a)
	return ta == reflect.TypeOf(b) && ta.Comparable() && a == b
}

// SourceDone reports whether the attached source will produce no more
// audio, either because it reached its end or because reading it failed.
// It is false when no source is attached.
func (e *Engine) SourceDone() bool {
	s := e.slot.Load()
	return s != nil && s.finished.Load()
}

// Err returns the error that stopped the attached source, if any. End of
// stream is not an error.
func (e *Engine) Err() error {
	s := e.slot.Load()
	if s == nil || !s.finished.Load() {
		return nil
	}
	return s.err
}

// SetVocalRemovalLevel sets the removal intensity in percent. Values are
// clamped to [0, 100]; the dry and wet gains ramp to 1-level and level over
// the configured ramp time starting at the current audio clock.
func (e *Engine) SetVocalRemovalLevel(intensity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == Closed {
		return
	}
	level := e.mixer.SetLevel(mix.LevelFromIntensity(intensity), e.clock.Load())
	e.state.VocalRemovalLevel = level * 100
}

// ToggleVocalRemover switches between full removal and the original signal.
func (e *Engine) ToggleVocalRemover(on bool) {
	if on {
		e.SetVocalRemovalLevel(100)
		return
	}
	e.SetVocalRemovalLevel(0)
}

// SetEQ sets the bass, mid and treble gains in dB, each clamped to
// [-6, 6]. The new response applies from the next rendered block.
func (e *Engine) SetEQ(bass, mid, treble float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == Closed {
		return
	}
	e.state.EQ = e.tone.Set(eq.Settings{BassDB: bass, MidDB: mid, TrebleDB: treble})
}

// SetVolume sets the linear master volume. Negative and NaN values become 0.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == Closed {
		return
	}
	v = core.Clamp(v, 0, math.MaxFloat64)
	e.volume.Store(math.Float64bits(v))
	e.state.MasterVolume = v
}

// SetNoiseGate enables or disables the output gate. The threshold is
// clamped to [-80, -20] dBFS.
func (e *Engine) SetNoiseGate(enabled bool, thresholdDB float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == Closed {
		return
	}
	e.state.NoiseGate = e.gate.Configure(dynamics.GateSettings{Enabled: enabled, ThresholdDB: thresholdDB})
}

// Resume asks the backend to restart a suspended device. A failure leaves
// the engine usable; the call may be retried.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == Closed {
		return ErrClosed
	}
	if err := e.backend.Resume(); err != nil {
		e.log.WithError(err).Warn("audio backend did not resume")
		return fmt.Errorf("%w: %w", ErrResumeFailed, err)
	}
	return nil
}

// State returns the current control parameters.
func (e *Engine) State() ControlState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns the control parameters stamped with the current time.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{ControlState: e.State(), Timestamp: time.Now()}
}

// EQResponseDB returns the magnitude of the current tone control at freqHz.
func (e *Engine) EQResponseDB(freqHz float64) float64 {
	return eq.MagnitudeDB(e.State().EQ, freqHz, e.sr)
}

// FrequencyBinCount returns the number of spectrum bins.
func (e *Engine) FrequencyBinCount() int { return e.analyzer.FrequencyBinCount() }

// FloatFrequencyData writes the smoothed output spectrum in dB into dst and
// returns the number of bins written.
func (e *Engine) FloatFrequencyData(dst []float64) int {
	return e.analyzer.FloatFrequencyData(dst)
}

// ByteFrequencyData writes the output spectrum scaled to 0..255 into dst and
// returns the number of bins written.
func (e *Engine) ByteFrequencyData(dst []byte) int {
	return e.analyzer.ByteFrequencyData(dst)
}

// Close releases the source and the backend. Rendering after Close yields
// silence.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == Closed {
		return ErrClosed
	}
	e.lifecycle = Closed
	e.closed.Store(true)

	e.slot.Store(nil)
	if e.current != nil {
		e.retire(e.current)
		e.current = nil
	}

	if err := e.backend.Close(); err != nil {
		return fmt.Errorf("engine: close backend: %w", err)
	}
	e.log.Debug("engine closed")

	return nil
}
