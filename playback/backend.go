package playback

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cwbudde/algo-vocalcut/engine"
	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

// ErrNotStarted reports a call that needs a running player.
var ErrNotStarted = errors.New("playback: not started")

// device is the part of an oto context the backend uses.
type device interface {
	NewPlayer(r io.Reader) player
	Resume() error
	Err() error
}

type player interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

type otoDevice struct{ ctx *oto.Context }

func (d otoDevice) NewPlayer(r io.Reader) player { return d.ctx.NewPlayer(r) }
func (d otoDevice) Resume() error                { return d.ctx.Resume() }
func (d otoDevice) Err() error                   { return d.ctx.Err() }

var (
	contextOnce sync.Once
	contextDev  device
	contextRate int
	contextErr  error
)

// sharedDevice creates the process-wide oto context. oto supports a single
// context, so later calls must ask for the same rate.
func sharedDevice(sampleRate int, bufferSize time.Duration) (device, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   bufferSize,
		})
		if err != nil {
			contextErr = err
			return
		}
		<-ready
		contextDev = otoDevice{ctx: ctx}
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if contextRate != sampleRate {
		return nil, fmt.Errorf("playback: audio device already opened at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return contextDev, nil
}

// Option configures a Backend.
type Option func(*Backend)

// WithBufferSize sets the device buffer length. Zero keeps the driver
// default.
func WithBufferSize(d time.Duration) Option {
	return func(b *Backend) {
		if d >= 0 {
			b.bufferSize = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// StopAtEnd makes the stream end when the engine's source is exhausted.
func StopAtEnd() Option {
	return func(b *Backend) { b.stopOnEnd = true }
}

// Backend is an engine.Backend that plays through oto.
type Backend struct {
	bufferSize time.Duration
	log        logrus.FieldLogger
	stopOnEnd  bool
	open       func(sampleRate int, bufferSize time.Duration) (device, error)

	mu     sync.Mutex
	dev    device
	player player
}

var _ engine.Backend = (*Backend)(nil)

// New returns an unstarted backend; engine.New starts it.
func New(opts ...Option) *Backend {
	b := &Backend{
		bufferSize: 100 * time.Millisecond,
		log:        logrus.StandardLogger(),
		open:       sharedDevice,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Start opens the device and starts pulling from r.
func (b *Backend) Start(r engine.Renderer, sampleRate int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.player != nil {
		return errors.New("playback: already started")
	}
	dev, err := b.open(sampleRate, b.bufferSize)
	if err != nil {
		return fmt.Errorf("playback: open device: %w", err)
	}

	b.dev = dev
	b.player = dev.NewPlayer(NewStreamReader(r, b.stopOnEnd))
	b.player.Play()

	b.log.WithFields(logrus.Fields{
		"sample_rate": sampleRate,
		"buffer":      b.bufferSize,
	}).Info("audio device started")

	return nil
}

// Resume resumes a suspended device and restarts the player.
func (b *Backend) Resume() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.player == nil {
		return ErrNotStarted
	}
	if err := b.dev.Err(); err != nil {
		return fmt.Errorf("playback: device: %w", err)
	}
	if err := b.dev.Resume(); err != nil {
		return fmt.Errorf("playback: resume: %w", err)
	}
	if !b.player.IsPlaying() {
		b.player.Play()
	}
	return nil
}

// Playing reports whether the player is still pulling audio.
func (b *Backend) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.player != nil && b.player.IsPlaying()
}

// Close stops and releases the player. The shared device stays open for
// the lifetime of the process.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.player == nil {
		return nil
	}
	b.player.Pause()
	err := b.player.Close()
	b.player = nil
	b.log.Debug("audio device stopped")
	if err != nil {
		return fmt.Errorf("playback: close: %w", err)
	}
	return nil
}
