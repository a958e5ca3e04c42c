package engine

import "sync/atomic"

// Source delivers interleaved float32 samples at a fixed rate.
//
// ReadSamples fills dst with whole frames and returns the number of samples
// (not frames) written. It returns io.EOF once the stream is exhausted.
// Implementations that also satisfy io.Closer are closed when they are
// replaced or the engine is closed.
type Source interface {
	SampleRate() int
	Channels() int
	ReadSamples(dst []float32) (int, error)
}

// Renderer is the pull side a Backend drives. Render fills dst with
// interleaved stereo samples in [-1, 1].
type Renderer interface {
	Render(dst []float32)
}

// Backend is the audio destination. Start is called once from New; Resume
// restarts a suspended device and must be a no-op when already running.
type Backend interface {
	Start(r Renderer, sampleRate int) error
	Resume() error
	Close() error
}

// Offline is a Backend that never pulls audio. Use it when rendering is
// driven by the caller, as in file export and tests.
type Offline struct {
	running atomic.Bool
}

// Start implements Backend.
func (o *Offline) Start(Renderer, int) error { return nil }

// Resume implements Backend.
func (o *Offline) Resume() error {
	o.running.Store(true)
	return nil
}

// Running reports whether Resume has been called.
func (o *Offline) Running() bool { return o.running.Load() }

// Close implements Backend.
func (o *Offline) Close() error {
	o.running.Store(false)
	return nil
}
