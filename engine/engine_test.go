package engine

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/cwbudde/algo-vocalcut/dsp/effects/dynamics"
	"github.com/cwbudde/algo-vocalcut/dsp/filter/eq"
	"github.com/cwbudde/algo-vocalcut/dsp/spectrum"
	"github.com/cwbudde/algo-vocalcut/internal/testutil"
	"github.com/sirupsen/logrus"
)

const testRate = 48000

type sliceSource struct {
	rate     int
	channels int
	samples  []float32
	pos      int
	err      error
	closed   int
}

func (s *sliceSource) SampleRate() int { return s.rate }
func (s *sliceSource) Channels() int   { return s.channels }

func (s *sliceSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.samples) {
		if s.err != nil {
			return 0, s.err
		}
		return 0, io.EOF
	}
	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	return n, nil
}

func (s *sliceSource) Close() error {
	s.closed++
	return nil
}

type stubBackend struct {
	startErr  error
	resumeErr error
	started   Renderer
	resumes   int
	closed    int
}

func (b *stubBackend) Start(r Renderer, _ int) error {
	if b.startErr != nil {
		return b.startErr
	}
	b.started = r
	return nil
}

func (b *stubBackend) Resume() error {
	b.resumes++
	return b.resumeErr
}

func (b *stubBackend) Close() error {
	b.closed++
	return nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	e, err := New(&Offline{}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func stereoSource(left, right []float64) *sliceSource {
	return &sliceSource{rate: testRate, channels: 2, samples: testutil.Interleave(left, right)}
}

func render(e *Engine, frames int) (left, right []float64) {
	left = make([]float64, frames)
	right = make([]float64, frames)
	e.RenderStereo(left, right)
	return left, right
}

func rms(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestNewDefaults(t *testing.T) {
	b := &stubBackend{}
	e, err := New(b, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if b.started != e {
		t.Fatal("backend was not started with the engine as renderer")
	}
	if got := e.Lifecycle(); got != Ready {
		t.Fatalf("lifecycle=%s want ready", got)
	}
	if got, want := e.State(), DefaultControlState(); got != want {
		t.Fatalf("state=%+v want %+v", got, want)
	}
	if e.SampleRate() != 48000 || e.BlockSize() != 512 {
		t.Fatalf("rate=%g block=%d", e.SampleRate(), e.BlockSize())
	}
	if got := e.FrequencyBinCount(); got != 1024 {
		t.Fatalf("bins=%d want 1024", got)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero rate", WithSampleRate(0)},
		{"nan rate", WithSampleRate(math.NaN())},
		{"rate below treble shelf", WithSampleRate(8000)},
		{"zero block", WithBlockSize(0)},
		{"bad fft size", WithFFTSize(1000)},
		{"zero ramp", WithRampDuration(0)},
		{"nil logger", WithLogger(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(&Offline{}, WithLogger(quietLogger()), tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewBackendFailure(t *testing.T) {
	boom := errors.New("no audio device")
	_, err := New(&stubBackend{startErr: boom}, WithLogger(quietLogger()))
	if !errors.Is(err, ErrBackendInit) || !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}

	if _, err := New(nil); !errors.Is(err, ErrBackendInit) {
		t.Fatalf("nil backend err=%v", err)
	}
}

func TestAttachSourceValidation(t *testing.T) {
	e := newTestEngine(t)

	err := e.AttachSource(&sliceSource{rate: 44100, channels: 2})
	if !errors.Is(err, ErrSampleRateMismatch) {
		t.Fatalf("rate mismatch err=%v", err)
	}
	err = e.AttachSource(&sliceSource{rate: testRate, channels: 0})
	if !errors.Is(err, ErrNoChannels) {
		t.Fatalf("no channels err=%v", err)
	}
	if got := e.Lifecycle(); got != Ready {
		t.Fatalf("failed attach changed lifecycle to %s", got)
	}
}

func TestAttachSourceReplacesAndReleases(t *testing.T) {
	e := newTestEngine(t)
	first := &sliceSource{rate: testRate, channels: 2}
	second := &sliceSource{rate: testRate, channels: 2}

	if err := e.AttachSource(first); err != nil {
		t.Fatal(err)
	}
	if got := e.Lifecycle(); got != Active {
		t.Fatalf("lifecycle=%s want active", got)
	}
	if err := e.AttachSource(first); err != nil {
		t.Fatal(err)
	}
	if first.closed != 0 {
		t.Fatal("re-attaching the same source must not release it")
	}

	if err := e.AttachSource(second); err != nil {
		t.Fatal(err)
	}
	if first.closed != 1 {
		t.Fatalf("previous source closed %d times, want 1", first.closed)
	}

	if err := e.AttachSource(nil); err != nil {
		t.Fatal(err)
	}
	if second.closed != 1 || e.Lifecycle() != Ready {
		t.Fatalf("detach: closed=%d lifecycle=%s", second.closed, e.Lifecycle())
	}
}

func TestLevelZeroIsDry(t *testing.T) {
	const frames = 9000
	left := testutil.DeterministicNoise(1, 0.5, frames)
	right := testutil.DeterministicNoise(2, 0.5, frames)
	src := stereoSource(left, right)

	e := newTestEngine(t)
	if err := e.AttachSource(src); err != nil {
		t.Fatal(err)
	}

	gotL, gotR := render(e, frames)
	wantL, wantR := testutil.Deinterleave(src.samples)
	for i := range frames {
		if gotL[i] != wantL[i] || gotR[i] != wantR[i] {
			t.Fatalf("frame %d: got (%g,%g) want (%g,%g)", i, gotL[i], gotR[i], wantL[i], wantR[i])
		}
	}
}

func TestLevelZeroAfterRampIsDry(t *testing.T) {
	const frames = 24000
	left := testutil.DeterministicNoise(3, 0.5, frames)
	right := testutil.DeterministicNoise(4, 0.5, frames)
	src := stereoSource(left, right)

	e := newTestEngine(t)
	if err := e.AttachSource(src); err != nil {
		t.Fatal(err)
	}
	e.SetVocalRemovalLevel(100)
	render(e, 4800)
	e.SetVocalRemovalLevel(0)
	render(e, 4800)

	// The 50 ms ramp is 2400 frames; the remainder must be untouched.
	gotL, gotR := render(e, frames-9600)
	wantL, wantR := testutil.Deinterleave(src.samples)
	for i := range gotL {
		j := 9600 + i
		if gotL[i] != wantL[j] || gotR[i] != wantR[j] {
			t.Fatalf("frame %d not dry after ramp", j)
		}
	}
}

func TestCenterSineAttenuation(t *testing.T) {
	const frames = 48000
	sine := testutil.DeterministicSine(1000, testRate, 0.5, frames)
	e := newTestEngine(t)
	if err := e.AttachSource(stereoSource(sine, sine)); err != nil {
		t.Fatal(err)
	}
	e.SetVocalRemovalLevel(100)

	gotL, gotR := render(e, frames)

	// Skip the ramp and the filter transients.
	const skip = 4800
	in := rms(sine[skip:])
	stereo := math.Sqrt((rms(gotL[skip:])*rms(gotL[skip:]) + rms(gotR[skip:])*rms(gotR[skip:])) / 2)
	ratio := stereo / in
	if ratio < 0.3 || ratio > 0.5 {
		t.Fatalf("stereo rms ratio=%.3f want 0.3..0.5", ratio)
	}

	// 43200 frames hold a whole number of 1 kHz cycles.
	amp, err := spectrum.ToneAmplitude(gotR[skip:], 1000, testRate)
	if err != nil {
		t.Fatal(err)
	}
	if r := amp / 0.5; r < 0.5 || r > 0.6 {
		t.Fatalf("right-channel tone ratio=%.3f want 0.5..0.6", r)
	}

	mono := make([]float64, frames-skip)
	for i := range mono {
		mono[i] = (gotL[skip+i] + gotR[skip+i]) / 2
	}
	fold := rms(mono) / in
	if fold <= 0.1 || fold >= 0.3 {
		t.Fatalf("mono fold ratio=%.3f want 0.1..0.3", fold)
	}
}

func TestLevelChangesRespectSlope(t *testing.T) {
	const frames = 48000
	dc := testutil.DC(1, frames)
	e := newTestEngine(t)
	if err := e.AttachSource(stereoSource(dc, dc)); err != nil {
		t.Fatal(err)
	}

	// Let the crossover settle while fully dry.
	render(e, 9600)

	rampFrames := 2400.0
	// Left output is dry + 0.35*wet for a settled DC input.
	maxStep := (1 + 0.35) / rampFrames
	prev := 1.0
	levels := []float64{100, 20, 90, 0, 60, 100, 10}
	for _, lvl := range levels {
		e.SetVocalRemovalLevel(lvl)
		l, _ := render(e, 600)
		for i, v := range l {
			if d := math.Abs(v - prev); d > maxStep+1e-9 {
				t.Fatalf("level %g frame %d: step %.3g exceeds %.3g", lvl, i, d, maxStep)
			}
			prev = v
		}
	}
}

func TestSetEQClamps(t *testing.T) {
	e := newTestEngine(t)
	e.SetEQ(20, -50, 100)

	want := eq.Settings{BassDB: 6, MidDB: -6, TrebleDB: 6}
	if got := e.State().EQ; got != want {
		t.Fatalf("eq=%+v want %+v", got, want)
	}
	if got := e.EQResponseDB(20); math.Abs(got-6) > 0.05 {
		t.Fatalf("20 Hz response=%.3f dB want ~6", got)
	}

	x := testutil.DeterministicNoise(9, 0.9, 4096)
	if err := e.AttachSource(stereoSource(x, x)); err != nil {
		t.Fatal(err)
	}
	e.SetVocalRemovalLevel(100)
	l, r := render(e, 4096)
	testutil.RequireFinite(t, l)
	testutil.RequireFinite(t, r)
}

func TestSetVolume(t *testing.T) {
	const frames = 1024
	x := testutil.DeterministicNoise(5, 0.5, frames)
	src := stereoSource(x, x)
	e := newTestEngine(t)
	if err := e.AttachSource(src); err != nil {
		t.Fatal(err)
	}

	e.SetVolume(0.5)
	l, r := render(e, 512)
	wantL, wantR := testutil.Deinterleave(src.samples)
	for i := range l {
		if l[i] != 0.5*wantL[i] {
			t.Fatalf("left frame %d: got %g want %g", i, l[i], 0.5*wantL[i])
		}
		if r[i] != 0.5*wantR[i] {
			t.Fatalf("right frame %d: got %g want %g", i, r[i], 0.5*wantR[i])
		}
	}

	e.SetVolume(-3)
	if got := e.State().MasterVolume; got != 0 {
		t.Fatalf("volume=%g want 0", got)
	}
	l, _ = render(e, 512)
	for i, v := range l {
		if v != 0 {
			t.Fatalf("frame %d: %g with zero volume", i, v)
		}
	}
}

func TestRenderClampsAndInterleaves(t *testing.T) {
	const frames = 256
	src := stereoSource(testutil.DC(0.5, frames), testutil.DC(-0.25, frames))
	e := newTestEngine(t)
	if err := e.AttachSource(src); err != nil {
		t.Fatal(err)
	}
	e.SetVolume(4)

	dst := make([]float32, 2*frames+1)
	dst[len(dst)-1] = 7
	e.Render(dst)
	for i := 0; i < frames; i++ {
		if dst[2*i] != 1 || dst[2*i+1] != -1 {
			t.Fatalf("frame %d: (%g,%g) want (1,-1)", i, dst[2*i], dst[2*i+1])
		}
	}
	if dst[len(dst)-1] != 0 {
		t.Fatal("odd trailing sample not cleared")
	}
}

func TestSourceEndOfStream(t *testing.T) {
	x := testutil.DeterministicNoise(6, 0.5, 100)
	src := stereoSource(x, x)
	e := newTestEngine(t)
	if err := e.AttachSource(src); err != nil {
		t.Fatal(err)
	}

	l, r := render(e, 512)
	for i := range 100 {
		if l[i] != float64(float32(x[i])) {
			t.Fatalf("frame %d not passed through", i)
		}
	}
	for i := 100; i < 512; i++ {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("frame %d not silent after end of stream", i)
		}
	}
	if !e.SourceDone() || e.Err() != nil {
		t.Fatalf("done=%v err=%v", e.SourceDone(), e.Err())
	}
}

func TestSourceErrorIsLatched(t *testing.T) {
	boom := errors.New("decode failed")
	src := &sliceSource{rate: testRate, channels: 2, err: boom}
	e := newTestEngine(t)
	if err := e.AttachSource(src); err != nil {
		t.Fatal(err)
	}

	l, _ := render(e, 256)
	for i, v := range l {
		if v != 0 {
			t.Fatalf("frame %d: %g want silence", i, v)
		}
	}
	if !errors.Is(e.Err(), boom) || !e.SourceDone() {
		t.Fatalf("err=%v done=%v", e.Err(), e.SourceDone())
	}
}

func TestChannelMapping(t *testing.T) {
	x := testutil.DeterministicNoise(7, 0.5, 64)
	mono := make([]float32, len(x))
	quad := make([]float32, 4*len(x))
	for i, v := range x {
		mono[i] = float32(v)
		quad[4*i] = float32(v)
		quad[4*i+1] = float32(-v)
		quad[4*i+2] = 0.9
		quad[4*i+3] = -0.9
	}

	tests := []struct {
		name   string
		src    *sliceSource
		rightF func(float64) float64
	}{
		{"mono upmix", &sliceSource{rate: testRate, channels: 1, samples: mono}, func(v float64) float64 { return v }},
		{"first two of four", &sliceSource{rate: testRate, channels: 4, samples: quad}, func(v float64) float64 { return -v }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			if err := e.AttachSource(tt.src); err != nil {
				t.Fatal(err)
			}
			l, r := render(e, len(x))
			for i, v := range x {
				want := float64(float32(v))
				if l[i] != want || r[i] != tt.rightF(want) {
					t.Fatalf("frame %d: (%g,%g)", i, l[i], r[i])
				}
			}
		})
	}
}

func TestNoiseGate(t *testing.T) {
	const frames = 24000
	x := testutil.DeterministicNoise(8, 0.001, frames)
	e := newTestEngine(t)
	if err := e.AttachSource(stereoSource(x, x)); err != nil {
		t.Fatal(err)
	}

	e.SetNoiseGate(true, -100)
	want := dynamics.GateSettings{Enabled: true, ThresholdDB: dynamics.MinGateThresholdDB}
	if got := e.State().NoiseGate; got != want {
		t.Fatalf("gate=%+v want %+v", got, want)
	}

	e.SetNoiseGate(true, -20)
	l, _ := render(e, frames)
	tail := l[frames/2:]
	if ratio := rms(tail) / rms(x[frames/2:]); ratio > 0.1 {
		t.Fatalf("gated rms ratio=%.3f want < 0.1", ratio)
	}
}

func TestSpectrumTap(t *testing.T) {
	const frames = 8192
	sine := testutil.DeterministicSine(1500, testRate, 0.5, frames)
	e := newTestEngine(t)
	if err := e.AttachSource(stereoSource(sine, sine)); err != nil {
		t.Fatal(err)
	}
	render(e, frames)

	bins := make([]float64, e.FrequencyBinCount())
	if n := e.FloatFrequencyData(bins); n != len(bins) {
		t.Fatalf("wrote %d bins", n)
	}
	peak := 0
	for i, v := range bins {
		if v > bins[peak] {
			peak = i
		}
	}
	binHz := testRate / 2048.0
	if got := float64(peak) * binHz; math.Abs(got-1500) > binHz {
		t.Fatalf("peak at %.1f Hz want ~1500", got)
	}

	bytes := make([]byte, e.FrequencyBinCount())
	e.ByteFrequencyData(bytes)
	if bytes[peak] == 0 {
		t.Fatal("peak bin reads zero in byte data")
	}
}

func TestToggleAndSnapshot(t *testing.T) {
	e := newTestEngine(t)
	e.ToggleVocalRemover(true)
	s := e.Snapshot()
	if s.VocalRemovalLevel != 100 || s.Timestamp.IsZero() {
		t.Fatalf("snapshot=%+v", s)
	}
	e.ToggleVocalRemover(false)
	if got := e.State().VocalRemovalLevel; got != 0 {
		t.Fatalf("level=%g want 0", got)
	}
	e.SetVocalRemovalLevel(250)
	if got := e.State().VocalRemovalLevel; got != 100 {
		t.Fatalf("level=%g want 100", got)
	}
}

func TestResume(t *testing.T) {
	b := &stubBackend{resumeErr: errors.New("suspended")}
	e, err := New(b, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if err := e.Resume(); !errors.Is(err, ErrResumeFailed) {
		t.Fatalf("err=%v want ErrResumeFailed", err)
	}
	b.resumeErr = nil
	if err := e.Resume(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if b.resumes != 2 {
		t.Fatalf("resumes=%d want 2", b.resumes)
	}
}

func TestClose(t *testing.T) {
	b := &stubBackend{}
	e, err := New(b, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	x := testutil.DC(0.5, 512)
	src := stereoSource(x, x)
	if err := e.AttachSource(src); err != nil {
		t.Fatal(err)
	}

	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if src.closed != 1 || b.closed != 1 {
		t.Fatalf("source closed=%d backend closed=%d", src.closed, b.closed)
	}
	if err := e.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second close err=%v", err)
	}
	if err := e.AttachSource(src); !errors.Is(err, ErrClosed) {
		t.Fatalf("attach err=%v", err)
	}
	if err := e.Resume(); !errors.Is(err, ErrClosed) {
		t.Fatalf("resume err=%v", err)
	}

	before := e.State()
	e.SetVolume(0.1)
	if e.State() != before {
		t.Fatal("setter changed state after close")
	}

	l, _ := render(e, 128)
	for i, v := range l {
		if v != 0 {
			t.Fatalf("frame %d: %g after close", i, v)
		}
	}
}
