package webdemo

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-vocalcut/dsp/buffer"
	"github.com/cwbudde/algo-vocalcut/engine"
	"github.com/cwbudde/algo-vocalcut/export"
	"github.com/cwbudde/algo-vocalcut/internal/testutil"
	"github.com/cwbudde/algo-vocalcut/metadata"
	"github.com/cwbudde/algo-vocalcut/source"
	"github.com/sirupsen/logrus"
)

func newTestSession(t *testing.T, lookup metadata.Lookup) *Session {
	t.Helper()

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	s, err := NewSession(48000, lookup, log)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rms(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestNewSessionRejectsRate(t *testing.T) {
	if _, err := NewSession(0, nil, nil); err == nil {
		t.Fatal("zero sample rate accepted")
	}
}

func TestAttachGenerator(t *testing.T) {
	s := newTestSession(t, nil)

	tests := []GeneratorParams{
		{Kind: "sine", FreqHz: 440, Amplitude: 0.5},
		{Kind: "sweep", FreqHz: 100, EndHz: 8000, Amplitude: 0.5, Seconds: 1},
		{Kind: "noise", Amplitude: 0.2, Seed: 3, Layout: "antiphase"},
	}
	for _, p := range tests {
		if err := s.AttachGenerator(p); err != nil {
			t.Fatalf("%s: %v", p.Kind, err)
		}
		if s.Engine().Lifecycle() != engine.Active {
			t.Fatalf("%s: lifecycle %v", p.Kind, s.Engine().Lifecycle())
		}
	}

	if err := s.AttachGenerator(GeneratorParams{Kind: "square"}); err == nil {
		t.Fatal("unknown generator accepted")
	}
	if err := s.AttachGenerator(GeneratorParams{Kind: "sine", Layout: "surround"}); err == nil {
		t.Fatal("unknown layout accepted")
	}

	if err := s.Detach(); err != nil {
		t.Fatal(err)
	}
	if s.Engine().Lifecycle() != engine.Ready {
		t.Fatalf("after detach: %v", s.Engine().Lifecycle())
	}
}

func TestRenderRemovesCentre(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.AttachGenerator(GeneratorParams{Kind: "sine", FreqHz: 1000, Amplitude: 0.5}); err != nil {
		t.Fatal(err)
	}

	dry := make([]float32, 2*4800)
	s.Render(dry)

	s.Engine().SetVocalRemovalLevel(100)
	warm := make([]float32, 2*4800)
	s.Render(warm)
	wet := make([]float32, 2*4800)
	s.Render(wet)

	if r := rms(wet) / rms(dry); r < 0.2 || r > 0.8 {
		t.Fatalf("wet/dry RMS ratio %.3f", r)
	}
}

func TestAttachPCMResamples(t *testing.T) {
	s := newTestSession(t, nil)

	sig := testutil.DeterministicSine(500, 44100, 0.5, 4410)
	pcm := testutil.Interleave(sig, sig)
	if err := s.AttachPCM(pcm, 2, 44100); err != nil {
		t.Fatal(err)
	}

	out := make([]float32, 2*6000)
	s.Render(out)
	if !s.Engine().SourceDone() {
		t.Fatal("0.1 s of PCM not finished after 0.125 s")
	}
	if rms(out[:2*4000]) < 0.2 {
		t.Fatalf("output too quiet: %.3f", rms(out[:2*4000]))
	}

	if err := s.AttachPCM(pcm, 0, 44100); err == nil {
		t.Fatal("zero channels accepted")
	}
}

func TestAttachEncoded(t *testing.T) {
	s := newTestSession(t, nil)

	buf := buffer.NewStereo(480)
	copy(buf.L, testutil.DeterministicSine(1000, 48000, 0.5, 480))
	copy(buf.R, buf.L)

	var wav writeSeeker
	if err := export.EncodeWAV(&wav, buf, 48000); err != nil {
		t.Fatal(err)
	}
	if err := s.AttachEncoded(wav.buf, "take1.WAV"); err != nil {
		t.Fatal(err)
	}
	if err := s.AttachEncoded([]byte("x"), "take1.flac"); !errors.Is(err, source.ErrUnsupportedFormat) {
		t.Fatalf("flac err=%v", err)
	}
}

func TestApplyPresetAndSnapshot(t *testing.T) {
	s := newTestSession(t, nil)

	if err := s.ApplyPreset("Rock"); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap["vocalRemovalLevel"] != 85.0 {
		t.Fatalf("level %v", snap["vocalRemovalLevel"])
	}
	eq := snap["eq"].(map[string]any)
	if eq["bass"] != 3.0 || eq["mid"] != 1.0 || eq["treble"] != 2.0 {
		t.Fatalf("eq %v", eq)
	}
	if err := s.ApplyPreset("polka"); err == nil {
		t.Fatal("unknown preset accepted")
	}
}

func TestCurves(t *testing.T) {
	s := newTestSession(t, nil)
	freqs := []float64{0, 100, 1000, 10000, 30000}

	for i, v := range s.SpectrumCurveDB(freqs) {
		if v != floorDB {
			t.Fatalf("silent spectrum at %g Hz: %g", freqs[i], v)
		}
	}

	if err := s.AttachGenerator(GeneratorParams{Kind: "sine", FreqHz: 1000, Amplitude: 0.5}); err != nil {
		t.Fatal(err)
	}
	s.Render(make([]float32, 2*8192))
	curve := s.SpectrumCurveDB([]float64{1000, 10000})
	if curve[0] < curve[1]+30 {
		t.Fatalf("1 kHz %.1f dB not above 10 kHz %.1f dB", curve[0], curve[1])
	}

	flat := s.ResponseCurveDB(freqs)
	for i, v := range flat {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("flat EQ at %g Hz: %g dB", freqs[i], v)
		}
	}

	s.Engine().SetEQ(6, 0, 0)
	if got := s.ResponseCurveDB([]float64{30})[0]; got < 4 {
		t.Fatalf("bass boost at 30 Hz: %.2f dB", got)
	}
}

func TestCaptureFailed(t *testing.T) {
	s := newTestSession(t, nil)

	err := s.CaptureFailed("", "NotAllowedError", "Permission denied")
	var ce *source.CaptureError
	if !errors.As(err, &ce) || ce.Cause != source.CausePermissionDenied {
		t.Fatalf("err=%v", err)
	}
	err = s.CaptureFailed("usb", "NotFoundError", "")
	if !errors.As(err, &ce) || ce.Cause != source.CauseNoDevice || ce.Err != nil {
		t.Fatalf("err=%v", err)
	}
}

func TestIdentify(t *testing.T) {
	song := metadata.Song{Title: "T", Artist: "A", Lyrics: "la", DetectedLanguage: "en"}
	var gotMIME string
	s := newTestSession(t, metadata.LookupFunc(func(_ context.Context, _ []byte, mime string) (metadata.Song, error) {
		gotMIME = mime
		return song, nil
	}))

	if st := s.MetadataStatus()["status"]; st != "IDLE" {
		t.Fatalf("status %v", st)
	}
	if _, err := s.Identify(context.Background(), []byte{1}, "a.mp3"); err != nil {
		t.Fatal(err)
	}
	if gotMIME != "audio/mpeg" {
		t.Fatalf("mime %q", gotMIME)
	}
	st := s.MetadataStatus()
	if st["status"] != "SUCCESS" || st["song"].(map[string]any)["detectedLanguage"] != "en" {
		t.Fatalf("status %v", st)
	}

	s.ResetMetadata()
	if st := s.MetadataStatus()["status"]; st != "IDLE" {
		t.Fatalf("after reset %v", st)
	}
}

func TestIdentifyWithoutLookup(t *testing.T) {
	s := newTestSession(t, nil)
	if _, err := s.Identify(context.Background(), nil, "a.wav"); !errors.Is(err, metadata.ErrNotConfigured) {
		t.Fatalf("err=%v", err)
	}
	st := s.MetadataStatus()
	if st["status"] != "ERROR" || st["kind"] != metadata.KindAuth.String() {
		t.Fatalf("status %v", st)
	}
}

// writeSeeker is an in-memory io.WriteSeeker.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	if need := w.pos + len(p); need > len(w.buf) {
		w.buf = append(w.buf, make([]byte, need-len(w.buf))...)
	}
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
	return len(p), nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		w.pos = int(offset)
	case 1:
		w.pos += int(offset)
	case 2:
		w.pos = len(w.buf) + int(offset)
	}
	return int64(w.pos), nil
}
