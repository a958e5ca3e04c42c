package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupportedFormat reports input that no registered decoder accepts.
var ErrUnsupportedFormat = errors.New("source: unsupported format")

// Source is a stream of interleaved float32 samples.
type Source interface {
	// SampleRate of the stream in Hz.
	SampleRate() int
	// Channels per frame (1 = mono, 2 = stereo, ...).
	Channels() int
	// ReadSamples fills dst with whole frames and returns the number of
	// float32 values written. It returns io.EOF once the stream is finished.
	ReadSamples(dst []float32) (int, error)
	// Close releases underlying resources.
	Close() error
}

// Decoder builds a Source from encoded input.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(r io.Reader) (Source, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(r io.Reader) (Source, error) { return f(r) }

// Registry maps file extensions to decoders.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Decoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// Register binds d to each extension. Extensions are case-insensitive and
// may be given with or without the leading dot.
func (r *Registry) Register(d Decoder, exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range exts {
		r.codecs[normalizeExt(ext)] = d
	}
}

// Lookup returns the decoder registered for ext.
func (r *Registry) Lookup(ext string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[normalizeExt(ext)]
	return d, ok
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Open decodes the file at path with the decoder registered for its
// extension. Closing the returned Source closes the file.
func (r *Registry) Open(path string) (Source, error) {
	ext := filepath.Ext(path)
	d, ok := r.Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	src, err := d.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("source: decode %s: %w", filepath.Base(path), err)
	}

	return &fileSource{Source: src, file: f}, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// fileSource closes the decoder and then the file it reads from.
type fileSource struct {
	Source
	file *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.file.Close())
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register(WAVDecoder{}, "wav", "wave")
	r.Register(MP3Decoder{}, "mp3")
	r.Register(VorbisDecoder{}, "ogg", "oga")
	return r
}()

// DefaultRegistry returns the registry used by Open, preloaded with the
// WAV, MP3 and Ogg Vorbis decoders.
func DefaultRegistry() *Registry { return defaultRegistry }

// Open decodes path using the default registry.
func Open(path string) (Source, error) { return defaultRegistry.Open(path) }
