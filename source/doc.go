// Package source acquires audio for the engine: file decoders selected by
// extension (WAV, MP3, Ogg Vorbis), synthetic generators, sample-rate
// adaptation and classification of capture-device failures.
//
// Every Source yields interleaved float32 samples in [-1, 1] and satisfies
// engine.Source.
package source
