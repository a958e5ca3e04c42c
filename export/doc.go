// Package export renders an engine offline and writes the result as 16-bit
// PCM WAV.
package export
