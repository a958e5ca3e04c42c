// Package spatial provides the stereo stages of the vocal remover.
//
// Included processors:
//   - BandCanceller: per-band center cancellation (scaled left, inverted right).
//   - Recombiner: band summation with the fixed width reduction.
package spatial
