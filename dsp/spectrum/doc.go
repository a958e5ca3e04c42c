// Package spectrum provides the spectrum tap of the engine and single-bin
// tone measurement.
//
// [Analyzer] exposes the magnitude spectrum of the most recent output for
// display. [Goertzel] measures the level of one frequency and is used to
// quantify how much of a probe tone survives the vocal remover.
package spectrum
