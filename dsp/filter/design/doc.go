// Package design provides RBJ-cookbook biquad coefficient designers.
//
// The functions produce coefficients consumable by dsp/filter/biquad. The
// crossover bank uses Lowpass and Highpass; the output EQ uses the shelves
// and Peak.
package design
