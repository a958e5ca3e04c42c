// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. [Stereo] pairs two sections
// behind one coefficient set so both channels of a stereo stream share one
// design.
//
// Coefficient design lives in dsp/filter/design.
package biquad
