// Package crossover provides the fixed three-band filter bank that feeds the
// per-band center cancellers.
//
// Example:
//
//	bank, _ := crossover.NewThreeBand(48000)
//	low, mid, high := bank.ProcessSample(x)
package crossover
