// Package engine wires the vocal-removal processing graph.
//
// An Engine owns a fixed block pipeline:
//
//	source -> dry path
//	       -> 3-band crossover -> per-band center canceller -> recombiner (x0.7) -> wet path
//	dry/wet crossfader -> master volume -> tone control -> noise gate -> spectrum tap -> output
//
// Control methods (SetVocalRemovalLevel, SetEQ, SetVolume, SetNoiseGate,
// AttachSource) may be called from any single control goroutine while a
// backend or an offline renderer pulls audio through Render or RenderStereo
// on the render goroutine. The two sides only communicate through atomics
// and mailbox cells; the render path does not allocate after construction
// and never waits on a lock.
package engine
