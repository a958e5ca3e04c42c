package engine

import (
	"errors"
	"io"
	"math"

	"github.com/cwbudde/algo-vocalcut/dsp/core"
)

// Render fills dst with interleaved stereo output clamped to [-1, 1]. It is
// the real-time entry point used by backends. A trailing odd sample is
// zeroed.
func (e *Engine) Render(dst []float32) {
	frames := len(dst) / 2
	for off := 0; off < frames; {
		n := min(frames-off, e.blockSize)
		e.renderBlock(n)
		core.InterleaveClamped(dst[2*off:2*(off+n)], e.out.L[:n], e.out.R[:n])
		off += n
	}
	if len(dst)%2 == 1 {
		dst[len(dst)-1] = 0
	}
}

// RenderStereo fills left and right with unclamped output. It is the offline
// entry point; min(len(left), len(right)) frames are rendered.
func (e *Engine) RenderStereo(left, right []float64) {
	frames := min(len(left), len(right))
	for off := 0; off < frames; {
		n := min(frames-off, e.blockSize)
		e.renderBlock(n)
		copy(left[off:off+n], e.out.L[:n])
		copy(right[off:off+n], e.out.R[:n])
		off += n
	}
}

// renderBlock runs n <= blockSize frames through the graph into e.out.
func (e *Engine) renderBlock(n int) {
	out := e.out.Slice(0, n)
	if e.closed.Load() {
		out.Zero()
		return
	}

	start := e.clock.Load()
	in := e.in.Slice(0, n)
	e.readInput(in.L, in.R)

	for i := range e.bands {
		e.views[i] = e.bands[i].Slice(0, n)
	}
	low, mid, high := e.views[0], e.views[1], e.views[2]
	e.bankL.ProcessBlock(in.L, low.L, mid.L, high.L)
	e.bankR.ProcessBlock(in.R, low.R, mid.R, high.R)
	for i, c := range e.cancellers {
		c.ProcessBlock(e.views[i].L, e.views[i].R)
	}

	wet := e.wet.Slice(0, n)
	e.recombiner.SumBlock(wet.L, wet.R, e.views[:]...)

	e.mixer.Process(out.L, out.R, in, wet, start)

	if v := math.Float64frombits(e.volume.Load()); v != 1 {
		for i := range out.L {
			out.L[i] *= v
			out.R[i] *= v
		}
	}

	e.tone.ProcessBlock(out.L, out.R)
	e.gate.ProcessStereo(out.L, out.R)
	e.analyzer.Write(out.L, out.R)

	e.clock.Add(int64(n))
}

// readInput fills left and right from the attached source, padding with
// silence. It never blocks: if the control side is retiring the source the
// block is silent.
func (e *Engine) readInput(left, right []float64) {
	s := e.slot.Load()
	if s == nil || s.finished.Load() || !s.mu.TryLock() {
		core.Zero(left)
		core.Zero(right)
		return
	}
	defer s.mu.Unlock()

	got := 0
	if !s.retired {
		got = s.read(left, right)
	}
	core.Zero(left[got:])
	core.Zero(right[got:])
}

// read pulls whole frames until the block is full, the source stalls or it
// fails. It returns the number of frames written.
func (s *sourceSlot) read(left, right []float64) int {
	n := len(left)
	got := 0
	for got < n {
		want := (n - got) * s.channels
		cnt, err := s.src.ReadSamples(s.raw[:want])
		cnt = max(0, min(cnt, want))
		cnt -= cnt % s.channels
		got += core.Deinterleave(left[got:], right[got:], s.raw[:cnt], s.channels)

		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			s.finished.Store(true)
			break
		}
		if cnt == 0 {
			break
		}
	}
	return got
}
