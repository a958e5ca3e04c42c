package main

import (
	"github.com/cwbudde/algo-vocalcut/dsp/buffer"
	"github.com/cwbudde/algo-vocalcut/dsp/core"
	"github.com/cwbudde/algo-vocalcut/measure/loudness"
	"github.com/cwbudde/algo-vocalcut/source"
	timestats "github.com/cwbudde/algo-vocalcut/stats/time"
)

// scratch holds the per-read deinterleave buffers of every job.
var scratch = buffer.NewPool()

// levels is the measurement of one side of the processor.
type levels struct {
	meter *loudness.Meter
	left  timestats.Stream
	right timestats.Stream
}

func newLevels(sampleRate float64) (*levels, error) {
	m, err := loudness.NewMeter(sampleRate)
	if err != nil {
		return nil, err
	}
	return &levels{meter: m}, nil
}

func (l *levels) process(left, right []float64) {
	l.meter.Process(left, right)
	l.left.Update(left)
	l.right.Update(right)
}

// summary is what ends up in the report.
type summary struct {
	LUFS    float64
	PeakDB  float64
	Clipped int
}

func (l *levels) summary() summary {
	sl, sr := l.left.Result(), l.right.Result()
	return summary{
		LUFS:    l.meter.Integrated(),
		PeakDB:  max(sl.Peak_dB, sr.Peak_dB),
		Clipped: sl.Clipped + sr.Clipped,
	}
}

// meteredSource measures everything the engine reads from src, after the
// same mono and multichannel folding the engine applies.
type meteredSource struct {
	source.Source
	lv *levels
}

func (m *meteredSource) ReadSamples(dst []float32) (int, error) {
	n, err := m.Source.ReadSamples(dst)
	ch := m.Channels()
	if n > 0 && ch > 0 {
		frames := n / ch
		st := scratch.Get(frames)
		got := core.Deinterleave(st.L, st.R, dst[:frames*ch], ch)
		m.lv.process(st.L[:got], st.R[:got])
		scratch.Put(st)
	}
	return n, err
}
