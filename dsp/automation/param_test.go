package automation

import (
	"math"
	"testing"
)

func TestParamRampEndsExactlyOnTarget(t *testing.T) {
	p := NewParam(1, 1)
	p.Apply(Event{Target: 0.3, StartFrame: 0, RampFrames: 2400}, 0)

	buf := make([]float64, 2400)
	p.Fill(buf)

	if buf[len(buf)-1] != 0.3 {
		t.Fatalf("final value = %.17g, want exactly 0.3", buf[len(buf)-1])
	}
	if p.Ramping() {
		t.Fatal("still ramping after RampFrames samples")
	}
	if got := p.Next(); got != 0.3 {
		t.Fatalf("value after ramp = %g", got)
	}
}

func TestParamSlopeBounded(t *testing.T) {
	const ramp = 480
	p := NewParam(0, 1)
	prev := p.Value()

	// Retarget every 37 samples, late and early, between the extremes.
	targets := []float64{1, 0, 0.5, 1, 0, 1}
	now := int64(0)
	for _, target := range targets {
		p.Apply(Event{Target: target, StartFrame: now - 100, RampFrames: ramp}, now)
		for range 37 {
			v := p.Next()
			if math.Abs(v-prev) > 1.0/ramp+1e-12 {
				t.Fatalf("frame %d: step %g exceeds %g", now, math.Abs(v-prev), 1.0/ramp)
			}
			prev = v
			now++
		}
	}
}

func TestParamAnchoredAtStartFrame(t *testing.T) {
	// A half-scale move observed 100 frames late still finishes on time
	// because the remaining slope stays under the bound.
	p := NewParam(0, 1)
	p.Apply(Event{Target: 0.5, StartFrame: 0, RampFrames: 1000}, 100)

	buf := make([]float64, 900)
	p.Fill(buf)
	if buf[899] != 0.5 || p.Ramping() {
		t.Fatalf("ramp not finished at StartFrame+RampFrames: v=%g ramping=%v", buf[899], p.Ramping())
	}
}

func TestParamLateFullScaleStretches(t *testing.T) {
	p := NewParam(0, 1)
	p.Apply(Event{Target: 1, StartFrame: 0, RampFrames: 100}, 50)

	buf := make([]float64, 99)
	p.Fill(buf)
	if !p.Ramping() {
		t.Fatal("full-scale ramp compressed below RampFrames")
	}
	if p.Next() != 1 {
		t.Fatal("ramp did not land on target")
	}
}

func TestParamRetargetMidRampStartsFromCurrent(t *testing.T) {
	p := NewParam(0, 1)
	p.Apply(Event{Target: 1, RampFrames: 100}, 0)
	for range 50 {
		p.Next()
	}
	mid := p.Value()

	p.Apply(Event{Target: 0, StartFrame: 50, RampFrames: 100}, 50)
	if first := p.Next(); first >= mid || mid-first > 0.01+1e-12 {
		t.Fatalf("retarget jumped: mid=%g first=%g", mid, first)
	}
}

func TestParamSetAndNoOpApply(t *testing.T) {
	p := NewParam(0.2, 0)
	p.Set(0.7)
	p.Apply(Event{Target: 0.7, RampFrames: 10}, 0)
	if p.Ramping() || p.Value() != 0.7 || p.Target() != 0.7 {
		t.Fatalf("unexpected state: v=%g target=%g ramping=%v", p.Value(), p.Target(), p.Ramping())
	}
}
