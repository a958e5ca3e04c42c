package automation

import "math"

// Event is one ramp request. StartFrame is the audio-clock frame at which
// the control call was made.
type Event struct {
	Target     float64
	StartFrame int64
	RampFrames int64
	Seq        uint64
}

// Param is a linearly ramped value owned by the render goroutine.
//
// A ramp starts from the current value, even mid-ramp, and aims to finish
// RampFrames after the event's StartFrame. The step per sample never exceeds
// span/RampFrames: if the event is observed late the ramp is stretched
// rather than steepened. When the ramp finishes the value is exactly the
// target.
type Param struct {
	value  float64
	target float64
	step   float64
	left   int64
	span   float64
}

// NewParam returns a Param resting at initial. span is the full-scale range
// of the value and bounds the ramp slope; non-positive spans mean 1.
func NewParam(initial, span float64) Param {
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		span = 1
	}
	return Param{value: initial, target: initial, span: span}
}

// Apply starts a ramp towards ev.Target. now is the audio-clock frame of
// the next sample Param will produce.
func (p *Param) Apply(ev Event, now int64) {
	p.target = ev.Target

	delta := ev.Target - p.value
	if delta == 0 {
		p.left = 0
		p.step = 0
		return
	}

	frames := max(ev.RampFrames, 1)
	left := ev.StartFrame + frames - now
	minLeft := int64(math.Ceil(math.Abs(delta) / p.span * float64(frames)))
	left = max(left, minLeft, 1)

	p.left = left
	p.step = delta / float64(left)
}

// Set jumps to v without a ramp.
func (p *Param) Set(v float64) {
	p.value = v
	p.target = v
	p.left = 0
	p.step = 0
}

// Next returns the value for the next sample and advances the ramp.
func (p *Param) Next() float64 {
	if p.left == 0 {
		return p.value
	}

	p.left--
	if p.left == 0 {
		p.value = p.target
	} else {
		p.value += p.step
	}

	return p.value
}

// Fill writes the per-sample values for the next len(dst) samples.
func (p *Param) Fill(dst []float64) {
	if p.left == 0 {
		for i := range dst {
			dst[i] = p.value
		}
		return
	}

	for i := range dst {
		dst[i] = p.Next()
	}
}

// Value returns the most recently produced value.
func (p *Param) Value() float64 { return p.value }

// Target returns the value the ramp is heading to.
func (p *Param) Target() float64 { return p.target }

// Ramping reports whether a ramp is still in progress.
func (p *Param) Ramping() bool { return p.left > 0 }
