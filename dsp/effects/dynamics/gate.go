package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vocalcut/dsp/automation"
	"github.com/cwbudde/algo-vocalcut/dsp/core"
)

const (
	DefaultGateThresholdDB = -40.0
	MinGateThresholdDB     = -80.0
	MaxGateThresholdDB     = -20.0

	defaultGateRatio     = 10.0
	defaultGateKneeDB    = 6.0
	defaultGateAttackMs  = 0.1
	defaultGateHoldMs    = 50.0
	defaultGateReleaseMs = 100.0
	defaultGateRangeDB   = -80.0

	// log2(10) / 20, converts dB to the log2 domain.
	log2Of10Div20 = 0.166096404744
)

// GateSettings is the user-facing gate configuration.
type GateSettings struct {
	Enabled     bool
	ThresholdDB float64
}

// Clamped returns s with the threshold limited to
// [MinGateThresholdDB, MaxGateThresholdDB]. NaN maps to the default.
func (s GateSettings) Clamped() GateSettings {
	if math.IsNaN(s.ThresholdDB) {
		s.ThresholdDB = DefaultGateThresholdDB
	}
	s.ThresholdDB = core.Clamp(s.ThresholdDB, MinGateThresholdDB, MaxGateThresholdDB)
	return s
}

// Gate is a stereo-linked soft-knee noise gate with hold.
//
// Both channels share one peak envelope taken from max(|L|, |R|), so the
// stereo image does not shift while the gate moves. Below the threshold the
// signal is expanded downwards at a 10:1 ratio over a 6 dB knee, never by
// more than 80 dB.
//
// The gate starts disabled; a disabled gate passes audio through untouched.
// Configure may be called from one control goroutine while ProcessStereo
// runs on the render goroutine; changes apply at the next block.
type Gate struct {
	sampleRate float64

	requests automation.Mailbox[GateSettings]
	seen     uint64

	enabled     bool
	thresholdDB float64

	peakLevel   float64
	holdCounter int

	attackCoeff      float64
	releaseCoeff     float64
	thresholdLog2    float64
	kneeWidthLog2    float64
	invKneeWidthLog2 float64
	ratio            float64
	rangeLin         float64
	holdSamples      int
}

// NewGate creates a disabled gate at the default threshold.
func NewGate(sampleRate float64) (*Gate, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("gate sample rate must be positive and finite: %f", sampleRate)
	}

	g := &Gate{
		sampleRate:  sampleRate,
		thresholdDB: DefaultGateThresholdDB,
		ratio:       defaultGateRatio,
	}

	g.kneeWidthLog2 = defaultGateKneeDB * log2Of10Div20
	g.invKneeWidthLog2 = 1 / g.kneeWidthLog2
	g.rangeLin = core.DBToLinear(defaultGateRangeDB)
	g.attackCoeff = 1 - math.Exp(-math.Ln2/(defaultGateAttackMs*0.001*sampleRate))
	g.releaseCoeff = math.Exp(-math.Ln2 / (defaultGateReleaseMs * 0.001 * sampleRate))
	g.holdSamples = int(defaultGateHoldMs * 0.001 * sampleRate)
	g.thresholdLog2 = g.thresholdDB * log2Of10Div20

	return g, nil
}

// Configure requests new settings and returns them clamped.
func (g *Gate) Configure(s GateSettings) GateSettings {
	s = s.Clamped()
	g.requests.Post(s)
	return s
}

// Settings returns the most recently requested settings.
func (g *Gate) Settings() GateSettings {
	if s, ok := g.requests.Peek(); ok {
		return s
	}
	return GateSettings{ThresholdDB: DefaultGateThresholdDB}
}

// ProcessStereo gates left and right in place.
func (g *Gate) ProcessStereo(left, right []float64) {
	if s, seq, ok := g.requests.Poll(g.seen); ok {
		g.seen = seq
		g.apply(s)
	}

	if !g.enabled {
		return
	}

	n := min(len(left), len(right))
	for i := range n {
		gain := g.nextGain(math.Max(math.Abs(left[i]), math.Abs(right[i])))
		left[i] *= gain
		right[i] *= gain
	}
}

func (g *Gate) apply(s GateSettings) {
	if s.Enabled && !g.enabled {
		// Start closed-but-holding so enabling never cuts a running note.
		g.peakLevel = 0
		g.holdCounter = g.holdSamples
	}
	g.enabled = s.Enabled
	g.thresholdDB = s.ThresholdDB
	g.thresholdLog2 = s.ThresholdDB * log2Of10Div20
}

// nextGain advances the envelope and hold state by one sample.
func (g *Gate) nextGain(level float64) float64 {
	if level > g.peakLevel {
		g.peakLevel += (level - g.peakLevel) * g.attackCoeff
	} else {
		g.peakLevel = level + (g.peakLevel-level)*g.releaseCoeff
	}

	gain := g.calculateGain(g.peakLevel)

	if gain >= 1.0 {
		g.holdCounter = g.holdSamples
	} else if g.holdCounter > 0 {
		g.holdCounter--
		gain = 1.0
	}

	return gain
}

// CalculateOutputLevel returns the static-curve output level for an input
// magnitude, ignoring envelope and hold.
func (g *Gate) CalculateOutputLevel(inputMagnitude float64) float64 {
	inputMagnitude = math.Abs(inputMagnitude)
	return inputMagnitude * g.calculateGain(inputMagnitude)
}

// Reset clears the envelope and hold state.
func (g *Gate) Reset() {
	g.peakLevel = 0
	g.holdCounter = 0
}

// calculateGain computes the expansion gain with a quadratic soft knee on
// the undershoot side of the threshold.
func (g *Gate) calculateGain(peakLevel float64) float64 {
	if peakLevel <= 0 {
		return g.rangeLin
	}

	undershoot := g.thresholdLog2 - mathLog2(peakLevel)
	halfWidth := g.kneeWidthLog2 * 0.5

	var effective float64

	switch {
	case undershoot < -halfWidth:
		return 1.0
	case undershoot > halfWidth:
		effective = undershoot
	default:
		scratch := undershoot + halfWidth
		effective = scratch * scratch * 0.5 * g.invKneeWidthLog2
	}

	gain := mathPower2(-effective * (g.ratio - 1.0))
	if gain < g.rangeLin {
		return g.rangeLin
	}

	return gain
}
