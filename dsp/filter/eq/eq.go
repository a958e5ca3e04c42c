// Package eq provides the three-band output tone control: a low shelf, a
// peaking band and a high shelf in series.
package eq

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vocalcut/dsp/automation"
	"github.com/cwbudde/algo-vocalcut/dsp/core"
	"github.com/cwbudde/algo-vocalcut/dsp/filter/biquad"
	"github.com/cwbudde/algo-vocalcut/dsp/filter/design"
)

const (
	BassFreqHz   = 200.0
	MidFreqHz    = 1000.0
	MidQ         = 1.0
	TrebleFreqHz = 5000.0

	// MaxGainDB bounds every band gain to [-MaxGainDB, +MaxGainDB].
	MaxGainDB = 6.0
)

// Settings holds the band gains in dB.
type Settings struct {
	BassDB   float64
	MidDB    float64
	TrebleDB float64
}

// ClampGain limits a band gain to [-MaxGainDB, +MaxGainDB]. NaN maps to 0 dB.
func ClampGain(db float64) float64 {
	if math.IsNaN(db) {
		return 0
	}
	return core.Clamp(db, -MaxGainDB, MaxGainDB)
}

// Clamped returns s with every gain clamped.
func (s Settings) Clamped() Settings {
	return Settings{
		BassDB:   ClampGain(s.BassDB),
		MidDB:    ClampGain(s.MidDB),
		TrebleDB: ClampGain(s.TrebleDB),
	}
}

// Flat reports whether every band is at 0 dB.
func (s Settings) Flat() bool {
	return s.BassDB == 0 && s.MidDB == 0 && s.TrebleDB == 0
}

// Design returns the low, mid and high section coefficients for s at the
// given sample rate. A band at 0 dB is an exact passthrough.
func Design(s Settings, sampleRate float64) [3]biquad.Coefficients {
	s = s.Clamped()

	var c [3]biquad.Coefficients
	c[0] = bandOrPassthrough(s.BassDB, func() biquad.Coefficients {
		return design.LowShelf(BassFreqHz, s.BassDB, design.ShelfQ, sampleRate)
	})
	c[1] = bandOrPassthrough(s.MidDB, func() biquad.Coefficients {
		return design.Peak(MidFreqHz, s.MidDB, MidQ, sampleRate)
	})
	c[2] = bandOrPassthrough(s.TrebleDB, func() biquad.Coefficients {
		return design.HighShelf(TrebleFreqHz, s.TrebleDB, design.ShelfQ, sampleRate)
	})

	return c
}

func bandOrPassthrough(gainDB float64, build func() biquad.Coefficients) biquad.Coefficients {
	if gainDB == 0 {
		return biquad.Passthrough
	}
	return build()
}

// ToneControl applies the three EQ bands to a stereo signal.
//
// Set may be called from one control goroutine while ProcessBlock runs on
// the render goroutine; new settings take effect at the start of the next
// block. Coefficient changes keep the filter state. ProcessBlock is
// real-time safe and does not allocate.
type ToneControl struct {
	sr float64

	requests automation.Mailbox[Settings]
	seen     uint64

	stages [3]biquad.Stereo
}

// New creates a flat tone control.
func New(sampleRate float64) (*ToneControl, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("eq: sample rate must be > 0 and finite: %f", sampleRate)
	}
	if sampleRate/2 <= TrebleFreqHz {
		return nil, fmt.Errorf("eq: sample rate %f too low for %g Hz shelf", sampleRate, TrebleFreqHz)
	}

	t := &ToneControl{sr: sampleRate}
	for i := range t.stages {
		t.stages[i].SetCoefficients(biquad.Passthrough)
	}

	return t, nil
}

// Set requests new band gains and returns them clamped.
func (t *ToneControl) Set(s Settings) Settings {
	s = s.Clamped()
	t.requests.Post(s)
	return s
}

// Settings returns the most recently requested gains.
func (t *ToneControl) Settings() Settings {
	s, _ := t.requests.Peek()
	return s
}

// ProcessBlock filters left and right in place through low, mid and high.
func (t *ToneControl) ProcessBlock(left, right []float64) {
	if s, seq, ok := t.requests.Poll(t.seen); ok {
		t.seen = seq
		coeffs := Design(s, t.sr)
		for i := range t.stages {
			t.stages[i].SetCoefficients(coeffs[i])
		}
	}

	for i := range t.stages {
		t.stages[i].ProcessBlock(left, right)
	}
}

// Reset clears the filter state of all bands.
func (t *ToneControl) Reset() {
	for i := range t.stages {
		t.stages[i].Reset()
	}
}

// Response returns the complex response of the cascade for the given
// settings at freqHz. It does not touch the running filters.
func Response(s Settings, freqHz, sampleRate float64) complex128 {
	h := complex(1, 0)
	for _, c := range Design(s, sampleRate) {
		h *= c.Response(freqHz, sampleRate)
	}
	return h
}

// MagnitudeDB returns the cascade magnitude in dB for the given settings.
func MagnitudeDB(s Settings, freqHz, sampleRate float64) float64 {
	c := Design(s, sampleRate)
	var db float64
	for i := range c {
		db += c[i].MagnitudeDB(freqHz, sampleRate)
	}
	return db
}
