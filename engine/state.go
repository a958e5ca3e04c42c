package engine

import (
	"time"

	"github.com/cwbudde/algo-vocalcut/dsp/effects/dynamics"
	"github.com/cwbudde/algo-vocalcut/dsp/filter/eq"
)

// ControlState is the user-facing parameter set of an Engine. All values
// are stored clamped.
type ControlState struct {
	// VocalRemovalLevel is the removal intensity in percent, 0 (original)
	// to 100 (maximum removal).
	VocalRemovalLevel float64
	EQ                eq.Settings
	MasterVolume      float64
	NoiseGate         dynamics.GateSettings
}

// DefaultControlState is the state of a freshly constructed engine.
func DefaultControlState() ControlState {
	return ControlState{
		MasterVolume: 1,
		NoiseGate:    dynamics.GateSettings{ThresholdDB: dynamics.DefaultGateThresholdDB},
	}
}

// Snapshot is a timestamped copy of the control state.
type Snapshot struct {
	ControlState
	Timestamp time.Time
}

// Lifecycle is the engine state machine position.
type Lifecycle int

const (
	Uninitialized Lifecycle = iota
	Ready
	Active
	Closed
)

func (l Lifecycle) String() string {
	switch l {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
