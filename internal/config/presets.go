package config

import (
	"fmt"
	"strings"
)

// Preset is a named combination of removal level and EQ.
type Preset struct {
	Name   string
	Level  float64
	Bass   float64
	Mid    float64
	Treble float64
}

var presets = []Preset{
	{Name: "karaoke", Level: 70, Bass: 1, Mid: -2, Treble: 1},
	{Name: "ballad", Level: 50, Bass: 2, Mid: 0, Treble: -1},
	{Name: "rock", Level: 85, Bass: 3, Mid: 1, Treble: 2},
	{Name: "acoustic", Level: 60, Bass: 0, Mid: 1, Treble: 2},
	{Name: "pop", Level: 75, Bass: 1, Mid: -1, Treble: 2},
	{Name: "jazz", Level: 55, Bass: 2, Mid: 1, Treble: 0},
}

// Presets returns the built-in presets.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// PresetNames lists the preset names in table order.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// LookupPreset finds a preset by case-insensitive name.
func LookupPreset(name string) (Preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ApplyPreset copies the named preset into c, skipping fields whose flag
// name is set in keep.
func (c *Config) ApplyPreset(name string, keep map[string]bool) error {
	p, ok := LookupPreset(name)
	if !ok {
		return fmt.Errorf("config: unknown preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	if !keep["level"] {
		c.Level = p.Level
	}
	if !keep["bass"] {
		c.Bass = p.Bass
	}
	if !keep["mid"] {
		c.Mid = p.Mid
	}
	if !keep["treble"] {
		c.Treble = p.Treble
	}
	c.Preset = p.Name
	return nil
}
