// Package dither requantizes float samples to integer PCM with optional
// dither noise and error-feedback noise shaping.
package dither

import (
	"fmt"
	"strings"
)

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// None quantizes without noise.
	None Type = iota
	// Rectangular adds uniform noise one LSB wide.
	Rectangular
	// Triangular adds TPDF noise, the usual choice for mastering.
	Triangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rpdf", "tpdf"}

func (t Type) String() string {
	if t >= 0 && t < typeCount {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool { return t >= 0 && t < typeCount }

// ParseType accepts the names printed by String.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range typeNames {
		if s == name {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("dither: unknown type %q", s)
}
