package employee

import (
	"errors"
	"strings"
)

var ErrUnknownScale = errors.New("employee: unknown rating scale")

// Scale is the input convention for satisfaction and evaluation ratings.
type Scale string

const (
	// ScaleTen is the slider convention: whole numbers 1..10, divided by 10 before sending.
	ScaleTen Scale = "1-10"
	// ScaleUnit is the raw model convention: fractions 0..1, sent unchanged.
	ScaleUnit Scale = "0-1"
)

func ParseScale(raw string) (Scale, error) {
	switch strings.TrimSpace(raw) {
	case string(ScaleTen), "10":
		return ScaleTen, nil
	case string(ScaleUnit), "1":
		return ScaleUnit, nil
	default:
		return "", ErrUnknownScale
	}
}

func (s Scale) Normalize(value float64) float64 {
	if s == ScaleTen {
		return value / 10
	}
	return value
}

// Bounds reports the inclusive input range for ratings on this scale.
func (s Scale) Bounds() (lo, hi float64) {
	if s == ScaleTen {
		return 1, 10
	}
	return 0, 1
}

// Step is the input granularity rendered on rating widgets.
func (s Scale) Step() string {
	if s == ScaleTen {
		return "1"
	}
	return "0.01"
}

// DefaultRating is the seed value of a fresh rating input: the midpoint on the
// slider scale, blank on the fractional one.
func (s Scale) DefaultRating() string {
	if s == ScaleTen {
		return "5"
	}
	return ""
}

func (s Scale) String() string {
	return string(s)
}
