package onboard

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultExponent is the response exponent used by the exponential curve
// when selected from configuration.
const DefaultExponent = 1.5

// Curve maps a normalized stick axis to a shaped output. All curves are
// pure, take v in [-1,1] and deadzone in [0,1), and return a value in
// [-1,1].
type Curve func(v, deadzone float64) float64

type UnknownCurveError struct {
	Name string
}

func (err UnknownCurveError) Error() string {
	return fmt.Sprintf("no such response curve %q", err.Name)
}

// CurveByName resolves a configuration name to its shaping function.
func CurveByName(name string) (Curve, error) {
	switch name {
	case "", "linear":
		return ApplyDeadzone, nil
	case "cubic":
		return RampCubic, nil
	case "quadratic":
		return RampQuadratic, nil
	case "exponential":
		return func(v, deadzone float64) float64 {
			return RampExponential(v, deadzone, DefaultExponent)
		}, nil
	}
	return nil, UnknownCurveError{name}
}

// ApplyDeadzone zeroes any input inside the deadzone and rescales the
// remaining travel linearly so the output still spans the full range. Inputs
// are clamped into [-1,1], never rejected.
func ApplyDeadzone(v, deadzone float64) float64 {
	v = mgl64.Clamp(v, -1, 1)
	if math.Abs(v) < deadzone {
		return 0
	}
	return math.Copysign((math.Abs(v)-deadzone)/(1-deadzone), v)
}

// RampCubic cubes the deadzoned input. Cubing preserves sign.
func RampCubic(v, deadzone float64) float64 {
	s := ApplyDeadzone(v, deadzone)
	return s * s * s
}

// RampQuadratic squares the deadzoned input, restoring the sign afterwards.
func RampQuadratic(v, deadzone float64) float64 {
	s := ApplyDeadzone(v, deadzone)
	if s == 0 {
		return 0
	}
	return math.Copysign(s*s, s)
}

// RampExponential raises the deadzoned input magnitude to the given
// exponent, restoring the sign afterwards.
func RampExponential(v, deadzone, exponent float64) float64 {
	s := ApplyDeadzone(v, deadzone)
	if s == 0 {
		return 0
	}
	return math.Copysign(math.Pow(math.Abs(s), exponent), s)
}
