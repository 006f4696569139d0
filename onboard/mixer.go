package onboard

import "github.com/edrobertsrayne/nerftank/onboard/hardware"

// Mixer converts shaped (speed, turn) into independent left/right motor
// magnitudes. Summing before scaling lets turn dominate symmetrically at
// full speed without a priority scheme; the result can exceed the duty
// range and saturation is deliberately deferred to the motor driver, the
// one place that knows the hardware limit.
type Mixer struct {
	// Scale is the full-scale duty magnitude. Zero selects the motor
	// driver's native range.
	Scale float64
}

func (m Mixer) Mix(speed, turn float64) (left, right float64) {
	scale := m.Scale
	if scale == 0 {
		scale = hardware.MotorMax
	}
	left = mapRange(speed+turn, -1, 1, -scale, scale)
	right = mapRange(speed-turn, -1, 1, -scale, scale)
	return
}

// mapRange linearly maps x from one range onto another without clamping.
func mapRange(x, inMin, inMax, outMin, outMax float64) float64 {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
