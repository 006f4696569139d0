package hardware

import (
	"fmt"
	"sync"
)

// Standard hobby servo timing: 50Hz frame, 500-2500us pulse for 0-180
// degrees, 1500us neutral.
const (
	ServoMinUS   = 500
	ServoMaxUS   = 2500
	ServoFreq    = 50
	servoSweep   = 180
	servoNeutral = 90
)

// Servo positions one pulse-width controlled servo. The pulse window is
// per-instance state so differently calibrated servos can coexist, and
// Calibrate may move it live. Writes are instantaneous targets, not
// trajectories. The shell, the socket handlers and the turret loop may all
// drive the same servo, so window and position are mutex guarded.
type Servo struct {
	out      PWMPin
	periodUS uint32

	mu           sync.Mutex
	minUS, maxUS uint32
	currentUS    uint32
}

// NewServo claims pin from src. Zero minUS/maxUS/freq select the standard
// hobby defaults. The servo starts detached; no pulse is emitted until the
// first write.
func NewServo(src PinSource, pin int, minUS, maxUS, freq uint32) (*Servo, error) {
	if minUS == 0 {
		minUS = ServoMinUS
	}
	if maxUS == 0 {
		maxUS = ServoMaxUS
	}
	if freq == 0 {
		freq = ServoFreq
	}
	if minUS >= maxUS {
		return nil, fmt.Errorf("servo pulse window [%d, %d]us is inverted", minUS, maxUS)
	}

	period := uint32(1000000 / freq)
	if maxUS > period {
		return nil, fmt.Errorf("servo pulse %dus exceeds %dus frame", maxUS, period)
	}

	// cycle steps of 1us give direct microsecond resolution
	out, err := src.PWM(pin, freq, period)
	if err != nil {
		return nil, err
	}

	return &Servo{
		out:      out,
		periodUS: period,
		minUS:    minUS,
		maxUS:    maxUS,
	}, nil
}

// WriteMicroseconds commands an explicit pulse width, clamped into the
// calibration window.
func (s *Servo) WriteMicroseconds(us uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeUS(us)
}

// writeUS clamps and emits one pulse width. Callers hold s.mu so the clamp
// and the position update agree with the window they were computed from.
func (s *Servo) writeUS(us uint32) {
	if us < s.minUS {
		us = s.minUS
	} else if us > s.maxUS {
		us = s.maxUS
	}
	s.out.SetDuty(us, s.periodUS)
	s.currentUS = us
}

// Write commands an angle in degrees (0-180), interpolated linearly over
// the calibration window. Out of range angles are clamped, never rejected.
func (s *Servo) Write(angle int) {
	if angle < 0 {
		angle = 0
	} else if angle > servoSweep {
		angle = servoSweep
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeUS(s.minUS + uint32(angle)*(s.maxUS-s.minUS)/servoSweep)
}

// ReadMicroseconds reports the last commanded pulse width, zero before the
// first write.
func (s *Servo) ReadMicroseconds() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUS
}

// Read reports the last commanded angle in degrees.
func (s *Servo) Read() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	// a later Calibrate may have raised minUS past the last written pulse
	if s.currentUS <= s.minUS {
		return 0
	}
	return int((s.currentUS - s.minUS) * servoSweep / (s.maxUS - s.minUS))
}

// Calibrate updates the pulse window; subsequent writes use it immediately.
// A zero value leaves the corresponding bound unchanged.
func (s *Servo) Calibrate(minUS, maxUS uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	min, max := s.minUS, s.maxUS
	if minUS != 0 {
		min = minUS
	}
	if maxUS != 0 {
		max = maxUS
	}
	if min >= max {
		return fmt.Errorf("servo pulse window [%d, %d]us is inverted", min, max)
	}
	if max > s.periodUS {
		return fmt.Errorf("servo pulse %dus exceeds %dus frame", max, s.periodUS)
	}
	s.minUS, s.maxUS = min, max
	return nil
}

// Center moves the servo to the middle of its travel.
func (s *Servo) Center() {
	s.Write(servoNeutral)
}

// Detach stops sending pulses, releasing the servo horn.
func (s *Servo) Detach() {
	s.out.SetDuty(0, s.periodUS)
}
