package hardware

import "fmt"

const (
	// MotorMax is the full-scale duty magnitude accepted by the driver.
	MotorMax = 1023

	motorCycle   = MotorMax + 1
	motorPWMFreq = 18000
)

type MotorAction int

const (
	Forward MotorAction = iota
	Reverse
	Stop
	Brake
)

// MotorCommand is the tagged command form accepted by Apply. Magnitude is
// ignored for Stop and Brake.
type MotorCommand struct {
	Action    MotorAction
	Magnitude float64
}

// Motor drives one channel of a TB6612FNG H-bridge: two direction pins, a
// PWM speed pin and an optional standby pin that may be shared between the
// two channels of the chip. Each operation is the sole writer of every pin,
// so invoking any operation fully supersedes the previous command.
type Motor struct {
	in1, in2 DigitalPin
	pwm      PWMPin
	stby     DigitalPin // nil when the standby line is hard-wired
	offset   float64
}

// NewMotor claims the pin triple from src and leaves the motor stopped.
// stby <= 0 means no standby pin. offset in [0,1) derates the effective duty
// to compensate for manufacturing variance between paired motors.
func NewMotor(src PinSource, in1, in2, pwm, stby int, offset float64) (m *Motor, err error) {
	if offset < 0 || offset >= 1 {
		return nil, fmt.Errorf("motor offset %v outside [0,1)", offset)
	}

	m = &Motor{offset: offset}

	if m.in1, err = src.Digital(in1); err != nil {
		return nil, err
	}
	if m.in2, err = src.Digital(in2); err != nil {
		return nil, err
	}
	if m.pwm, err = src.PWM(pwm, motorPWMFreq, motorCycle); err != nil {
		return nil, err
	}
	if stby > 0 {
		if m.stby, err = src.Digital(stby); err != nil {
			return nil, err
		}
	}

	m.Stop()
	return m, nil
}

func (m *Motor) Forward(magnitude float64) {
	m.in1.High()
	m.in2.Low()
	m.setDuty(magnitude)
	m.wake()
}

func (m *Motor) Reverse(magnitude float64) {
	m.in1.Low()
	m.in2.High()
	m.setDuty(magnitude)
	m.wake()
}

// Stop releases the direction pins and zeroes the duty, letting the motor
// coast. The standby line is dropped as well.
func (m *Motor) Stop() {
	m.in1.Low()
	m.in2.Low()
	m.pwm.SetDuty(0, motorCycle)
	if m.stby != nil {
		m.stby.Low()
	}
}

// Brake holds both direction pins active with zero duty, shorting the
// windings. Electrically distinct from Stop: active short vs coast.
func (m *Motor) Brake() {
	m.in1.High()
	m.in2.High()
	m.pwm.SetDuty(0, motorCycle)
	m.wake()
}

func (m *Motor) Apply(cmd MotorCommand) {
	switch cmd.Action {
	case Forward:
		m.Forward(cmd.Magnitude)
	case Reverse:
		m.Reverse(cmd.Magnitude)
	case Brake:
		m.Brake()
	default:
		m.Stop()
	}
}

func (m *Motor) setDuty(magnitude float64) {
	magnitude = constrain(magnitude, 0, MotorMax)
	m.pwm.SetDuty(uint32(magnitude*(1-m.offset)), motorCycle)
}

func (m *Motor) wake() {
	if m.stby != nil {
		m.stby.High()
	}
}

func constrain(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
