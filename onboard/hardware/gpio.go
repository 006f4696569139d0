package hardware

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// DigitalPin is a single GPIO output. Drivers own their pins exclusively;
// nothing else in the process may write to a pin handed to a driver.
type DigitalPin interface {
	High()
	Low()
}

// PWMPin is a pulse-width modulated output. SetDuty sets the high time to
// duty out of cycle steps per period. The period itself is fixed when the
// pin is requested from a PinSource.
type PWMPin interface {
	SetDuty(duty, cycle uint32)
}

// PinSource hands out pin handles by BCM pin number. The rpio implementation
// drives real hardware; the simulated one backs tests and -sim mode.
type PinSource interface {
	Digital(pin int) (DigitalPin, error)
	// PWM configures the pin for freq*cycle clock pulses per second so the
	// output frequency works out to freq Hz with cycle duty steps.
	PWM(pin int, freq, cycle uint32) (PWMPin, error)
}

// GPIO is a PinSource backed by the BCM2835 registers via go-rpio.
type GPIO struct{}

func OpenGPIO() (*GPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("unable to open gpio memory: %w", err)
	}
	return &GPIO{}, nil
}

func (g *GPIO) Close() error {
	return rpio.Close()
}

func (g *GPIO) Digital(pin int) (DigitalPin, error) {
	p := rpio.Pin(pin)
	p.Output()
	p.Low()
	return &rpioDigital{p}, nil
}

func (g *GPIO) PWM(pin int, freq, cycle uint32) (PWMPin, error) {
	// Param freq should be in range 4688Hz - 19.2MHz to prevent
	// unexpected behavior
	clock := freq * cycle
	if clock < 4688 || clock > 19200000 {
		return nil, fmt.Errorf("pwm clock %dHz out of range for pin %d", clock, pin)
	}
	p := rpio.Pin(pin)
	p.Mode(rpio.Pwm)
	p.Freq(int(clock))
	p.DutyCycle(0, cycle)
	return &rpioPWM{p}, nil
}

type rpioDigital struct {
	pin rpio.Pin
}

func (d *rpioDigital) High() { d.pin.High() }
func (d *rpioDigital) Low()  { d.pin.Low() }

type rpioPWM struct {
	pin rpio.Pin
}

func (p *rpioPWM) SetDuty(duty, cycle uint32) {
	p.pin.DutyCycle(duty, cycle)
}
