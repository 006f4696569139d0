package hardware

import "sync"

// SimPins is a PinSource that records every write instead of touching
// hardware. It backs -sim mode and the driver tests. Handles are shared per
// pin number, matching the shared-standby wiring of the TB6612FNG.
type SimPins struct {
	mu      sync.Mutex
	digital map[int]*SimDigital
	pwm     map[int]*SimPWM
}

func NewSimPins() *SimPins {
	return &SimPins{
		digital: make(map[int]*SimDigital),
		pwm:     make(map[int]*SimPWM),
	}
}

func (s *SimPins) Digital(pin int) (DigitalPin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.digital[pin]
	if !ok {
		d = &SimDigital{}
		s.digital[pin] = d
	}
	return d, nil
}

func (s *SimPins) PWM(pin int, freq, cycle uint32) (PWMPin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pwm[pin]
	if !ok {
		p = &SimPWM{freq: freq, cycle: cycle}
		s.pwm[pin] = p
	}
	return p, nil
}

// Level reports the recorded state of a digital pin, false if never claimed.
func (s *SimPins) Level(pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.digital[pin]
	if !ok {
		return false
	}
	return d.Level()
}

// Duty reports the recorded duty of a PWM pin, zero if never claimed.
func (s *SimPins) Duty(pin int) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pwm[pin]
	if !ok {
		return 0
	}
	return p.Duty()
}

type SimDigital struct {
	mu    sync.Mutex
	level bool
}

func (d *SimDigital) High() {
	d.mu.Lock()
	d.level = true
	d.mu.Unlock()
}

func (d *SimDigital) Low() {
	d.mu.Lock()
	d.level = false
	d.mu.Unlock()
}

func (d *SimDigital) Level() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level
}

type SimPWM struct {
	mu          sync.Mutex
	freq, cycle uint32
	duty        uint32
	writes      int
}

func (p *SimPWM) SetDuty(duty, cycle uint32) {
	p.mu.Lock()
	p.duty = duty
	p.cycle = cycle
	p.writes++
	p.mu.Unlock()
}

func (p *SimPWM) Duty() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duty
}

func (p *SimPWM) Cycle() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycle
}

func (p *SimPWM) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}
