package onboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/edrobertsrayne/nerftank/onboard/hardware"
)

// Flywheel PWM timing, matching the drive motor driver.
const (
	flywheelCycle = 1024
	flywheelFreq  = 18000
)

// tickInterval is the cooperative yield between loop evaluations. Bodies
// that dwell or wait provide their own suspension on top of it.
const tickInterval = time.Millisecond

type TurretState int

const (
	Standby TurretState = iota
	SpinUp
	Ready
	Firing
	Cooldown
	Empty
)

func (s TurretState) String() string {
	switch s {
	case Standby:
		return "STANDBY"
	case SpinUp:
		return "SPIN_UP"
	case Ready:
		return "READY"
	case Firing:
		return "FIRING"
	case Cooldown:
		return "COOLDOWN"
	case Empty:
		return "EMPTY"
	}
	return fmt.Sprintf("TurretState(%d)", int(s))
}

// Turret owns the pan/tilt/trigger servos, the flywheel output, the ammo
// counter and the firing state machine. State only ever changes inside the
// tick loop; external callers signal intent through the armed and fire
// latches and read state through the accessors.
//
// Construction is inert. Start spawns the loop; Tick runs a single
// evaluation so tests can drive the machine without real concurrency.
type Turret struct {
	pan, tilt, trigger *hardware.Servo
	flywheel           hardware.PWMPin

	panMin, panMax           uint32
	tiltMin, tiltMax         uint32
	triggerPull, triggerRest uint32

	armed  *Latch
	firing *Latch

	mu    sync.Mutex
	state TurretState
	ammo  int

	fireDwell     time.Duration
	cooldownDwell time.Duration
	errorBackoff  time.Duration
}

// NewTurret claims the four actuators and parks them: pan/tilt centered,
// trigger withdrawn, flywheel off.
func NewTurret(cfg TurretConfig, pins hardware.PinSource) (t *Turret, err error) {
	if cfg.Ammo < 0 {
		return nil, fmt.Errorf("ammo count %d is negative", cfg.Ammo)
	}

	t = &Turret{
		armed:         NewLatch(),
		firing:        NewLatch(),
		state:         Standby,
		ammo:          cfg.Ammo,
		fireDwell:     time.Duration(cfg.FireDwell),
		cooldownDwell: time.Duration(cfg.CooldownDwell),
		errorBackoff:  time.Duration(cfg.ErrorBackoff),
	}

	if t.pan, err = newTurretServo(pins, cfg.Pan, &t.panMin, &t.panMax); err != nil {
		return nil, err
	}
	if t.tilt, err = newTurretServo(pins, cfg.Tilt, &t.tiltMin, &t.tiltMax); err != nil {
		return nil, err
	}
	if t.trigger, err = newTurretServo(pins, cfg.Trigger, &t.triggerPull, &t.triggerRest); err != nil {
		return nil, err
	}
	if t.flywheel, err = pins.PWM(cfg.Flywheel, flywheelFreq, flywheelCycle); err != nil {
		return nil, err
	}

	t.pan.WriteMicroseconds((t.panMin + t.panMax) / 2)
	t.tilt.WriteMicroseconds((t.tiltMin + t.tiltMax) / 2)
	t.trigger.WriteMicroseconds(t.triggerRest)
	t.flywheel.SetDuty(0, flywheelCycle)

	return t, nil
}

func newTurretServo(pins hardware.PinSource, cfg ServoConfig, min, max *uint32) (*hardware.Servo, error) {
	s, err := hardware.NewServo(pins, cfg.Pin, cfg.MinUS, cfg.MaxUS, 0)
	if err != nil {
		return nil, err
	}
	*min, *max = cfg.MinUS, cfg.MaxUS
	if *min == 0 {
		*min = hardware.ServoMinUS
	}
	if *max == 0 {
		*max = hardware.ServoMaxUS
	}
	return s, nil
}

// Arm sets the armed latch. The state machine reacts at its next tick.
func (t *Turret) Arm() {
	t.armed.Set()
}

// Disarm clears the armed latch. An in-progress firing tick still completes
// its body; the machine drops to STANDBY on the following transition.
func (t *Turret) Disarm() {
	t.armed.Clear()
}

// Fire latches a fire request. The latch is consumed by the next READY
// tick and ignored, remaining set, in any other state.
func (t *Turret) Fire() {
	t.firing.Set()
}

func (t *Turret) State() TurretState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Turret) Ammo() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ammo
}

func (t *Turret) IsArmed() bool {
	return t.armed.IsSet()
}

// Move maps normalized [-1,1] pan/tilt into each servo's pulse window and
// writes it directly. Independent of the firing state machine; safe to call
// concurrently with the tick loop.
func (t *Turret) Move(pan, tilt float64) {
	pan = mgl64.Clamp(pan, -1, 1)
	tilt = mgl64.Clamp(tilt, -1, 1)
	t.pan.WriteMicroseconds(uint32(mapRange(pan, -1, 1, float64(t.panMin), float64(t.panMax))))
	t.tilt.WriteMicroseconds(uint32(mapRange(tilt, -1, 1, float64(t.tiltMin), float64(t.tiltMax))))
}

// Start spawns the tick loop. The loop exits when ctx is cancelled, parking
// the actuators on the way out; the returned channel closes once it has.
func (t *Turret) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.run(ctx)
	}()
	return done
}

func (t *Turret) run(ctx context.Context) {
	defer t.park()
	for ctx.Err() == nil {
		if err := t.safeTick(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			// transient actuation errors never kill the loop
			log.Printf("turret: state %s: %v", t.State(), err)
			if sleep(ctx, t.errorBackoff) != nil {
				return
			}
			continue
		}
		if sleep(ctx, tickInterval) != nil {
			return
		}
	}
}

// park returns the actuators to a safe resting output on shutdown.
func (t *Turret) park() {
	t.flywheel.SetDuty(0, flywheelCycle)
	t.trigger.WriteMicroseconds(t.triggerRest)
}

func (t *Turret) safeTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Tick(ctx)
}

// Tick runs one evaluation cycle: decide the next state, then execute its
// body. Transition priority each tick is ammo exhaustion, then disarm, then
// the state-specific rule, so EMPTY and STANDBY preempt a firing sequence
// only at tick granularity.
func (t *Turret) Tick(ctx context.Context) error {
	t.advance()
	return t.execute(ctx)
}

func (t *Turret) advance() {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.ammo < 1:
		t.state = Empty
	case !t.armed.IsSet():
		t.state = Standby
	default:
		switch t.state {
		case Standby:
			t.state = SpinUp
		case SpinUp:
			t.state = Ready
		case Ready:
			if t.firing.IsSet() {
				t.state = Firing
			}
		case Firing:
			t.state = Cooldown
		case Cooldown:
			t.state = Ready
		}
	}
}

func (t *Turret) execute(ctx context.Context) error {
	switch t.State() {
	case Standby:
		// flywheel off, suspend until armed
		t.flywheel.SetDuty(0, flywheelCycle)
		return t.armed.Wait(ctx)

	case SpinUp:
		t.flywheel.SetDuty(flywheelCycle, flywheelCycle)

	case Ready:
		// nothing to actuate

	case Firing:
		// pull the trigger, spend a dart, consume the request, then dwell
		// for the mechanical cycle
		t.trigger.WriteMicroseconds(t.triggerPull)
		t.mu.Lock()
		t.ammo--
		t.mu.Unlock()
		t.firing.Clear()
		return sleep(ctx, t.fireDwell)

	case Cooldown:
		t.trigger.WriteMicroseconds(t.triggerRest)
		return sleep(ctx, t.cooldownDwell)

	case Empty:
		t.flywheel.SetDuty(0, flywheelCycle)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
