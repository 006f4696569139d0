package onboard

import (
	"context"

	"github.com/edrobertsrayne/nerftank/onboard/hardware"
)

// Stick is one normalized joystick, both axes in [-1,1].
type Stick struct {
	X, Y float64
}

// InputFrame is one decoded control message: drive stick and turret stick.
// The transport produces one frame per received message; the frame is
// consumed synchronously by Update.
type InputFrame struct {
	Drive  Stick
	Turret Stick
}

// Status is the externally visible state snapshot.
type Status struct {
	Turret string `json:"turret"`
	Ammo   int    `json:"ammo"`
	Armed  bool   `json:"armed"`
}

// Tank is the control surface the transport drives. Robot implements it;
// tests substitute their own.
type Tank interface {
	Update(frame InputFrame)
	Arm()
	Disarm()
	Fire()
	Status() Status
}

// Robot composes the drive mixer, the motor drivers and the turret. Update
// and the turret control methods are synchronous and non-blocking; only the
// turret's own loop suspends.
type Robot struct {
	left, right []*hardware.Motor
	turret      *Turret
	mixer       Mixer
	curve       Curve
	deadzone    float64
}

func NewRobot(cfg TankConfig, pins hardware.PinSource) (r *Robot, err error) {
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	curve, err := CurveByName(cfg.Drive.Curve)
	if err != nil {
		return nil, err
	}

	r = &Robot{
		curve:    curve,
		deadzone: cfg.Drive.Deadzone,
	}

	if r.left, err = buildSide(cfg.Drive.Left, pins); err != nil {
		return nil, err
	}
	if r.right, err = buildSide(cfg.Drive.Right, pins); err != nil {
		return nil, err
	}
	if r.turret, err = NewTurret(cfg.Turret, pins); err != nil {
		return nil, err
	}

	return r, nil
}

func buildSide(configs []MotorConfig, pins hardware.PinSource) (motors []*hardware.Motor, err error) {
	motors = make([]*hardware.Motor, len(configs))
	for i, c := range configs {
		if motors[i], err = hardware.NewMotor(pins, c.In1, c.In2, c.PWM, c.Standby, c.Offset); err != nil {
			return nil, err
		}
	}
	return motors, nil
}

// Update consumes one input frame: drive axes are shaped and mixed into
// per-side motor commands, turret axes pass through unshaped.
func (r *Robot) Update(frame InputFrame) {
	speed := r.curve(frame.Drive.Y, r.deadzone)
	turn := r.curve(frame.Drive.X, r.deadzone)

	left, right := r.mixer.Mix(speed, turn)
	driveSide(r.left, left)
	driveSide(r.right, right)

	r.turret.Move(frame.Turret.X, frame.Turret.Y)
}

func driveSide(motors []*hardware.Motor, magnitude float64) {
	cmd := hardware.MotorCommand{Action: hardware.Stop}
	switch {
	case magnitude > 0:
		cmd = hardware.MotorCommand{Action: hardware.Forward, Magnitude: magnitude}
	case magnitude < 0:
		cmd = hardware.MotorCommand{Action: hardware.Reverse, Magnitude: -magnitude}
	}
	for _, m := range motors {
		m.Apply(cmd)
	}
}

func (r *Robot) Arm()    { r.turret.Arm() }
func (r *Robot) Disarm() { r.turret.Disarm() }
func (r *Robot) Fire()   { r.turret.Fire() }

func (r *Robot) Status() Status {
	return Status{
		Turret: r.turret.State().String(),
		Ammo:   r.turret.Ammo(),
		Armed:  r.turret.IsArmed(),
	}
}

// Turret exposes the turret for the dev shell and direct calibration.
func (r *Robot) Turret() *Turret {
	return r.turret
}

// Start spawns the turret loop; see Turret.Start.
func (r *Robot) Start(ctx context.Context) <-chan struct{} {
	return r.turret.Start(ctx)
}

// Halt stops every drive motor. Used on shutdown and by the shell's stop
// command; the turret parks itself when its loop exits.
func (r *Robot) Halt() {
	for _, m := range append(append([]*hardware.Motor{}, r.left...), r.right...) {
		m.Stop()
	}
}
