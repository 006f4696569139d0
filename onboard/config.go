package onboard

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration so dwell times can be written as "100ms" in
// the YAML config.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MotorConfig is the pin triple for one TB6612FNG channel plus the optional
// shared standby pin and the per-motor calibration offset.
type MotorConfig struct {
	In1     int     `yaml:"in1"`
	In2     int     `yaml:"in2"`
	PWM     int     `yaml:"pwm"`
	Standby int     `yaml:"standby,omitempty"`
	Offset  float64 `yaml:"offset,omitempty"`
}

// ServoConfig is a servo pin and its pulse-width window. Zero bounds select
// the standard hobby window.
type ServoConfig struct {
	Pin   int    `yaml:"pin"`
	MinUS uint32 `yaml:"min_us,omitempty"`
	MaxUS uint32 `yaml:"max_us,omitempty"`
}

type DriveConfig struct {
	Left     []MotorConfig `yaml:"left"`
	Right    []MotorConfig `yaml:"right"`
	Deadzone float64       `yaml:"deadzone"`
	Curve    string        `yaml:"curve"`
}

type TurretConfig struct {
	Pan           ServoConfig `yaml:"pan"`
	Tilt          ServoConfig `yaml:"tilt"`
	Trigger       ServoConfig `yaml:"trigger"`
	Flywheel      int         `yaml:"flywheel"`
	Ammo          int         `yaml:"ammo"`
	FireDwell     Duration    `yaml:"fire_dwell,omitempty"`
	CooldownDwell Duration    `yaml:"cooldown_dwell,omitempty"`
	ErrorBackoff  Duration    `yaml:"error_backoff,omitempty"`
}

type TankConfig struct {
	Drive  DriveConfig  `yaml:"drive"`
	Turret TurretConfig `yaml:"turret"`
}

// DefaultConfig carries the stock wiring of the tank: one motor pair per
// side, turret servos with their measured mechanical windows, a five dart
// magazine.
func DefaultConfig() TankConfig {
	return TankConfig{
		Drive: DriveConfig{
			Left: []MotorConfig{
				{In1: 14, In2: 12, PWM: 13},
			},
			Right: []MotorConfig{
				{In1: 15, In2: 16, PWM: 17},
			},
			Deadzone: 0.1,
			Curve:    "cubic",
		},
		Turret: TurretConfig{
			Pan:           ServoConfig{Pin: 18},
			Tilt:          ServoConfig{Pin: 19, MinUS: 1250, MaxUS: 2000},
			Trigger:       ServoConfig{Pin: 21, MinUS: 1400, MaxUS: 2500},
			Flywheel:      22,
			Ammo:          5,
			FireDwell:     Duration(100 * time.Millisecond),
			CooldownDwell: Duration(100 * time.Millisecond),
			ErrorBackoff:  Duration(time.Second),
		},
	}
}

// Validate fails fast on configuration that cannot drive the tank. Range
// problems on live inputs are clamped at runtime instead; this only rejects
// what must abort startup.
func (c TankConfig) Validate() error {
	if len(c.Drive.Left) == 0 || len(c.Drive.Right) == 0 {
		return fmt.Errorf("drive requires at least one motor per side (left %d, right %d)",
			len(c.Drive.Left), len(c.Drive.Right))
	}
	for _, side := range [][]MotorConfig{c.Drive.Left, c.Drive.Right} {
		for _, m := range side {
			if m.In1 <= 0 || m.In2 <= 0 || m.PWM <= 0 {
				return fmt.Errorf("motor pins must be positive, got (%d, %d, %d)", m.In1, m.In2, m.PWM)
			}
			if m.Offset < 0 || m.Offset >= 1 {
				return fmt.Errorf("motor offset %v outside [0,1)", m.Offset)
			}
		}
	}
	if c.Drive.Deadzone < 0 || c.Drive.Deadzone >= 1 {
		return fmt.Errorf("deadzone %v outside [0,1)", c.Drive.Deadzone)
	}
	if _, err := CurveByName(c.Drive.Curve); err != nil {
		return err
	}
	for _, s := range []ServoConfig{c.Turret.Pan, c.Turret.Tilt, c.Turret.Trigger} {
		if s.Pin <= 0 {
			return fmt.Errorf("turret servo pin must be positive, got %d", s.Pin)
		}
		if s.MinUS != 0 && s.MaxUS != 0 && s.MinUS >= s.MaxUS {
			return fmt.Errorf("servo pulse window [%d, %d]us is inverted", s.MinUS, s.MaxUS)
		}
	}
	if c.Turret.Flywheel <= 0 {
		return fmt.Errorf("turret flywheel pin must be positive, got %d", c.Turret.Flywheel)
	}
	if c.Turret.Ammo < 0 {
		return fmt.Errorf("ammo count %d is negative", c.Turret.Ammo)
	}
	if c.Turret.FireDwell < 0 || c.Turret.CooldownDwell < 0 || c.Turret.ErrorBackoff < 0 {
		return fmt.Errorf("turret dwell durations must not be negative")
	}
	return nil
}
