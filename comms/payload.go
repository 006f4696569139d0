package comms

import (
	"fmt"
	"math"

	"github.com/edrobertsrayne/nerftank/onboard"
)

// Command verbs accepted on the control socket.
const (
	CmdArm    = "arm"
	CmdDisarm = "disarm"
	CmdFire   = "fire"
	CmdStop   = "stop"
)

// Message is the wire envelope for everything a client sends: either a
// command (`{"cmd":"fire"}`) or an input frame
// (`{"drive":{"x":0,"y":1},"turret":{"x":0,"y":0}}`). A missing stick
// reads as centered.
type Message struct {
	Cmd    string `json:"cmd,omitempty"`
	Drive  *Stick `json:"drive,omitempty"`
	Turret *Stick `json:"turret,omitempty"`
}

type Stick struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// frame converts the payload into the typed frame the core consumes. Axes
// must be finite; the core clamps range but cannot be handed NaN.
func (m Message) frame() (frame onboard.InputFrame, err error) {
	if frame.Drive, err = m.Drive.axes("drive"); err != nil {
		return frame, err
	}
	frame.Turret, err = m.Turret.axes("turret")
	return frame, err
}

func (s *Stick) axes(name string) (onboard.Stick, error) {
	if s == nil {
		return onboard.Stick{}, nil
	}
	for axis, v := range map[string]float64{"x": s.X, "y": s.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return onboard.Stick{}, fmt.Errorf("%s.%s is not a finite number", name, axis)
		}
	}
	return onboard.Stick{X: s.X, Y: s.Y}, nil
}
