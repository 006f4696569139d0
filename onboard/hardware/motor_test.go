package hardware

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMotor(t *testing.T) {
	Convey("motor on a simulated pin bank", t, func() {
		pins := NewSimPins()
		motor, err := NewMotor(pins, 14, 12, 13, 5, 0)
		So(err, ShouldBeNil)

		Convey("starts stopped", func() {
			So(pins.Level(14), ShouldBeFalse)
			So(pins.Level(12), ShouldBeFalse)
			So(pins.Duty(13), ShouldEqual, 0)
			So(pins.Level(5), ShouldBeFalse)
		})

		Convey("forward sets in1 and releases standby hold", func() {
			motor.Forward(512)
			So(pins.Level(14), ShouldBeTrue)
			So(pins.Level(12), ShouldBeFalse)
			So(pins.Duty(13), ShouldEqual, 512)
			So(pins.Level(5), ShouldBeTrue)
		})

		Convey("reverse sets in2", func() {
			motor.Reverse(300)
			So(pins.Level(14), ShouldBeFalse)
			So(pins.Level(12), ShouldBeTrue)
			So(pins.Duty(13), ShouldEqual, 300)
		})

		Convey("magnitude is clamped, never rejected", func() {
			motor.Forward(2000)
			high := pins.Duty(13)

			motor.Forward(MotorMax)
			So(pins.Duty(13), ShouldEqual, high)

			motor.Reverse(-5)
			So(pins.Duty(13), ShouldEqual, 0)
			So(pins.Level(12), ShouldBeTrue)
		})

		Convey("stop coasts, brake shorts", func() {
			motor.Forward(1000)

			motor.Stop()
			So(pins.Level(14), ShouldBeFalse)
			So(pins.Level(12), ShouldBeFalse)
			So(pins.Duty(13), ShouldEqual, 0)
			So(pins.Level(5), ShouldBeFalse)

			motor.Brake()
			So(pins.Level(14), ShouldBeTrue)
			So(pins.Level(12), ShouldBeTrue)
			So(pins.Duty(13), ShouldEqual, 0)
			So(pins.Level(5), ShouldBeTrue)
		})

		Convey("commands supersede each other completely", func() {
			motor.Apply(MotorCommand{Action: Forward, Magnitude: 800})
			So(pins.Duty(13), ShouldEqual, 800)

			motor.Apply(MotorCommand{Action: Stop})
			So(pins.Duty(13), ShouldEqual, 0)
			So(pins.Level(14), ShouldBeFalse)

			motor.Apply(MotorCommand{Action: Brake})
			So(pins.Level(14), ShouldBeTrue)
			So(pins.Level(12), ShouldBeTrue)
		})
	})

	Convey("motor with a calibration offset derates its duty", t, func() {
		pins := NewSimPins()
		motor, err := NewMotor(pins, 15, 16, 17, 0, 0.1)
		So(err, ShouldBeNil)

		motor.Forward(1000)
		So(pins.Duty(17), ShouldEqual, 900)
	})

	Convey("offsets outside [0,1) fail construction", t, func() {
		pins := NewSimPins()

		_, err := NewMotor(pins, 1, 2, 3, 0, 1)
		So(err, ShouldNotBeNil)

		_, err = NewMotor(pins, 1, 2, 3, 0, -0.5)
		So(err, ShouldNotBeNil)
	})
}
