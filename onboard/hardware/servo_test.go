package hardware

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestServo(t *testing.T) {
	Convey("servo with the standard hobby window", t, func() {
		pins := NewSimPins()
		servo, err := NewServo(pins, 18, 0, 0, 0)
		So(err, ShouldBeNil)

		Convey("angle writes round trip within a degree", func() {
			for angle := 0; angle <= 180; angle += 15 {
				servo.Write(angle)
				So(servo.Read(), ShouldAlmostEqual, angle, 1)
			}
		})

		Convey("angle interpolates over the pulse window", func() {
			servo.Write(0)
			So(servo.ReadMicroseconds(), ShouldEqual, 500)

			servo.Write(90)
			So(servo.ReadMicroseconds(), ShouldEqual, 1500)

			servo.Write(180)
			So(servo.ReadMicroseconds(), ShouldEqual, 2500)
		})

		Convey("angles are clamped into 0-180", func() {
			servo.Write(270)
			So(servo.ReadMicroseconds(), ShouldEqual, 2500)

			servo.Write(-45)
			So(servo.ReadMicroseconds(), ShouldEqual, 500)
		})

		Convey("explicit pulses are clamped into the window", func() {
			servo.WriteMicroseconds(100)
			So(servo.ReadMicroseconds(), ShouldEqual, 500)
			So(pins.Duty(18), ShouldEqual, 500)

			servo.WriteMicroseconds(3000)
			So(servo.ReadMicroseconds(), ShouldEqual, 2500)
		})

		Convey("center moves to 90 degrees", func() {
			servo.Center()
			So(servo.Read(), ShouldEqual, 90)
		})

		Convey("detach drops the pulse without losing position", func() {
			servo.Write(45)
			servo.Detach()
			So(pins.Duty(18), ShouldEqual, 0)
			So(servo.Read(), ShouldAlmostEqual, 45, 1)
		})
	})

	Convey("calibration", t, func() {
		pins := NewSimPins()
		servo, err := NewServo(pins, 19, 1250, 2000, 50)
		So(err, ShouldBeNil)

		Convey("writes use the configured window", func() {
			servo.Write(0)
			So(servo.ReadMicroseconds(), ShouldEqual, 1250)
			servo.Write(180)
			So(servo.ReadMicroseconds(), ShouldEqual, 2000)
		})

		Convey("live updates apply to the next write immediately", func() {
			So(servo.Calibrate(1000, 0), ShouldBeNil)
			servo.Write(0)
			So(servo.ReadMicroseconds(), ShouldEqual, 1000)
		})

		Convey("an inverted window is refused", func() {
			So(servo.Calibrate(2100, 2000), ShouldNotBeNil)
		})

		Convey("a window wider than the frame is refused", func() {
			So(servo.Calibrate(0, 30000), ShouldNotBeNil)
		})
	})

	Convey("concurrent writers and live calibration stay consistent", t, func() {
		pins := NewSimPins()
		servo, err := NewServo(pins, 18, 0, 0, 0)
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for angle := 0; angle <= 180; angle += 5 {
					servo.Write(angle)
					servo.Read()
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				servo.Calibrate(600, 2400)
				servo.Calibrate(500, 2500)
			}
		}()
		wg.Wait()

		us := servo.ReadMicroseconds()
		So(us, ShouldBeGreaterThanOrEqualTo, 500)
		So(us, ShouldBeLessThanOrEqualTo, 2500)
	})

	Convey("construction validates the window", t, func() {
		pins := NewSimPins()

		_, err := NewServo(pins, 20, 2500, 500, 0)
		So(err, ShouldNotBeNil)

		_, err = NewServo(pins, 20, 500, 25000, 50)
		So(err, ShouldNotBeNil)
	})
}
