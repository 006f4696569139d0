package onboard

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/edrobertsrayne/nerftank/onboard/hardware"
)

func TestMixer(t *testing.T) {
	Convey("mixer with the native duty scale", t, func() {
		var m Mixer

		Convey("zero turn drives both sides identically", func() {
			for _, speed := range []float64{-1, -0.5, 0, 0.25, 1} {
				left, right := m.Mix(speed, 0)
				So(left, ShouldEqual, right)
				So(left, ShouldAlmostEqual, speed*hardware.MotorMax, 1e-9)
			}
		})

		Convey("zero speed spins in place", func() {
			left, right := m.Mix(0, 0.5)
			So(left, ShouldAlmostEqual, -right, 1e-9)
			So(left, ShouldBeGreaterThan, 0)
		})

		Convey("turn at full speed saturates one side instead of clipping the sum", func() {
			left, right := m.Mix(1, 1)
			So(left, ShouldAlmostEqual, 2*hardware.MotorMax, 1e-9)
			So(right, ShouldAlmostEqual, 0, 1e-9)
		})

		Convey("mixing is symmetric under sign flips", func() {
			l1, r1 := m.Mix(0.7, 0.3)
			l2, r2 := m.Mix(0.7, -0.3)
			So(l1, ShouldAlmostEqual, r2, 1e-9)
			So(r1, ShouldAlmostEqual, l2, 1e-9)
		})
	})

	Convey("an explicit scale overrides the native range", t, func() {
		m := Mixer{Scale: 100}
		left, right := m.Mix(1, 0)
		So(left, ShouldEqual, 100)
		So(right, ShouldEqual, 100)
	})
}
