package onboard

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLatch(t *testing.T) {
	Convey("a fresh latch is clear", t, func() {
		l := NewLatch()
		So(l.IsSet(), ShouldBeFalse)

		Convey("set and clear toggle it", func() {
			l.Set()
			So(l.IsSet(), ShouldBeTrue)

			l.Set() // idempotent
			So(l.IsSet(), ShouldBeTrue)

			l.Clear()
			So(l.IsSet(), ShouldBeFalse)

			l.Clear()
			So(l.IsSet(), ShouldBeFalse)
		})

		Convey("wait returns immediately once set", func() {
			l.Set()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(l.Wait(ctx), ShouldBeNil)
		})

		Convey("wait respects cancellation", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			So(l.Wait(ctx), ShouldEqual, context.DeadlineExceeded)
		})

		Convey("wait unblocks when another goroutine sets", func() {
			done := make(chan error, 1)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				done <- l.Wait(ctx)
			}()

			time.Sleep(5 * time.Millisecond)
			l.Set()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(time.Second):
				t.Fatal("wait never unblocked")
			}
		})
	})
}
