package dedupe_test

import (
	"context"
	"sync"
	"testing"

	"github.com/mbvera/pulse-data/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When nothing has been recorded", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When recording a new person id", func() {
			seen := d.SeenAndRecord(context.Background(), 101)

			Convey("Then it is newly recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When recording the same person id twice", func() {
			d.SeenAndRecord(context.Background(), 101)
			seen := d.SeenAndRecord(context.Background(), 101)

			Convey("Then the second sighting reports seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When recording many distinct person ids", func() {
			for id := int64(1); id <= 50; id++ {
				So(d.SeenAndRecord(context.Background(), id), ShouldBeFalse)
			}

			Convey("Then all of them are tracked", func() {
				So(d.Size(), ShouldEqual, 50)
				for id := int64(1); id <= 50; id++ {
					So(d.SeenAndRecord(context.Background(), id), ShouldBeTrue)
				}
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		d := dedupe.NewInMemoryDeduper()
		const goroutines = 10
		const idsPerGoroutine = 100

		Convey("When every goroutine records its own id range", func() {
			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < idsPerGoroutine; i++ {
						d.SeenAndRecord(context.Background(), int64(g*idsPerGoroutine+i))
					}
				}(g)
			}
			wg.Wait()

			Convey("Then every id is recorded exactly once", func() {
				So(d.Size(), ShouldEqual, int64(goroutines*idsPerGoroutine))
			})
		})

		Convey("When every goroutine races on the same id", func() {
			newlyRecorded := make(chan bool, goroutines)
			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(context.Background(), 7) {
						newlyRecorded <- true
					}
				}()
			}
			wg.Wait()
			close(newlyRecorded)

			Convey("Then exactly one goroutine wins the record", func() {
				So(len(newlyRecorded), ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
