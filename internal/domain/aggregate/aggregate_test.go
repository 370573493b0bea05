package aggregate_test

import (
	"errors"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/mbvera/pulse-data/internal/domain/aggregate"
	"github.com/mbvera/pulse-data/internal/domain/metric"
	. "github.com/smartystreets/goconvey/convey"
)

func countKey(year string) metric.Key {
	return metric.NewKey(metric.ReincarcerationCount).
		With(metric.DimStateCode, "US_ND").
		With(metric.DimYear, year)
}

func rateKey(year string) metric.Key {
	return metric.NewKey(metric.ReincarcerationRate).
		With(metric.DimStateCode, "US_ND").
		With(metric.DimYear, year)
}

func TestAccumulators(t *testing.T) {
	Convey("Given a Sum accumulator", t, func() {
		s := aggregate.NewSum()

		Convey("When folding inputs", func() {
			s.AddInput(1)
			s.AddInput(1)
			s.AddInput(2)

			So(s.Extract(), ShouldEqual, 4)
		})

		Convey("When merging another Sum", func() {
			other := aggregate.NewSum()
			other.AddInput(3)
			s.AddInput(2)

			So(s.Merge(other), ShouldBeNil)
			So(s.Extract(), ShouldEqual, 5)
		})

		Convey("When merging a different kind", func() {
			err := s.Merge(aggregate.NewAverage())

			So(errors.Is(err, aggregate.ErrKindMismatch), ShouldBeTrue)
		})
	})

	Convey("Given an Average accumulator", t, func() {
		a := aggregate.NewAverage()

		Convey("When empty", func() {
			Convey("Then the extracted value is the NaN sentinel", func() {
				So(math.IsNaN(a.Extract()), ShouldBeTrue)
			})
		})

		Convey("When folding 0/1 outcomes", func() {
			a.AddInput(1)
			a.AddInput(0)
			a.AddInput(0)
			a.AddInput(1)

			So(a.Extract(), ShouldEqual, 0.5)
		})

		Convey("When merging partial averages", func() {
			a.AddInput(1)
			other := aggregate.NewAverage()
			other.AddInput(0)
			other.AddInput(0)

			So(a.Merge(other), ShouldBeNil)
			So(a.Extract(), ShouldAlmostEqual, 1.0/3.0)
		})

		Convey("When merging a different kind", func() {
			err := a.Merge(aggregate.NewSum())

			So(errors.Is(err, aggregate.ErrKindMismatch), ShouldBeTrue)
		})
	})
}

func TestShard(t *testing.T) {
	Convey("Given an empty shard", t, func() {
		s := aggregate.NewShard()

		Convey("When adding observations for the same key", func() {
			So(s.Add(aggregate.Observation{Key: countKey("2012"), Value: 1}), ShouldBeNil)
			So(s.Add(aggregate.Observation{Key: countKey("2012"), Value: 1}), ShouldBeNil)

			Convey("Then they fold into one bucket", func() {
				So(s.Len(), ShouldEqual, 1)
				So(s.Entries()[0].Acc.Extract(), ShouldEqual, 2)
			})
		})

		Convey("When adding observations for distinct keys", func() {
			So(s.Add(aggregate.Observation{Key: countKey("2012"), Value: 1}), ShouldBeNil)
			So(s.Add(aggregate.Observation{Key: countKey("2013"), Value: 1}), ShouldBeNil)

			So(s.Len(), ShouldEqual, 2)
		})

		Convey("When adding an observation with an unknown metric type", func() {
			err := s.Add(aggregate.Observation{Key: metric.NewKey(metric.TypeUnknown).With(metric.DimYear, "2012")})

			So(errors.Is(err, aggregate.ErrNoAccumulator), ShouldBeTrue)
		})

		Convey("When listing entries", func() {
			So(s.Add(aggregate.Observation{Key: countKey("2014"), Value: 1}), ShouldBeNil)
			So(s.Add(aggregate.Observation{Key: countKey("2012"), Value: 1}), ShouldBeNil)
			So(s.Add(aggregate.Observation{Key: countKey("2013"), Value: 1}), ShouldBeNil)

			Convey("Then they come back ordered by encoded key", func() {
				entries := s.Entries()
				years := make([]string, 0, len(entries))
				for _, e := range entries {
					y, _ := e.Key.Get(metric.DimYear)
					years = append(years, y)
				}
				So(years, ShouldResemble, []string{"2012", "2013", "2014"})
			})
		})
	})
}

func TestShardMergeOrderIndependence(t *testing.T) {
	Convey("Given a stream of observations split across shards", t, func() {
		rng := rand.New(rand.NewSource(1))

		var all []aggregate.Observation
		for i := 0; i < 500; i++ {
			year := strconv.Itoa(2010 + rng.Intn(5))
			if rng.Intn(2) == 0 {
				all = append(all, aggregate.Observation{Key: countKey(year), Value: 1})
			} else {
				all = append(all, aggregate.Observation{Key: rateKey(year), Value: float64(rng.Intn(2))})
			}
		}

		fold := func(splits int, reversed bool) map[string]float64 {
			shards := make([]*aggregate.Shard, splits)
			for i := range shards {
				shards[i] = aggregate.NewShard()
			}
			for i, obs := range all {
				So(shards[i%splits].Add(obs), ShouldBeNil)
			}

			merged := aggregate.NewShard()
			if reversed {
				for i := len(shards) - 1; i >= 0; i-- {
					So(merged.Merge(shards[i]), ShouldBeNil)
				}
			} else {
				for _, s := range shards {
					So(merged.Merge(s), ShouldBeNil)
				}
			}

			out := make(map[string]float64)
			for _, e := range merged.Entries() {
				out[e.Key.Encode()] = e.Acc.Extract()
			}
			return out
		}

		Convey("When folding with different shard counts and merge orders", func() {
			single := fold(1, false)
			split := fold(7, false)
			splitReversed := fold(7, true)

			Convey("Then the extracted values are identical", func() {
				So(split, ShouldResemble, single)
				So(splitReversed, ShouldResemble, single)
			})
		})
	})
}
