package timerange_test

import (
	"testing"
	"time"

	"github.com/mbvera/pulse-data/internal/domain/timerange"
	. "github.com/smartystreets/goconvey/convey"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestTimeRange(t *testing.T) {
	Convey("Given a half-open time range", t, func() {
		Convey("When the range covers one month", func() {
			r := timerange.ForMonth(2020, 2)

			Convey("Then it contains the first day and excludes the next month", func() {
				So(r.Contains(day(2020, time.February, 1)), ShouldBeTrue)
				So(r.Contains(day(2020, time.February, 29)), ShouldBeTrue)
				So(r.Contains(day(2020, time.March, 1)), ShouldBeFalse)
				So(r.Contains(day(2020, time.January, 31)), ShouldBeFalse)
				So(r.IsEmpty(), ShouldBeFalse)
			})
		})

		Convey("When the range covers one year", func() {
			r := timerange.ForYear(2019)

			Convey("Then it touches exactly twelve months", func() {
				months := r.MonthsTouched()
				So(months, ShouldHaveLength, 12)
				So(months[0], ShouldResemble, timerange.YearMonth{Year: 2019, Month: 1})
				So(months[11], ShouldResemble, timerange.YearMonth{Year: 2019, Month: 12})
			})
		})

		Convey("When upper does not exceed lower", func() {
			r := timerange.New(day(2020, time.March, 1), day(2020, time.March, 1))

			Convey("Then the range is empty and touches no months", func() {
				So(r.IsEmpty(), ShouldBeTrue)
				So(r.MonthsTouched(), ShouldBeNil)
				So(r.Contains(day(2020, time.March, 1)), ShouldBeFalse)
			})
		})

		Convey("When a range spans a month boundary partially", func() {
			r := timerange.New(day(2020, time.January, 15), day(2020, time.March, 2))

			Convey("Then every intersected month is touched", func() {
				So(r.MonthsTouched(), ShouldResemble, []timerange.YearMonth{
					{Year: 2020, Month: 1},
					{Year: 2020, Month: 2},
					{Year: 2020, Month: 3},
				})
			})

			Convey("And intersecting with a touched month confines the range", func() {
				overlap, ok := r.IntersectWithMonth(2020, 1)
				So(ok, ShouldBeTrue)
				So(overlap.Lower, ShouldEqual, day(2020, time.January, 15))
				So(overlap.Upper, ShouldEqual, day(2020, time.February, 1))
			})

			Convey("And intersecting with a disjoint month reports no overlap", func() {
				_, ok := r.IntersectWithMonth(2020, 6)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestDiff(t *testing.T) {
	Convey("Given two overlapping ranges", t, func() {
		a := timerange.New(day(2020, time.January, 1), day(2020, time.June, 1))
		b := timerange.New(day(2020, time.March, 1), day(2020, time.September, 1))

		Convey("When computing the diff", func() {
			d := timerange.Diff(a, b)

			Convey("Then overlap and non-overlapping parts reconstruct each range", func() {
				So(d.Overlaps, ShouldBeTrue)
				So(d.Overlap.Lower, ShouldEqual, day(2020, time.March, 1))
				So(d.Overlap.Upper, ShouldEqual, day(2020, time.June, 1))

				So(d.NonOverlappingA, ShouldHaveLength, 1)
				So(d.NonOverlappingA[0].Lower, ShouldEqual, day(2020, time.January, 1))
				So(d.NonOverlappingA[0].Upper, ShouldEqual, day(2020, time.March, 1))

				So(d.NonOverlappingB, ShouldHaveLength, 1)
				So(d.NonOverlappingB[0].Lower, ShouldEqual, day(2020, time.June, 1))
				So(d.NonOverlappingB[0].Upper, ShouldEqual, day(2020, time.September, 1))
			})
		})
	})

	Convey("Given one range fully inside another", t, func() {
		outer := timerange.ForYear(2020)
		inner := timerange.ForMonth(2020, 5)

		Convey("When computing the diff", func() {
			d := timerange.Diff(outer, inner)

			Convey("Then the outer range splits into two parts around the inner", func() {
				So(d.Overlaps, ShouldBeTrue)
				So(d.Overlap, ShouldResemble, inner)
				So(d.NonOverlappingA, ShouldHaveLength, 2)
				So(d.NonOverlappingA[0].Upper, ShouldEqual, day(2020, time.May, 1))
				So(d.NonOverlappingA[1].Lower, ShouldEqual, day(2020, time.June, 1))
				So(d.NonOverlappingB, ShouldBeEmpty)
			})
		})
	})

	Convey("Given two identical ranges", t, func() {
		r := timerange.ForMonth(2020, 7)

		Convey("When computing the diff", func() {
			d := timerange.Diff(r, r)

			Convey("Then nothing is non-overlapping", func() {
				So(d.Overlaps, ShouldBeTrue)
				So(d.Overlap, ShouldResemble, r)
				So(d.NonOverlappingA, ShouldBeEmpty)
				So(d.NonOverlappingB, ShouldBeEmpty)
			})
		})
	})

	Convey("Given two disjoint ranges", t, func() {
		a := timerange.ForMonth(2020, 1)
		b := timerange.ForMonth(2020, 3)

		Convey("When computing the diff", func() {
			d := timerange.Diff(a, b)

			Convey("Then there is no overlap and each range survives whole", func() {
				So(d.Overlaps, ShouldBeFalse)
				So(d.NonOverlappingA, ShouldResemble, []timerange.TimeRange{a})
				So(d.NonOverlappingB, ShouldResemble, []timerange.TimeRange{b})
			})
		})
	})
}

func TestRelevantMetricPeriods(t *testing.T) {
	Convey("Given trailing reporting windows ending in a fixed month", t, func() {
		Convey("When the event falls inside the end month itself", func() {
			periods := timerange.RelevantMetricPeriods(day(2020, time.January, 3), 2020, 1)

			Convey("Then every window size applies", func() {
				So(periods, ShouldResemble, []int{36, 12, 6, 3})
			})
		})

		Convey("When the event sits on the 36-month window start", func() {
			periods := timerange.RelevantMetricPeriods(day(2005, time.February, 1), 2008, 1)

			Convey("Then only the largest window applies", func() {
				So(periods, ShouldResemble, []int{36})
			})
		})

		Convey("When the event precedes the 36-month window start by one day", func() {
			periods := timerange.RelevantMetricPeriods(day(2005, time.January, 31), 2008, 1)

			Convey("Then no window applies", func() {
				So(periods, ShouldBeNil)
			})
		})

		Convey("When the event falls after the end month", func() {
			periods := timerange.RelevantMetricPeriods(day(2020, time.February, 1), 2020, 1)

			Convey("Then no window applies", func() {
				So(periods, ShouldBeNil)
			})
		})

		Convey("When the event is on the last day of the end month", func() {
			periods := timerange.RelevantMetricPeriods(day(2020, time.January, 31), 2020, 1)

			Convey("Then every window size applies", func() {
				So(periods, ShouldResemble, []int{36, 12, 6, 3})
			})
		})
	})
}

func TestMonthUpperBound(t *testing.T) {
	Convey("Given a YYYY-MM calculation end month", t, func() {
		Convey("When the value is well formed", func() {
			bound, err := timerange.MonthUpperBound("2009-12")

			Convey("Then the bound is the last day of that month", func() {
				So(err, ShouldBeNil)
				So(bound, ShouldEqual, day(2009, time.December, 31))
			})
		})

		Convey("When the month has fewer days", func() {
			bound, err := timerange.MonthUpperBound("2019-02")

			So(err, ShouldBeNil)
			So(bound, ShouldEqual, day(2019, time.February, 28))
		})

		Convey("When the value is malformed", func() {
			_, err := timerange.MonthUpperBound("2009-31")

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "calculation_end_month")
			})
		})

		Convey("When the value is empty", func() {
			_, err := timerange.MonthUpperBound("")

			So(err, ShouldNotBeNil)
		})
	})
}
