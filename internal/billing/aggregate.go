package billing

import (
	"math"
	"time"

	"github.com/sadopc/smartbill/internal/model"
)

// DayHours is one bucket of the daily hours chart.
type DayHours struct {
	Date  time.Time // midnight, in the aggregation location
	Hours float64
}

// Label formats the bucket date the way the chart axis shows it.
func (d DayHours) Label() string {
	return d.Date.Format("Mon 02")
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// AggregateDaily sums entry durations per calendar day for every day from
// from to to, inclusive. Days are taken in loc (time.Local when nil), both
// for the range and for each entry's timestamp. Hours are rounded to one
// decimal, half away from zero. Days without entries are present with zero
// hours, and from after to yields an empty slice.
//
// Any entry with an unparseable timestamp fails the whole call with a
// *TimestampError, even when it would fall outside the range.
func AggregateDaily(entries []model.TimeEntry, from, to time.Time, loc *time.Location) ([]DayHours, error) {
	if loc == nil {
		loc = time.Local
	}

	seconds := make(map[dayKey]int64)
	for _, e := range entries {
		ts, err := entryTime(e.ID, e.Timestamp, loc)
		if err != nil {
			return nil, err
		}
		seconds[keyOf(ts.In(loc))] += e.Duration
	}

	start := StartOfDay(from, loc)
	end := StartOfDay(to, loc)

	days := []DayHours{}
	for d := start; !d.After(end); d = time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc) {
		days = append(days, DayHours{
			Date:  d,
			Hours: roundTenth(hours(seconds[keyOf(d)])),
		})
	}
	return days, nil
}

// LastDays returns the inclusive range of n calendar days ending on the day
// of now, shifted back by offset blocks of n days.
func LastDays(now time.Time, n, offset int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	if n < 1 {
		n = 1
	}
	today := StartOfDay(now, loc)
	to := time.Date(today.Year(), today.Month(), today.Day()-n*offset, 0, 0, 0, 0, loc)
	from := time.Date(to.Year(), to.Month(), to.Day()-(n-1), 0, 0, 0, 0, loc)
	return from, to
}

func hours(secs int64) float64 {
	return float64(secs) / 3600
}

// math.Round rounds half away from zero.
func roundTenth(h float64) float64 {
	return math.Round(h*10) / 10
}
