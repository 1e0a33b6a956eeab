package tolls

import "time"

// WeekOfYear computes the week bucket used by historical toll rows:
//
//	week = ceil((zeroBasedDayOfYear + weekdayOfJan1 + 1) / 7)
//
// with weekdays numbered Sunday=0. This is NOT ISO 8601 week numbering.
// Stored week_of_year/year columns were written with this formula, so it has
// to stay bit-compatible; switching to ISO weeks would reshuffle every
// historical summary.
func WeekOfYear(t time.Time) (week, year int) {
	year = t.Year()
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location())
	dayIdx := t.YearDay() - 1
	offset := int(jan1.Weekday())
	week = (dayIdx + offset + 1 + 6) / 7
	return week, year
}

// WeekBounds inverts WeekOfYear: the calendar span [start, end] of the given
// week bucket. Week 1 can start in the previous December and the last week
// can run into January, so WeekOfYear(start) == week is not guaranteed at
// year boundaries.
func WeekBounds(year, week int) (start, end time.Time) {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	offset := int(jan1.Weekday())
	start = jan1.AddDate(0, 0, (week-1)*7-offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}
