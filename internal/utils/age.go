package utils

import (
	"math"
	"time"
)

// AgeInMonths returns the whole calendar months between birth and now plus
// the elapsed fraction of the current month, rounded to two decimals.
// Month ends clamp, so a child born on the 31st turns one month old on the
// last day of a shorter month. Returns 0 when now is before birth.
func AgeInMonths(birth, now time.Time) float64 {
	birth = birth.UTC()
	now = now.UTC()
	if !now.After(birth) {
		return 0
	}

	months := (now.Year()-birth.Year())*12 + int(now.Month()-birth.Month())
	for months > 0 && addMonthsClamped(birth, months).After(now) {
		months--
	}
	for !addMonthsClamped(birth, months+1).After(now) {
		months++
	}

	start := addMonthsClamped(birth, months)
	end := addMonthsClamped(birth, months+1)
	fraction := float64(now.Sub(start)) / float64(end.Sub(start))

	return math.Round((float64(months)+fraction)*100) / 100
}

// addMonthsClamped adds n calendar months to t without overflowing into the
// following month the way time.AddDate does.
func addMonthsClamped(t time.Time, n int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := firstOfMonth.AddDate(0, n, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
