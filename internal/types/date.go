package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Billing dates carry no time of day. Every date handled by the engine is
// normalised to midnight UTC.
var (
	// MinDate and MaxDate stand for open interval bounds
	MinDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Date builds a UTC date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ToDate drops the clock and zone of t, keeping its calendar day
func ToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// DaysIn returns the number of days of the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLeap reports whether year is a leap year
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years and 365 otherwise
func DaysInYear(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// ClampedDate builds a date whose day is clamped to the length of the month,
// so day 31 in February lands on the 28th or 29th.
func ClampedDate(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date(year, month, day)
}

// AddClampedDate adds years and months to t clamping the day to the last valid
// day of the resulting month, then adds days.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()

	total := y*12 + int(m) - 1 + years*12 + months
	newY := total / 12
	newM := time.Month(total%12 + 1)

	return ClampedDate(newY, newM, d).AddDate(0, 0, days)
}

// Days returns the whole number of days between two dates
func Days(from, to time.Time) int {
	return int(ToDate(to).Sub(ToDate(from)).Hours() / 24)
}

// CalendarDelta is the difference between two dates expressed the way people
// count them: whole years, then whole months, then the remaining days.
type CalendarDelta struct {
	Years  int
	Months int
	Days   int
}

// Delta computes the calendar difference end - ini. Months are counted with
// day clamping; when end is before ini every component is negative or zero.
func Delta(end, ini time.Time) CalendarDelta {
	end, ini = ToDate(end), ToDate(ini)
	months := (end.Year()*12 + int(end.Month())) - (ini.Year()*12 + int(ini.Month()))

	shifted := AddClampedDate(ini, 0, months, 0)
	if end.Before(ini) {
		for end.After(shifted) {
			months++
			shifted = AddClampedDate(ini, 0, months, 0)
		}
	} else {
		for end.Before(shifted) {
			months--
			shifted = AddClampedDate(ini, 0, months, 0)
		}
	}

	sign := 1
	if months < 0 {
		sign = -1
	}
	return CalendarDelta{
		Years:  sign * ((sign * months) / 12),
		Months: sign * ((sign * months) % 12),
		Days:   Days(shifted, end),
	}
}

// TotalMonths returns years*12 + months as a decimal
func (d CalendarDelta) TotalMonths() decimal.Decimal {
	return decimal.NewFromInt(int64(d.Years*12 + d.Months))
}

// MinTime returns the earliest of the given times
func MinTime(first time.Time, rest ...time.Time) time.Time {
	m := first
	for _, t := range rest {
		if t.Before(m) {
			m = t
		}
	}
	return m
}

// MaxTime returns the latest of the given times
func MaxTime(first time.Time, rest ...time.Time) time.Time {
	m := first
	for _, t := range rest {
		if t.After(m) {
			m = t
		}
	}
	return m
}
