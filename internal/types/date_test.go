package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

func TestToDate(t *testing.T) {
	assert.Equal(t, Date(2020, 3, 1), ToDate(time.Date(2020, 3, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, Date(2020, 3, 2), ToDate(time.Date(2020, 3, 2, 1, 0, 0, 0, ist)), "calendar day of the zone")
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2020, time.February))
	assert.Equal(t, 28, DaysIn(2100, time.February))
	assert.Equal(t, 31, DaysIn(2021, time.December))
	assert.Equal(t, 366, DaysInYear(2000))
	assert.Equal(t, 365, DaysInYear(1900))
}

func TestAddClampedDate(t *testing.T) {
	tests := []struct {
		name   string
		from   time.Time
		years  int
		months int
		days   int
		want   time.Time
	}{
		{"end of month into february", Date(2020, 1, 31), 0, 1, 0, Date(2020, 2, 29)},
		{"no drift back to 31", Date(2020, 2, 29), 0, 1, 0, Date(2020, 3, 29)},
		{"across the year", Date(2020, 11, 30), 0, 3, 0, Date(2021, 2, 28)},
		{"backwards", Date(2020, 3, 31), 0, -1, 0, Date(2020, 2, 29)},
		{"leap day plus a year", Date(2020, 2, 29), 1, 0, 0, Date(2021, 2, 28)},
		{"days after clamping", Date(2020, 1, 31), 0, 1, 1, Date(2020, 3, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddClampedDate(tt.from, tt.years, tt.months, tt.days))
		})
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name     string
		end, ini time.Time
		want     CalendarDelta
	}{
		{"one month", Date(2020, 2, 15), Date(2020, 1, 15), CalendarDelta{Months: 1}},
		{"clamped month end", Date(2020, 2, 29), Date(2020, 1, 31), CalendarDelta{Months: 1}},
		{"days only", Date(2020, 1, 16), Date(2020, 1, 1), CalendarDelta{Days: 15}},
		{"years months days", Date(2021, 3, 15), Date(2020, 1, 10), CalendarDelta{Years: 1, Months: 2, Days: 5}},
		{"reversed month", Date(2020, 2, 1), Date(2020, 3, 1), CalendarDelta{Months: -1}},
		{"reversed with days", Date(2020, 1, 20), Date(2020, 3, 1), CalendarDelta{Months: -1, Days: -12}},
		{"same day", Date(2020, 5, 5), Date(2020, 5, 5), CalendarDelta{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delta(tt.end, tt.ini))
		})
	}
}

func TestMinMaxTime(t *testing.T) {
	a, b, c := Date(2020, 1, 1), Date(2020, 6, 1), Date(2019, 1, 1)
	assert.Equal(t, c, MinTime(a, b, c))
	assert.Equal(t, b, MaxTime(a, b, c))
	assert.Equal(t, a, MinTime(a))
	assert.Equal(t, 366, Days(a, Date(2021, 1, 1)))
}
