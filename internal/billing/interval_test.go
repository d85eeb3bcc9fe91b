package billing

import (
	"testing"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/stretchr/testify/assert"
)

func d(year int, month time.Month, day int) time.Time {
	return types.Date(year, month, day)
}

func TestIntersect(t *testing.T) {
	owner := &order.Order{ID: "giver"}
	tests := []struct {
		name     string
		a, b     Interval
		expected *Interval
	}{
		{
			name:     "overlapping",
			a:        NewInterval(d(2020, 1, 1), d(2020, 2, 1), owner),
			b:        NewInterval(d(2020, 1, 15), d(2020, 3, 1), nil),
			expected: &Interval{Ini: d(2020, 1, 15), End: d(2020, 2, 1), Owner: owner},
		},
		{
			name:     "contained",
			a:        NewInterval(d(2020, 1, 1), d(2020, 12, 1), owner),
			b:        NewInterval(d(2020, 3, 1), d(2020, 4, 1), nil),
			expected: &Interval{Ini: d(2020, 3, 1), End: d(2020, 4, 1), Owner: owner},
		},
		{
			name: "touching_is_not_overlapping",
			a:    NewInterval(d(2020, 1, 1), d(2020, 2, 1), owner),
			b:    NewInterval(d(2020, 2, 1), d(2020, 3, 1), nil),
		},
		{
			name: "disjoint",
			a:    NewInterval(d(2020, 3, 1), d(2020, 4, 1), owner),
			b:    NewInterval(d(2020, 1, 1), d(2020, 2, 1), nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Intersect(tt.a, tt.b)
			if tt.expected == nil {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, *tt.expected, got)
		})
	}
}

func TestInterval_Sub(t *testing.T) {
	owner := &order.Order{ID: "giver"}
	credit := NewInterval(d(2020, 3, 1), d(2020, 4, 1), owner)

	rest := credit.Sub(NewInterval(d(2020, 3, 10), d(2020, 3, 20), nil))
	assert.Equal(t, []Interval{
		{Ini: d(2020, 3, 1), End: d(2020, 3, 10), Owner: owner},
		{Ini: d(2020, 3, 20), End: d(2020, 4, 1), Owner: owner},
	}, rest)

	assert.Empty(t, credit.Sub(NewInterval(d(2020, 1, 1), d(2020, 5, 1), nil)))
	assert.Equal(t, []Interval{credit}, credit.Sub(NewInterval(d(2020, 5, 1), d(2020, 6, 1), nil)))
}

func TestInterval_Days(t *testing.T) {
	assert.Equal(t, 31, NewInterval(d(2020, 3, 1), d(2020, 4, 1), nil).Days())
	assert.Equal(t, 0, NewInterval(d(2020, 4, 1), d(2020, 3, 1), nil).Days())
	assert.True(t, NewInterval(d(2020, 4, 1), d(2020, 4, 1), nil).IsEmpty())
}
