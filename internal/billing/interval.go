package billing

import (
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/types"
)

// Interval is the half-open date range [Ini, End). Owner is set when the
// range belongs to an order, ex the unused prepaid tail of a cancelled order.
type Interval struct {
	Ini   time.Time
	End   time.Time
	Owner *order.Order
}

func NewInterval(ini, end time.Time, owner *order.Order) Interval {
	return Interval{Ini: ini, End: end, Owner: owner}
}

// IsEmpty reports whether the interval contains no date
func (i Interval) IsEmpty() bool {
	return !i.Ini.Before(i.End)
}

// Days is the number of dates in the interval
func (i Interval) Days() int {
	if i.IsEmpty() {
		return 0
	}
	return types.Days(i.Ini, i.End)
}

// Contains reports whether other lies entirely inside i
func (i Interval) Contains(other Interval) bool {
	return !other.Ini.Before(i.Ini) && !other.End.After(i.End)
}

// Intersect returns the overlap of a and b, owned by a's owner. There is no
// overlap when a.End <= b.Ini or b.End <= a.Ini.
func Intersect(a, b Interval) (Interval, bool) {
	if !a.End.After(b.Ini) || !b.End.After(a.Ini) {
		return Interval{}, false
	}
	return Interval{
		Ini:   types.MaxTime(a.Ini, b.Ini),
		End:   types.MinTime(a.End, b.End),
		Owner: a.Owner,
	}, true
}

// Sub returns what is left of i once other is removed, zero, one or two
// intervals owned by i's owner
func (i Interval) Sub(other Interval) []Interval {
	overlap, ok := Intersect(i, other)
	if !ok {
		return []Interval{i}
	}
	var rest []Interval
	if i.Ini.Before(overlap.Ini) {
		rest = append(rest, Interval{Ini: i.Ini, End: overlap.Ini, Owner: i.Owner})
	}
	if overlap.End.Before(i.End) {
		rest = append(rest, Interval{Ini: overlap.End, End: i.End, Owner: i.Owner})
	}
	return rest
}
