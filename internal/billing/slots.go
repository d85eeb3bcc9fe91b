package billing

import (
	"time"

	"github.com/flexprice/orderbilling/internal/types"
)

// Slot is one aligned pricing period
type Slot struct {
	Ini time.Time
	End time.Time
}

// SlotIterator walks the pricing slots covering a date range. Each iterator
// is independent; call PricingSlots again to restart.
type SlotIterator struct {
	ini    time.Time
	end    time.Time
	period types.BillingPeriod
	year   int
	month  time.Month
	day    int
	step   int
	done   bool
}

// PricingSlots returns the slots covering [ini, end) for a pricing period.
// Slot boundaries fall on the anchor's day (and month for ANNUAL) for
// ON_REGISTER services, or on day one of the month (of annualMonth for
// ANNUAL) for FIXED_DATE services. The first and last slots are clipped to
// the range. A NEVER period yields the single slot [ini, end).
func PricingSlots(ini, end time.Time, period types.BillingPeriod, point types.BillingPoint, anchor time.Time, annualMonth int) (*SlotIterator, error) {
	it := &SlotIterator{ini: ini, end: end, period: period}

	if period == types.BILLING_PERIOD_NEVER {
		return it, nil
	}
	if _, _, err := periodStep(period); err != nil {
		return nil, err
	}

	it.day, it.month = 1, time.Month(annualMonth)
	switch point {
	case types.BILLING_POINT_ON_REGISTER:
		it.day, it.month = anchor.Day(), anchor.Month()
	case types.BILLING_POINT_FIXED_DATE:
	default:
		return nil, unsupportedCombination(period, point)
	}

	it.year = ini.Year()
	if period == types.BILLING_PERIOD_MONTHLY {
		it.month = ini.Month()
	}
	if it.boundary(0).After(ini) {
		it.step = -1
	}
	it.done = !ini.Before(end)
	return it, nil
}

// boundary returns the start of the n-th period after the first anchor.
// Every boundary is computed from the anchor so clamped days do not drift.
func (it *SlotIterator) boundary(n int) time.Time {
	if it.period == types.BILLING_PERIOD_ANNUAL {
		return types.ClampedDate(it.year+n, it.month, it.day)
	}
	total := it.year*12 + int(it.month) - 1 + n
	return types.ClampedDate(total/12, time.Month(total%12+1), it.day)
}

// Next returns the next slot, false once the range is covered
func (it *SlotIterator) Next() (Slot, bool) {
	if it.done {
		return Slot{}, false
	}
	if it.period == types.BILLING_PERIOD_NEVER {
		it.done = true
		return Slot{Ini: it.ini, End: it.end}, true
	}

	start := it.boundary(it.step)
	next := it.boundary(it.step + 1)
	it.step++
	if !next.Before(it.end) {
		it.done = true
	}
	return Slot{
		Ini: types.MaxTime(start, it.ini),
		End: types.MinTime(next, it.end),
	}, true
}

// Collect drains the iterator
func (it *SlotIterator) Collect() []Slot {
	var slots []Slot
	for slot, ok := it.Next(); ok; slot, ok = it.Next() {
		slots = append(slots, slot)
	}
	return slots
}
