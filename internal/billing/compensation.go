package billing

import (
	"sort"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/shopspring/decimal"
)

// Ledger moves the unused prepaid time of cancelled orders to the other
// orders of the same service and account during one run
type Ledger struct {
	updates Updates
	period  types.BillingPeriod
	// ratio is how many times longer than the gap to the billing point a
	// credit must be for the point to be extended over it
	ratio int
}

func NewLedger(updates Updates, period types.BillingPeriod, ratio int) *Ledger {
	return &Ledger{updates: updates, period: period, ratio: ratio}
}

// Assign builds the credit pool from the givers and lets every receiver with
// pending time consume from it. Receivers are served in the order given, so
// callers sort them with order.SortByPendingStart. It returns the givers whose
// proposed watermark moved.
func (l *Ledger) Assign(givers, receivers []*order.Order) []*order.Order {
	var pool []Interval
	for _, o := range givers {
		if o.IsBilledPastCancellation() {
			pool = append(pool, NewInterval(*o.CancelledOn, *o.BilledUntil, o))
		}
	}

	var moved []*order.Order
	for _, o := range receivers {
		proposed, ok := l.updates.Proposed(o)
		if !ok || (o.BilledUntil != nil && !o.BilledUntil.Before(proposed)) {
			continue
		}

		var used []Interval
		pool, used = compensate(NewInterval(o.PendingStart(), o.CancelledOrMax(), o), pool)
		if len(used) == 0 {
			continue
		}
		l.updates.entry(o).Compensations = used

		for _, piece := range used {
			giver := piece.Owner
			until := types.MinTime(*giver.BilledUntil, piece.Ini)
			if current, ok := l.updates.Proposed(giver); ok {
				until = types.MinTime(until, current)
			} else {
				moved = append(moved, giver)
			}
			entry := l.updates.entry(giver)
			entry.BilledUntil = until
			entry.Giver = true
		}
	}
	return moved
}

// Apply returns how many periods of an order's pending time are paid by
// consumed credit, and the extended billing point when credit reaches past
// the proposed one. With onlyBeyond set only credit past the proposed point
// counts, the pending window itself being priced elsewhere.
func (l *Ledger) Apply(o *order.Order, onlyBeyond bool) (decimal.Decimal, *time.Time, error) {
	size := decimal.Zero
	proposed, ok := l.updates.Proposed(o)
	if !ok {
		return size, nil, nil
	}

	var (
		window = NewInterval(o.PendingStart(), proposed, o)
		beyond = proposed
		newEnd *time.Time
	)
	for _, comp := range l.updates.Compensations(o) {
		var cini, cend time.Time
		if overlap, ok := Intersect(comp, window); ok {
			cini, cend = overlap.Ini, overlap.End
			if comp.End.After(beyond) {
				cend = comp.End
				if onlyBeyond {
					cini = beyond
				}
			} else if onlyBeyond {
				continue
			}
		} else if comp.End.After(beyond) && comp.Days() > l.ratio*types.Days(beyond, comp.Ini) {
			// credit long enough to be worth stretching the billing point
			cini, cend = comp.Ini, comp.End
		} else {
			continue
		}

		csize, err := PriceSize(cini, cend, l.period)
		if err != nil {
			return decimal.Zero, nil, err
		}
		size = size.Add(csize)
		if cend.After(beyond) && (newEnd == nil || cend.After(*newEnd)) {
			newEnd = &cend
		}
	}
	return size, newEnd, nil
}

// compensate consumes credit from pool for target, largest overlap first.
// Consumed pieces leave the pool and are returned as used, leftovers stay.
// Every day of target is paid for at most once.
func compensate(target Interval, pool []Interval) (rest, used []Interval) {
	rest = append([]Interval(nil), pool...)
	targets := []Interval{target}

	for {
		best, bestTarget := -1, -1
		var overlap Interval
		for i, credit := range rest {
			for j, t := range targets {
				if x, ok := Intersect(credit, t); ok && (best < 0 || x.Days() > overlap.Days()) {
					best, bestTarget, overlap = i, j, x
				}
			}
		}
		if best < 0 {
			break
		}

		credit, t := rest[best], targets[bestTarget]
		rest = append(rest[:best:best], rest[best+1:]...)
		rest = append(rest, credit.Sub(overlap)...)
		targets = append(targets[:bestTarget:bestTarget], targets[bestTarget+1:]...)
		targets = append(targets, t.Sub(overlap)...)
		used = append(used, overlap)
	}

	sort.SliceStable(used, func(i, j int) bool {
		return used[i].Ini.Before(used[j].Ini)
	})
	return rest, used
}
