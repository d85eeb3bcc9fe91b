package billing

import (
	"sort"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// chunk is a stretch of time over which the set of active orders is constant
type chunk struct {
	Interval
	active []*order.Order
}

// chunks splits [ini, end) wherever an order starts or stops being active or
// starts its pending window. Active orders keep the order of porders.
func (r *run) chunks(porders []*order.Order, ini, end time.Time) []chunk {
	points := []time.Time{ini, end}
	for _, o := range porders {
		points = append(points, o.RegisteredOn, r.activeEnd(o), o.PendingStart())
	}
	points = lo.Filter(points, func(t time.Time, _ int) bool {
		return !t.Before(ini) && !t.After(end)
	})
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })
	points = lo.UniqBy(points, func(t time.Time) int64 { return t.Unix() })

	var chunks []chunk
	for i := 0; i+1 < len(points); i++ {
		c := chunk{Interval: NewInterval(points[i], points[i+1], nil)}
		c.active = lo.Filter(porders, func(o *order.Order, _ int) bool {
			return !o.RegisteredOn.After(c.Ini) && !r.activeEnd(o).Before(c.End)
		})
		if len(c.active) > 0 {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

type concurrentTotal struct {
	price  decimal.Decimal
	cprice decimal.Decimal
	unit   decimal.Decimal
}

// billConcurrent prices every order at its position among the orders active
// at the same time. Totals are accumulated chunk by chunk over each order's
// own pending window and one line per order covers the whole window.
func (r *run) billConcurrent(billed, porders []*order.Order, rates service.Rates, ini, end time.Time) ([]*line.Line, error) {
	isBilled := lo.SliceToMap(billed, func(o *order.Order) (string, bool) { return o.ID, true })
	totals := make(map[string]*concurrentTotal)

	for _, c := range r.chunks(porders, ini, end) {
		size, err := PriceSize(c.Ini, c.End, r.svc.BillingPeriod)
		if err != nil {
			return nil, err
		}
		for i, o := range c.active {
			if !isBilled[o.ID] {
				continue
			}
			window, ok := r.window(o)
			if !ok || !window.Contains(c.Interval) {
				continue
			}

			unit := r.svc.PriceAt(rates, int64(i+1))
			csize := decimal.Zero
			for _, comp := range r.updates.Compensations(o) {
				if overlap, ok := Intersect(comp, c.Interval); ok {
					s, err := PriceSize(overlap.Ini, overlap.End, r.svc.BillingPeriod)
					if err != nil {
						return nil, err
					}
					csize = csize.Add(s)
				}
			}

			total, ok := totals[o.ID]
			if !ok {
				total = &concurrentTotal{price: decimal.Zero, cprice: decimal.Zero}
				totals[o.ID] = total
			}
			total.price = total.price.Add(unit.Mul(size))
			total.cprice = total.cprice.Add(unit.Mul(csize))
			total.unit = unit
		}
	}

	var lines []*line.Line
	for _, o := range porders {
		if !isBilled[o.ID] {
			continue
		}
		window, ok := r.window(o)
		if !ok {
			continue
		}
		if window.End.Before(window.Ini) {
			l, err := r.refundConcurrent(o, porders, rates, window)
			if err != nil {
				return nil, err
			}
			lines = append(lines, l)
			continue
		}

		total, ok := totals[o.ID]
		if !ok {
			continue
		}

		// credit reaching past the billing point
		dsize, newEnd, err := r.ledger.Apply(o, true)
		if err != nil {
			return nil, err
		}
		total.cprice = total.cprice.Add(dsize.Mul(total.unit))

		lineEnd := window.End
		if newEnd != nil {
			extra, err := PriceSize(window.End, *newEnd, r.svc.BillingPeriod)
			if err != nil {
				return nil, err
			}
			total.price = total.price.Add(total.unit.Mul(extra))
			lineEnd = *newEnd
			r.updates.Propose(o, lineEnd)
		}

		opts := []LineOption{WithComputedPrice()}
		if !total.cprice.IsZero() {
			opts = append(opts, WithDiscounts(compensationDiscount(total.cprice)))
		}
		l, err := r.lines.Generate(o, total.price, []time.Time{window.Ini, lineEnd}, opts...)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// refundConcurrent bills back the time between the cancellation and the
// watermark of a refunded order, at its position on the cancellation date
func (r *run) refundConcurrent(o *order.Order, porders []*order.Order, rates service.Rates, window Interval) (*line.Line, error) {
	position := int64(1)
	for _, other := range porders {
		if other.ID == o.ID {
			break
		}
		if !other.RegisteredOn.After(window.End) && r.activeEnd(other).After(window.End) {
			position++
		}
	}
	size, err := PriceSize(window.Ini, window.End, r.svc.BillingPeriod)
	if err != nil {
		return nil, err
	}
	price := r.svc.PriceAt(rates, position).Mul(size)
	return r.lines.Generate(o, price, []time.Time{window.Ini, window.End}, WithComputedPrice())
}
