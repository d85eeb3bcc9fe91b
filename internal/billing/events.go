package billing

import (
	"time"

	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	"github.com/samber/lo"
)

// countEvents counts the registrations and renewals of porders within
// (ini, end]. A renewal is a watermark, proposed or persisted, that differs
// from the registration date.
func (r *run) countEvents(porders []*order.Order, ini, end time.Time) int {
	within := func(t time.Time) bool {
		return t.After(ini) && !t.After(end)
	}

	count := 0
	for _, o := range porders {
		until := r.updates.Watermark(o)
		if until == nil {
			continue
		}
		if within(o.RegisteredOn) {
			count++
		}
		if !o.RegisteredOn.Equal(*until) && within(*until) {
			count++
		}
		if prior := o.BilledUntil; prior != nil && !prior.Equal(*until) {
			if !o.RegisteredOn.Equal(*prior) && within(*prior) {
				count++
			}
		}
	}
	return count
}

// billEvents prices every pending order at its position among the
// registrations and renewals of the pricing period before its pending start
func (r *run) billEvents(billed, porders []*order.Order, rates service.Rates) ([]*line.Line, error) {
	isBilled := lo.SliceToMap(billed, func(o *order.Order) (string, bool) { return o.ID, true })

	var lines []*line.Line
	for i, o := range porders {
		if !isBilled[o.ID] {
			continue
		}
		window, ok := r.window(o)
		if !ok {
			continue
		}

		pini, err := shiftPeriods(window.Ini, r.svc.PricingPeriod, -1)
		if err != nil {
			return nil, err
		}
		events := r.countEvents(porders, pini, window.Ini)
		position := int64(lo.Max([]int{1, lo.Min([]int{i + 1, events})}))
		price := r.svc.PriceAt(rates, position)

		r.logger.Debugw("pricing order at renewal position",
			"order_id", o.ID,
			"events", events,
			"position", position,
			"price", price,
		)

		l, err := r.nominalLine(o, window, price)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}
