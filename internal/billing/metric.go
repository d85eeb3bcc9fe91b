package billing

import (
	"time"

	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/metric"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/shopspring/decimal"
)

// billMetric prices orders by their measured usage
func (r *run) billMetric(orders []*order.Order, rates service.Rates) ([]*line.Line, error) {
	var lines []*line.Line
	for _, o := range orders {
		point, err := r.points.Resolve(o)
		if err != nil {
			return nil, err
		}

		if r.svc.BillingPeriod.IsPeriodic() &&
			r.svc.PricingPeriod == types.BILLING_PERIOD_NEVER &&
			r.svc.PaymentStyle == types.PAYMENT_STYLE_PREPAY &&
			o.BilledOn != nil {
			recharge, err := r.recharge(o, rates, point)
			if err != nil {
				return nil, err
			}
			if recharge != nil {
				lines = append(lines, recharge)
			}
		}

		if o.CancelledOn != nil && o.BilledUntil != nil && !o.CancelledOn.After(*o.BilledUntil) {
			continue
		}

		var billed []*line.Line
		if r.svc.BillingPeriod.IsPeriodic() {
			billed, err = r.billPeriodicMetric(o, rates, point)
		} else {
			billed, err = r.billOneTimeMetric(o, rates)
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, billed...)
	}
	return lines, nil
}

func (r *run) billPeriodicMetric(o *order.Order, rates service.Rates, point time.Time) ([]*line.Line, error) {
	ini := o.PendingStart()
	if !point.After(ini) {
		return nil, nil
	}
	r.updates.Propose(o, point)

	var lines []*line.Line
	switch r.svc.PricingPeriod {
	case types.BILLING_PERIOD_NEVER:
		for _, segment := range r.changes(o, ini, point) {
			price := r.svc.Accumulated(rates, segment.Value)
			l, err := r.lines.Generate(o, price, []time.Time{segment.Ini, segment.End}, WithMetric(segment.Value))
			if err != nil {
				return nil, err
			}
			lines = append(lines, l)
		}
	case r.svc.BillingPeriod:
		if r.svc.PaymentStyle == types.PAYMENT_STYLE_PREPAY {
			return nil, ierr.NewError("usage priced per period cannot be prepaid").
				WithHint("Use POSTPAY for services priced by usage slots").
				WithReportableDetails(map[string]any{
					"service_id": r.svc.ID,
				}).
				Mark(ierr.ErrUnsupportedConfiguration)
		}
		slots, err := PricingSlots(ini, point, r.svc.PricingPeriod, r.svc.BillingPoint, o.RegisteredOn, r.annualMonth)
		if err != nil {
			return nil, err
		}
		for slot, ok := slots.Next(); ok; slot, ok = slots.Next() {
			value, err := r.metrics.Aggregate(r.ctx, o, slot.Ini, slot.End)
			if err != nil {
				value = r.degrade(o, err)
			}
			price := r.svc.Accumulated(rates, value)
			l, err := r.lines.Generate(o, price, []time.Time{slot.Ini, slot.End}, WithMetric(value))
			if err != nil {
				return nil, err
			}
			lines = append(lines, l)
		}
	default:
		return nil, unsupportedPricing(r.svc)
	}
	return lines, nil
}

func (r *run) billOneTimeMetric(o *order.Order, rates service.Rates) ([]*line.Line, error) {
	if o.BilledUntil != nil {
		return nil, nil
	}
	if r.svc.PricingPeriod != types.BILLING_PERIOD_NEVER {
		return nil, unsupportedPricing(r.svc)
	}

	today := r.opts.Today()
	r.updates.Propose(o, today)

	value, err := r.metrics.Sample(r.ctx, o, today)
	if err != nil {
		value = r.degrade(o, err)
	}
	price := r.svc.Accumulated(rates, value)
	l, err := r.lines.Generate(o, price, []time.Time{today}, WithMetric(value))
	if err != nil {
		return nil, err
	}
	return []*line.Line{l}, nil
}

// recharge bills the usage of a prepaid period that went over what was
// charged when the period was billed
func (r *run) recharge(o *order.Order, rates service.Rates, point time.Time) (*line.Line, error) {
	rini := types.ToDate(*o.BilledOn)
	if !rini.Before(point) {
		return nil, nil
	}
	segments := r.changes(o, rini, point)
	if len(segments) == 0 {
		return nil, nil
	}

	charged := segments[0].Value
	newPrice, newMetric := decimal.Zero, decimal.Zero
	for _, segment := range segments {
		size, err := PriceSize(segment.Ini, segment.End, r.svc.BillingPeriod)
		if err != nil {
			return nil, err
		}
		newPrice = newPrice.Add(r.svc.Accumulated(rates, segment.Value).Mul(size))
		newMetric = newMetric.Add(segment.Value)
	}

	size, err := PriceSize(rini, point, r.svc.BillingPeriod)
	if err != nil {
		return nil, err
	}
	oldPrice := r.svc.Accumulated(rates, charged).Mul(size)
	if !newPrice.GreaterThan(oldPrice) {
		return nil, nil
	}

	r.logger.Infow("recharging usage over prepaid metric",
		"order_id", o.ID,
		"charged", charged,
		"used", newMetric,
		"amount", newPrice.Sub(oldPrice),
	)
	return r.lines.Generate(o, newPrice.Sub(oldPrice), []time.Time{rini, point},
		WithMetric(newMetric.Sub(charged)), WithComputedPrice())
}

// changes reads the metric segments of [ini, end). An unreadable source
// counts as zero usage over the whole range.
func (r *run) changes(o *order.Order, ini, end time.Time) []metric.Segment {
	segments, err := r.metrics.Changes(r.ctx, o, ini, end)
	if err != nil {
		return []metric.Segment{{Ini: ini, End: end, Value: r.degrade(o, err)}}
	}
	return segments
}

func (r *run) degrade(o *order.Order, err error) decimal.Decimal {
	r.logger.Warnw("metric source unavailable, billing zero usage",
		"order_id", o.ID,
		"service_id", r.svc.ID,
		"error", err,
	)
	return decimal.Zero
}

func unsupportedPricing(svc *service.Service) error {
	return ierr.NewErrorf("pricing period %s is not supported with billing period %s", svc.PricingPeriod, svc.BillingPeriod).
		WithHint("Use no pricing period or the same pricing period as the billing period").
		WithReportableDetails(map[string]any{
			"service_id":     svc.ID,
			"billing_period": svc.BillingPeriod,
			"pricing_period": svc.PricingPeriod,
		}).
		Mark(ierr.ErrUnsupportedConfiguration)
}
