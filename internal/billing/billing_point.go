package billing

import (
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
)

// Options tune a billing run. The zero value is a dry run that never
// commits; start from DefaultOptions for a run that persists watermarks.
type Options struct {
	// Now is today for the run, time.Now when zero
	Now time.Time
	// BillingPoint replaces today as the date the billing point is derived from
	BillingPoint *time.Time
	// FixedPoint uses BillingPoint (or today) as the billing point itself
	FixedPoint bool
	// Commit persists watermarks through the order repository
	Commit bool
	// Proforma computes lines only, it forces Commit off
	Proforma bool
}

// DefaultOptions bills up to the natural billing point and commits
func DefaultOptions() Options {
	return Options{Commit: true}
}

// Today returns the run date with the time of day dropped
func (o Options) Today() time.Time {
	if o.Now.IsZero() {
		return types.ToDate(time.Now().UTC())
	}
	return types.ToDate(o.Now)
}

func (o Options) start() time.Time {
	if o.BillingPoint != nil {
		return types.ToDate(*o.BillingPoint)
	}
	return o.Today()
}

// PointResolver computes the date each order is billed up to in one run.
// For periodic services the point is computed from the first order resolved
// and shared by the rest of the run, unless the service bills on a fixed date
// and the run fixes the point. Cancellation truncation is always per order.
type PointResolver struct {
	svc         *service.Service
	opts        Options
	annualMonth int
	memo        *time.Time
}

func NewPointResolver(svc *service.Service, opts Options, annualMonth int) *PointResolver {
	return &PointResolver{svc: svc, opts: opts, annualMonth: annualMonth}
}

// Resolve returns the billing point of an order, truncated to its
// cancellation date unless the service does nothing on cancel
func (r *PointResolver) Resolve(o *order.Order) (time.Time, error) {
	point, err := r.untruncated(o)
	if err != nil {
		return time.Time{}, err
	}
	if r.svc.OnCancel != types.ON_CANCEL_NOTHING && o.CancelledOn != nil && o.CancelledOn.Before(point) {
		return types.ToDate(*o.CancelledOn), nil
	}
	return point, nil
}

func (r *PointResolver) cacheable() bool {
	if r.svc.BillingPoint == types.BILLING_POINT_FIXED_DATE && r.opts.FixedPoint {
		return false
	}
	// one-time points are the registration date of each order
	return r.svc.BillingPeriod.IsPeriodic()
}

func (r *PointResolver) untruncated(o *order.Order) (time.Time, error) {
	if r.memo != nil && r.cacheable() {
		return *r.memo, nil
	}

	start := r.opts.start()
	if r.opts.FixedPoint {
		return start, nil
	}

	var (
		point time.Time
		err   error
	)
	switch r.svc.BillingPeriod {
	case types.BILLING_PERIOD_MONTHLY:
		point, err = r.monthly(o, start)
	case types.BILLING_PERIOD_ANNUAL:
		point, err = r.annual(o, start)
	case types.BILLING_PERIOD_NEVER:
		point = types.ToDate(o.RegisteredOn)
	default:
		err = unsupportedCombination(r.svc.BillingPeriod, r.svc.BillingPoint)
	}
	if err != nil {
		return time.Time{}, err
	}

	if r.cacheable() {
		r.memo = &point
	}
	return point, nil
}

func (r *PointResolver) monthly(o *order.Order, start time.Time) (time.Time, error) {
	date := r.opts.Today()
	if r.svc.PaymentStyle == types.PAYMENT_STYLE_PREPAY {
		date = types.AddClampedDate(start, 0, 1, 0)
	}

	var day int
	switch r.svc.BillingPoint {
	case types.BILLING_POINT_ON_REGISTER:
		day = o.RegisteredOn.Day()
	case types.BILLING_POINT_FIXED_DATE:
		day = 1
	default:
		return time.Time{}, unsupportedCombination(r.svc.BillingPeriod, r.svc.BillingPoint)
	}
	return types.ClampedDate(date.Year(), date.Month(), day), nil
}

func (r *PointResolver) annual(o *order.Order, start time.Time) (time.Time, error) {
	var (
		month time.Month
		day   int
	)
	switch r.svc.BillingPoint {
	case types.BILLING_POINT_ON_REGISTER:
		month, day = o.RegisteredOn.Month(), o.RegisteredOn.Day()
	case types.BILLING_POINT_FIXED_DATE:
		month, day = time.Month(r.annualMonth), 1
	default:
		return time.Time{}, unsupportedCombination(r.svc.BillingPeriod, r.svc.BillingPoint)
	}

	year := start.Year()
	if start.Month() >= month {
		year++
	}
	if r.svc.PaymentStyle == types.PAYMENT_STYLE_POSTPAY {
		year--
	}
	return types.ClampedDate(year, month, day), nil
}

func unsupportedCombination(period types.BillingPeriod, point types.BillingPoint) error {
	return ierr.NewErrorf("support for %s period and %s point is not implemented", period, point).
		WithHint("Change the billing period or billing point of the service").
		WithReportableDetails(map[string]any{
			"billing_period": period,
			"billing_point":  point,
		}).
		Mark(ierr.ErrUnsupportedConfiguration)
}
