package billing

import (
	"time"

	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/shopspring/decimal"
)

// PriceSize converts [ini, end) into a fractional count of periods. Whole
// months and years are counted on the calendar and the remaining days are
// divided by the length of end's month (MONTHLY) or year (ANNUAL). One-time
// periods always have size one. Reversed ranges give negative sizes.
func PriceSize(ini, end time.Time, period types.BillingPeriod) (decimal.Decimal, error) {
	switch period {
	case types.BILLING_PERIOD_MONTHLY:
		delta := types.Delta(end, ini)
		days := decimal.NewFromInt(int64(delta.Days)).
			Div(decimal.NewFromInt(int64(types.DaysIn(end.Year(), end.Month()))))
		return delta.TotalMonths().Add(days), nil
	case types.BILLING_PERIOD_ANNUAL:
		delta := types.Delta(end, ini)
		months := decimal.NewFromInt(int64(delta.Months)).Div(decimal.NewFromInt(12))
		days := decimal.NewFromInt(int64(delta.Days)).
			Div(decimal.NewFromInt(int64(types.DaysInYear(end.Year()))))
		return decimal.NewFromInt(int64(delta.Years)).Add(months).Add(days), nil
	case types.BILLING_PERIOD_NEVER:
		return decimal.NewFromInt(1), nil
	default:
		return decimal.Zero, ierr.NewErrorf("unsupported billing period %q", period).
			WithHint("Billing period must be NEVER, MONTHLY or ANNUAL").
			Mark(ierr.ErrUnsupportedConfiguration)
	}
}

// periodStep returns the years and months one period spans
func periodStep(period types.BillingPeriod) (years, months int, err error) {
	switch period {
	case types.BILLING_PERIOD_MONTHLY:
		return 0, 1, nil
	case types.BILLING_PERIOD_ANNUAL:
		return 1, 0, nil
	default:
		return 0, 0, ierr.NewErrorf("period %q has no length", period).
			WithHint("Only MONTHLY and ANNUAL periods can be stepped through").
			Mark(ierr.ErrUnsupportedConfiguration)
	}
}

// shiftPeriods moves t by n periods, clamping the day to the target month
func shiftPeriods(t time.Time, period types.BillingPeriod, n int) (time.Time, error) {
	years, months, err := periodStep(period)
	if err != nil {
		return time.Time{}, err
	}
	return types.AddClampedDate(t, years*n, months*n, 0), nil
}
