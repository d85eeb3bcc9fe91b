package types

import (
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/samber/lo"
)

// BillingPeriod is the cadence an order is billed at ex MONTHLY, ANNUAL.
// The same values describe a service's pricing period.
type BillingPeriod string

// BillingPoint anchors the billed day of a period
type BillingPoint string

// PaymentStyle decides whether a period is charged before or after it is used
type PaymentStyle string

// OnCancelPolicy decides what happens to prepaid time of a cancelled order
type OnCancelPolicy string

// DiscountType is the kind of reduction attached to a line
type DiscountType string

const (
	// BILLING_PERIOD_NEVER bills once, at registration
	BILLING_PERIOD_NEVER   BillingPeriod = "NEVER"
	BILLING_PERIOD_MONTHLY BillingPeriod = "MONTHLY"
	BILLING_PERIOD_ANNUAL  BillingPeriod = "ANNUAL"

	// BILLING_POINT_ON_REGISTER bills on the registration day of the order
	BILLING_POINT_ON_REGISTER BillingPoint = "ON_REGISTER"
	// BILLING_POINT_FIXED_DATE bills every order on the same calendar day
	BILLING_POINT_FIXED_DATE BillingPoint = "FIXED_DATE"

	PAYMENT_STYLE_PREPAY  PaymentStyle = "PREPAY"
	PAYMENT_STYLE_POSTPAY PaymentStyle = "POSTPAY"

	ON_CANCEL_NOTHING OnCancelPolicy = "NOTHING"
	// ON_CANCEL_COMPENSATE transfers unused prepaid time to other orders
	ON_CANCEL_COMPENSATE OnCancelPolicy = "COMPENSATE"
	// ON_CANCEL_REFUND bills negative time back to the cancellation date
	ON_CANCEL_REFUND OnCancelPolicy = "REFUND"

	DISCOUNT_TYPE_VOLUME       DiscountType = "VOLUME"
	DISCOUNT_TYPE_COMPENSATION DiscountType = "COMPENSATION"
)

func (p BillingPeriod) String() string {
	return string(p)
}

// IsPeriodic reports whether the period repeats
func (p BillingPeriod) IsPeriodic() bool {
	return p == BILLING_PERIOD_MONTHLY || p == BILLING_PERIOD_ANNUAL
}

func (p BillingPeriod) Validate() error {
	return validateEnum(p, []BillingPeriod{
		BILLING_PERIOD_NEVER,
		BILLING_PERIOD_MONTHLY,
		BILLING_PERIOD_ANNUAL,
	}, "billing period")
}

func (p BillingPoint) String() string {
	return string(p)
}

func (p BillingPoint) Validate() error {
	return validateEnum(p, []BillingPoint{
		BILLING_POINT_ON_REGISTER,
		BILLING_POINT_FIXED_DATE,
	}, "billing point")
}

func (s PaymentStyle) String() string {
	return string(s)
}

func (s PaymentStyle) Validate() error {
	return validateEnum(s, []PaymentStyle{
		PAYMENT_STYLE_PREPAY,
		PAYMENT_STYLE_POSTPAY,
	}, "payment style")
}

func (c OnCancelPolicy) String() string {
	return string(c)
}

func (c OnCancelPolicy) Validate() error {
	return validateEnum(c, []OnCancelPolicy{
		ON_CANCEL_NOTHING,
		ON_CANCEL_COMPENSATE,
		ON_CANCEL_REFUND,
	}, "on cancel policy")
}

func (d DiscountType) String() string {
	return string(d)
}

func (d DiscountType) Validate() error {
	return validateEnum(d, []DiscountType{
		DISCOUNT_TYPE_VOLUME,
		DISCOUNT_TYPE_COMPENSATION,
	}, "discount type")
}

func validateEnum[T ~string](value T, allowed []T, name string) error {
	if lo.Contains(allowed, value) {
		return nil
	}
	return ierr.NewErrorf("invalid %s", name).
		WithHintf("Invalid %s %q", name, value).
		WithReportableDetails(map[string]any{
			"allowed_values": allowed,
			"provided_value": value,
		}).
		Mark(ierr.ErrValidation)
}
