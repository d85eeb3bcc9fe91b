package types

import (
	"testing"

	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestBillingEnums_Validate(t *testing.T) {
	assert.NoError(t, BILLING_PERIOD_ANNUAL.Validate())
	assert.NoError(t, BILLING_POINT_FIXED_DATE.Validate())
	assert.NoError(t, PAYMENT_STYLE_POSTPAY.Validate())
	assert.NoError(t, ON_CANCEL_REFUND.Validate())
	assert.NoError(t, DISCOUNT_TYPE_COMPENSATION.Validate())

	err := BillingPeriod("WEEKLY").Validate()
	assert.True(t, ierr.IsValidation(err))
	assert.Contains(t, ierr.GetHints(err), `Invalid billing period "WEEKLY"`)
	assert.True(t, ierr.IsValidation(OnCancelPolicy("").Validate()))
}

func TestBillingPeriod_IsPeriodic(t *testing.T) {
	assert.True(t, BILLING_PERIOD_MONTHLY.IsPeriodic())
	assert.True(t, BILLING_PERIOD_ANNUAL.IsPeriodic())
	assert.False(t, BILLING_PERIOD_NEVER.IsPeriodic())
}
