package billing

import (
	"testing"

	"github.com/flexprice/orderbilling/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingSlots(t *testing.T) {
	tests := []struct {
		name        string
		slots       func() (*SlotIterator, error)
		expected    []Slot
		expectedErr bool
	}{
		{
			name: "never_yields_the_whole_range",
			slots: func() (*SlotIterator, error) {
				return PricingSlots(d(2020, 1, 10), d(2020, 7, 3), types.BILLING_PERIOD_NEVER,
					types.BILLING_POINT_ON_REGISTER, d(2020, 1, 10), 1)
			},
			expected: []Slot{{Ini: d(2020, 1, 10), End: d(2020, 7, 3)}},
		},
		{
			name: "monthly_on_register_exact_months",
			slots: func() (*SlotIterator, error) {
				return PricingSlots(d(2020, 1, 15), d(2020, 4, 15), types.BILLING_PERIOD_MONTHLY,
					types.BILLING_POINT_ON_REGISTER, d(2020, 1, 15), 1)
			},
			expected: []Slot{
				{Ini: d(2020, 1, 15), End: d(2020, 2, 15)},
				{Ini: d(2020, 2, 15), End: d(2020, 3, 15)},
				{Ini: d(2020, 3, 15), End: d(2020, 4, 15)},
			},
		},
		{
			name: "monthly_fixed_date_clips_both_ends",
			slots: func() (*SlotIterator, error) {
				return PricingSlots(d(2020, 1, 15), d(2020, 3, 10), types.BILLING_PERIOD_MONTHLY,
					types.BILLING_POINT_FIXED_DATE, d(2019, 6, 20), 1)
			},
			expected: []Slot{
				{Ini: d(2020, 1, 15), End: d(2020, 2, 1)},
				{Ini: d(2020, 2, 1), End: d(2020, 3, 1)},
				{Ini: d(2020, 3, 1), End: d(2020, 3, 10)},
			},
		},
		{
			name: "monthly_month_end_anchor_does_not_drift",
			slots: func() (*SlotIterator, error) {
				return PricingSlots(d(2020, 1, 31), d(2020, 4, 30), types.BILLING_PERIOD_MONTHLY,
					types.BILLING_POINT_ON_REGISTER, d(2020, 1, 31), 1)
			},
			expected: []Slot{
				{Ini: d(2020, 1, 31), End: d(2020, 2, 29)},
				{Ini: d(2020, 2, 29), End: d(2020, 3, 31)},
				{Ini: d(2020, 3, 31), End: d(2020, 4, 30)},
			},
		},
		{
			name: "annual_fixed_date_uses_configured_month",
			slots: func() (*SlotIterator, error) {
				return PricingSlots(d(2020, 6, 1), d(2022, 3, 1), types.BILLING_PERIOD_ANNUAL,
					types.BILLING_POINT_FIXED_DATE, d(2020, 6, 1), 1)
			},
			expected: []Slot{
				{Ini: d(2020, 6, 1), End: d(2021, 1, 1)},
				{Ini: d(2021, 1, 1), End: d(2022, 1, 1)},
				{Ini: d(2022, 1, 1), End: d(2022, 3, 1)},
			},
		},
		{
			name: "empty_periodic_range",
			slots: func() (*SlotIterator, error) {
				return PricingSlots(d(2020, 3, 1), d(2020, 3, 1), types.BILLING_PERIOD_MONTHLY,
					types.BILLING_POINT_FIXED_DATE, d(2020, 3, 1), 1)
			},
		},
		{
			name: "unknown_period",
			slots: func() (*SlotIterator, error) {
				return PricingSlots(d(2020, 3, 1), d(2020, 4, 1), types.BillingPeriod("DAILY"),
					types.BILLING_POINT_FIXED_DATE, d(2020, 3, 1), 1)
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := tt.slots()
			if tt.expectedErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, it.Collect())

			_, ok := it.Next()
			assert.False(t, ok, "iterator must stay exhausted")
		})
	}
}

func TestPricingSlots_Restartable(t *testing.T) {
	newIterator := func() *SlotIterator {
		it, err := PricingSlots(d(2020, 1, 1), d(2021, 1, 1), types.BILLING_PERIOD_MONTHLY,
			types.BILLING_POINT_FIXED_DATE, d(2020, 1, 1), 1)
		require.NoError(t, err)
		return it
	}

	first := newIterator()
	_, ok := first.Next()
	require.True(t, ok)

	second := newIterator().Collect()
	assert.Len(t, second, 12)
	assert.Len(t, first.Collect(), 11)
}
