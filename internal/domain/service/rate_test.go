package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func tiered() Rates {
	return Rates{
		{Quantity: 1, Price: decimal.NewFromInt(10)},
		{Quantity: 3, Price: decimal.NewFromInt(8)},
		{Quantity: 10, Price: decimal.NewFromInt(5)},
	}
}

func TestRates_PriceAt(t *testing.T) {
	rates := tiered()
	tests := []struct {
		position int64
		expected int64
	}{
		{0, 10},
		{1, 10},
		{2, 10},
		{3, 8},
		{9, 8},
		{10, 5},
		{500, 5},
	}
	for _, tt := range tests {
		assert.True(t, rates.PriceAt(tt.position).Equal(decimal.NewFromInt(tt.expected)),
			"position %d got %s", tt.position, rates.PriceAt(tt.position))
	}
	assert.True(t, Rates{}.PriceAt(1).IsZero())
}

func TestRates_Accumulated(t *testing.T) {
	rates := tiered()
	tests := []struct {
		name     string
		metric   decimal.Decimal
		expected decimal.Decimal
	}{
		{"zero", decimal.Zero, decimal.Zero},
		{"negative", decimal.NewFromInt(-2), decimal.Zero},
		{"first tier", decimal.NewFromInt(2), decimal.NewFromInt(20)},
		{"second tier", decimal.NewFromInt(4), decimal.NewFromInt(36)},
		// 2*10 + 7*8 + 3*5
		{"last tier", decimal.NewFromInt(12), decimal.NewFromInt(91)},
		{"fraction", decimal.RequireFromString("2.5"), decimal.NewFromInt(24)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rates.Accumulated(tt.metric)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestRates_Sorted(t *testing.T) {
	rates := Rates{
		{Quantity: 5, Price: decimal.NewFromInt(1)},
		{Quantity: 1, Price: decimal.NewFromInt(3)},
	}
	sorted := rates.Sorted()
	assert.Equal(t, int64(1), sorted[0].Quantity)
	assert.Equal(t, int64(5), rates[0].Quantity, "the receiver is left untouched")
}

func TestService_PricesWithoutRates(t *testing.T) {
	svc := &Service{NominalPrice: decimal.NewFromInt(7)}
	assert.True(t, svc.PriceAt(nil, 3).Equal(decimal.NewFromInt(7)))
	assert.True(t, svc.Accumulated(nil, decimal.NewFromInt(3)).Equal(decimal.NewFromInt(21)))
	assert.True(t, svc.PriceAt(tiered(), 3).Equal(decimal.NewFromInt(8)))
}
