package line

import (
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Discount is a reduction attached to a line. Amount is negative.
type Discount struct {
	Type   types.DiscountType `json:"type"`
	Amount decimal.Decimal    `json:"amount"`
}

// Line is one invoice row produced by a billing run
type Line struct {
	ID          string          `json:"id"`
	Order       *order.Order    `json:"-"`
	OrderID     string          `json:"order_id"`
	Description string          `json:"description"`
	Ini         time.Time       `json:"ini"`
	End         time.Time       `json:"end"`
	Size        decimal.Decimal `json:"size"`
	Metric      decimal.Decimal `json:"metric"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discounts   []Discount      `json:"discounts"`
}

// DiscountTotal sums every discount of the line
func (l *Line) DiscountTotal() decimal.Decimal {
	return lo.Reduce(l.Discounts, func(acc decimal.Decimal, d Discount, _ int) decimal.Decimal {
		return acc.Add(d.Amount)
	}, decimal.Zero)
}

// DiscountTotalOf sums the discounts of one type
func (l *Line) DiscountTotalOf(t types.DiscountType) decimal.Decimal {
	return lo.Reduce(l.Discounts, func(acc decimal.Decimal, d Discount, _ int) decimal.Decimal {
		if d.Type != t {
			return acc
		}
		return acc.Add(d.Amount)
	}, decimal.Zero)
}

// Total is the subtotal after discounts
func (l *Line) Total() decimal.Decimal {
	return l.Subtotal.Add(l.DiscountTotal())
}

// Sum totals a set of lines
func Sum(lines []*Line) decimal.Decimal {
	return lo.Reduce(lines, func(acc decimal.Decimal, l *Line, _ int) decimal.Decimal {
		return acc.Add(l.Total())
	}, decimal.Zero)
}
