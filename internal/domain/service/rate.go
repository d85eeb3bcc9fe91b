package service

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Rate prices every unit from Quantity onwards until the next rate
type Rate struct {
	Quantity int64           `db:"quantity" json:"quantity"`
	Price    decimal.Decimal `db:"price" json:"price"`
}

// Rates is a rate table ordered ascending by quantity
type Rates []Rate

// Sorted returns a copy of the table ordered by quantity
func (r Rates) Sorted() Rates {
	sorted := make(Rates, len(r))
	copy(sorted, r)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Quantity < sorted[j].Quantity
	})
	return sorted
}

// PriceAt returns the unit price at a 1-based position: the price of the
// rate with the greatest quantity not above position. Positions below the
// first rate use the first rate and the last rate covers everything above it.
func (r Rates) PriceAt(position int64) decimal.Decimal {
	if len(r) == 0 {
		return decimal.Zero
	}
	price := r[0].Price
	for _, rate := range r {
		if rate.Quantity > position {
			break
		}
		price = rate.Price
	}
	return price
}

// Accumulated returns the total price of metric units when unit k costs
// PriceAt(k). Fractional metrics are priced linearly inside their tier.
func (r Rates) Accumulated(metric decimal.Decimal) decimal.Decimal {
	if len(r) == 0 || !metric.IsPositive() {
		return decimal.Zero
	}
	total := decimal.Zero
	for i, rate := range r {
		start := decimal.Zero
		if i > 0 {
			start = decimal.NewFromInt(rate.Quantity - 1)
		}
		if metric.LessThanOrEqual(start) {
			break
		}
		end := metric
		if i+1 < len(r) {
			end = decimal.Min(metric, decimal.NewFromInt(r[i+1].Quantity-1))
		}
		if end.GreaterThan(start) {
			total = total.Add(rate.Price.Mul(end.Sub(start)))
		}
	}
	return total
}
