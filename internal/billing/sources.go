package billing

import (
	"context"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/metric"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	"github.com/shopspring/decimal"
)

// MetricSource reads the measured usage of an order
type MetricSource interface {
	// Sample returns the value measured on a given day
	Sample(ctx context.Context, o *order.Order, at time.Time) (decimal.Decimal, error)
	// Aggregate returns the value measured over [ini, end)
	Aggregate(ctx context.Context, o *order.Order, ini, end time.Time) (decimal.Decimal, error)
	// Changes splits [ini, end) where the measured value changed
	Changes(ctx context.Context, o *order.Order, ini, end time.Time) ([]metric.Segment, error)
}

// RateProvider returns the rate table of a service for an account, ordered
// ascending by quantity. An empty table prices at the nominal price.
type RateProvider interface {
	RatesFor(ctx context.Context, account *order.Account, serviceID string) (service.Rates, error)
}
