package billing

import (
	"context"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	"github.com/flexprice/orderbilling/internal/logger"
)

// run is the state of one billing pass over the orders of one account
type run struct {
	ctx         context.Context
	svc         *service.Service
	account     *order.Account
	opts        Options
	annualMonth int
	updates     Updates
	ledger      *Ledger
	lines       *LineGenerator
	points      *PointResolver
	metrics     MetricSource
	logger      *logger.Logger
}

// window returns the pending window of an order, [pending start, proposed)
func (r *run) window(o *order.Order) (Interval, bool) {
	proposed, ok := r.updates.Proposed(o)
	if !ok {
		return Interval{}, false
	}
	return NewInterval(o.PendingStart(), proposed, o), true
}

// activeEnd is the end of the time an order counts as active for pricing
func (r *run) activeEnd(o *order.Order) time.Time {
	if until := r.updates.Watermark(o); until != nil {
		return *until
	}
	return o.CancelledOrMax()
}
