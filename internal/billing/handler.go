package billing

import (
	"context"

	"github.com/flexprice/orderbilling/internal/config"
	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/samber/lo"
)

// Handler bills the orders of one service
type Handler struct {
	svc     *service.Service
	orders  order.Repository
	rates   RateProvider
	metrics MetricSource
	cfg     config.BillingConfig
	logger  *logger.Logger
}

func NewHandler(
	svc *service.Service,
	orders order.Repository,
	rates RateProvider,
	metrics MetricSource,
	cfg config.BillingConfig,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		svc:     svc,
		orders:  orders,
		rates:   rates,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

// Service returns the service the handler bills
func (h *Handler) Service() *service.Service {
	return h.svc
}

// GenerateBillLines bills the orders of an account. Metered services are
// priced by usage; the others by position among concurrent orders, by
// position among registrations and renewals, or at the nominal price,
// depending on the rate table and the periods of the service. Unless the run
// is a proforma and Commit is set, the new watermarks are persisted together.
func (h *Handler) GenerateBillLines(ctx context.Context, account *order.Account, orders []*order.Order, opts Options) (*Result, error) {
	if opts.Proforma {
		opts.Commit = false
	}

	r := &run{
		ctx:         ctx,
		svc:         h.svc,
		account:     account,
		opts:        opts,
		annualMonth: h.cfg.AnnualBillingMonth,
		updates:     make(Updates),
		lines:       NewLineGenerator(h.svc),
		points:      NewPointResolver(h.svc, opts, h.cfg.AnnualBillingMonth),
		metrics:     h.metrics,
		logger: h.logger.With(
			"account_id", account.ID,
			"service_id", h.svc.ID,
			"run_id", types.GetRunID(ctx),
		),
	}
	r.ledger = NewLedger(r.updates, h.svc.BillingPeriod, h.cfg.CompensationExtendRatio)
	result := &Result{Updates: r.updates}

	if h.svc.IsAccountIgnored(account, h.cfg.IgnoreAccountTypes) {
		r.logger.Debugw("account ignored by service")
		return result, nil
	}
	orders = lo.Filter(orders, func(o *order.Order, _ int) bool {
		return !h.svc.IsOrderIgnored(o)
	})

	var (
		lines []*line.Line
		err   error
	)
	if h.svc.IsMetered() {
		var rates service.Rates
		if rates, err = h.rates.RatesFor(ctx, account, h.svc.ID); err == nil {
			lines, err = r.billMetric(orders, rates)
		}
	} else {
		lines, result.givers, err = h.billWithOrders(r, orders)
	}
	if err != nil {
		return nil, err
	}
	result.Lines = lines

	r.logger.Infow("generated bill lines",
		"orders", len(orders),
		"lines", len(lines),
		"total", line.Sum(lines),
		"proforma", opts.Proforma,
	)

	if opts.Commit {
		if err := h.commit(ctx, result, opts); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (h *Handler) billWithOrders(r *run, orders []*order.Order) ([]*line.Line, []*order.Order, error) {
	billed, window, err := h.pending(r, orders)
	if err != nil || len(billed) == 0 {
		return nil, nil, err
	}

	var givers []*order.Order
	if h.svc.IsPrepayCompensate() {
		candidates, err := h.orders.Givers(r.ctx, r.account.ID, h.svc.ID, window.Ini, window.End)
		if err != nil {
			return nil, nil, err
		}
		order.SortByPendingStart(candidates)
		order.SortByPendingStart(billed)
		givers = r.ledger.Assign(candidates, billed)
	}

	rates, err := h.rates.RatesFor(r.ctx, r.account, h.svc.ID)
	if err != nil {
		return nil, nil, err
	}

	hasBilling := h.svc.HasBillingPeriod()
	hasPricing := h.svc.HasPricingPeriod()
	if len(rates) == 0 || (!hasBilling && !hasPricing) {
		lines, err := r.billNominal(billed)
		return lines, givers, err
	}

	concurrent := hasBilling && !hasPricing
	if !concurrent {
		if window.Ini, err = shiftPeriods(window.Ini, h.svc.PricingPeriod, -1); err != nil {
			return nil, nil, err
		}
	}
	porders, err := h.pricingOrders(r, billed, window)
	if err != nil {
		return nil, nil, err
	}

	var lines []*line.Line
	if concurrent {
		lines, err = r.billConcurrent(billed, porders, rates, window.Ini, window.End)
	} else {
		lines, err = r.billEvents(billed, porders, rates)
	}
	return lines, givers, err
}

// pending proposes the billing point of every order with time to bill and
// returns them with the window covering all their pending time
func (h *Handler) pending(r *run, orders []*order.Order) ([]*order.Order, Interval, error) {
	var (
		billed []*order.Order
		window = NewInterval(types.MaxDate, types.MinDate, nil)
		refund = h.svc.OnCancel == types.ON_CANCEL_REFUND
	)
	for _, o := range orders {
		if !refund && o.IsBilledPastCancellation() {
			continue
		}
		point, err := r.points.Resolve(o)
		if err != nil {
			return nil, window, err
		}

		start := o.PendingStart()
		if h.svc.BillingPeriod.IsPeriodic() {
			if point.Equal(start) {
				continue
			}
			if point.Before(start) && !(refund && o.IsCancelled()) {
				continue
			}
		} else if o.BilledUntil != nil {
			continue
		}

		r.updates.Propose(o, point)
		window.Ini = types.MinTime(window.Ini, start)
		window.End = types.MaxTime(window.End, point)
		billed = append(billed, o)
	}
	return billed, window, nil
}

// pricingOrders returns the orders competing for positions with the billed
// ones, the billed ones included, oldest pending start first
func (h *Handler) pricingOrders(r *run, billed []*order.Order, window Interval) ([]*order.Order, error) {
	related, err := h.orders.PricingOrders(r.ctx, r.account.ID, h.svc.ID, window.Ini, window.End)
	if err != nil {
		return nil, err
	}
	porders := lo.UniqBy(append(append([]*order.Order(nil), billed...), related...), func(o *order.Order) string {
		return o.ID
	})
	order.SortByPendingStart(porders)
	return porders, nil
}

func (h *Handler) commit(ctx context.Context, result *Result, opts Options) error {
	updates := result.BillingUpdates(opts.Today())
	if len(updates) == 0 {
		return nil
	}
	if err := h.orders.UpdateBilling(ctx, updates); err != nil {
		return ierr.WithError(err).
			WithHint("Billing run could not be committed, no order was updated").
			WithReportableDetails(map[string]any{
				"service_id": h.svc.ID,
				"orders":     len(updates),
			}).
			Mark(ierr.ErrDatabase)
	}
	result.Committed = true
	return nil
}
