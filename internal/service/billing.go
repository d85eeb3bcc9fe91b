package service

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/orderbilling/internal/billing"
	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/metric"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

// AccountResult is the outcome of billing one account
type AccountResult struct {
	AccountID string
	Result    *billing.Result
	Err       error
}

// BillingService runs billing passes over accounts
type BillingService interface {
	// BillAccount bills the orders one account holds on a service
	BillAccount(ctx context.Context, svc *service.Service, accountID string, opts billing.Options) (*billing.Result, error)

	// BillAccounts bills many accounts concurrently. A failing account does
	// not stop the others; results keep the order of accountIDs.
	BillAccounts(ctx context.Context, svc *service.Service, accountIDs []string, opts billing.Options) []AccountResult

	// RecordMetrics measures the instance behind every order of the service
	// found in instances, keyed by order id
	RecordMetrics(ctx context.Context, svc *service.Service, orders []*order.Order, instances map[string]service.Instance) ([]*metric.Sample, error)
}

type billingService struct {
	ServiceParams
	source   *metric.Source
	recorder *metric.Recorder
	limiter  *rate.Limiter
	locks    sync.Map
	now      func() time.Time
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
		source:        metric.NewSource(params.MetricRepo),
		recorder:      metric.NewRecorder(params.MetricRepo),
		limiter:       newWriteLimiter(params.Config.Billing.MetricWritesPerSecond),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func newWriteLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// lock serialises runs of one account
func (s *billingService) lock(accountID string) func() {
	mu, _ := s.locks.LoadOrStore(accountID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *billingService) BillAccount(ctx context.Context, svc *service.Service, accountID string, opts billing.Options) (*billing.Result, error) {
	unlock := s.lock(accountID)
	defer unlock()

	if types.GetRunID(ctx) == "" {
		ctx = types.WithRunID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RUN))
	}
	ctx = types.WithAccountID(ctx, accountID)

	account, err := s.OrderRepo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	orders, err := s.OrderRepo.OrdersFor(ctx, accountID, svc.ID)
	if err != nil {
		return nil, err
	}

	handler := billing.NewHandler(svc, s.OrderRepo, s.Rates, s.source, s.Config.Billing, s.Logger)
	return handler.GenerateBillLines(ctx, account, orders, opts)
}

func (s *billingService) BillAccounts(ctx context.Context, svc *service.Service, accountIDs []string, opts billing.Options) []AccountResult {
	accountIDs = lo.Uniq(accountIDs)
	results := make([]AccountResult, len(accountIDs))
	runID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RUN)
	ctx = types.WithRunID(ctx, runID)

	p := pool.New().WithMaxGoroutines(lo.Max([]int{1, s.Config.Billing.MaxConcurrentAccounts}))
	for i, accountID := range accountIDs {
		p.Go(func() {
			results[i].AccountID = accountID
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Result, results[i].Err = s.BillAccount(ctx, svc, accountID, opts)
		})
	}
	p.Wait()

	failed := lo.CountBy(results, func(r AccountResult) bool { return r.Err != nil })
	total := lo.Reduce(results, func(acc []*line.Line, r AccountResult, _ int) []*line.Line {
		if r.Result == nil {
			return acc
		}
		return append(acc, r.Result.Lines...)
	}, nil)
	s.Logger.Infow("billed accounts",
		"run_id", runID,
		"service_id", svc.ID,
		"accounts", len(accountIDs),
		"failed", failed,
		"lines", len(total),
		"total", line.Sum(total),
	)
	return results
}

func (s *billingService) RecordMetrics(ctx context.Context, svc *service.Service, orders []*order.Order, instances map[string]service.Instance) ([]*metric.Sample, error) {
	if !svc.IsMetered() {
		return nil, ierr.NewErrorf("service %s has no metric", svc.ID).
			WithHint("Only usage priced services record metrics").
			Mark(ierr.ErrInvalidArgument)
	}

	now := s.now()
	var samples []*metric.Sample
	for _, o := range orders {
		instance, ok := instances[o.ID]
		if !ok {
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return samples, err
		}
		sample, err := s.recorder.Record(ctx, svc, o, instance, now)
		if err != nil {
			return samples, ierr.WithError(err).
				WithMessagef("record metric of order %s", o.ID).
				WithReportableDetails(map[string]any{"order_id": o.ID, "service_id": svc.ID}).
				Error()
		}
		if sample != nil {
			samples = append(samples, sample)
		}
	}

	s.Logger.Debugw("recorded metrics",
		"service_id", svc.ID,
		"orders", len(orders),
		"samples", len(samples),
	)
	return samples, nil
}
