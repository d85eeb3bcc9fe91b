package cache

import (
	"context"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	"github.com/flexprice/orderbilling/internal/logger"
)

// RateSource loads the rate table of a service for an account
type RateSource interface {
	RatesFor(ctx context.Context, account *order.Account, serviceID string) (service.Rates, error)
}

// RateCache serves rate tables from the cache, loading misses from the
// underlying source. Tables are keyed by service and account plan.
type RateCache struct {
	source RateSource
	cache  Cache
	logger *logger.Logger
}

func NewRateCache(source RateSource, cache Cache, logger *logger.Logger) *RateCache {
	return &RateCache{source: source, cache: cache, logger: logger}
}

func (c *RateCache) RatesFor(ctx context.Context, account *order.Account, serviceID string) (service.Rates, error) {
	span := StartCacheSpan(ctx, "rates", "get", map[string]interface{}{
		"service_id": serviceID,
		"plan":       account.Plan,
	})
	defer FinishSpan(span)

	key := GenerateKey(PrefixRates, serviceID, account.Plan)
	if cached, ok := c.cache.Get(ctx, key); ok {
		if rates, ok := cached.(service.Rates); ok {
			return rates, nil
		}
	}

	rates, err := c.source.RatesFor(ctx, account, serviceID)
	if err != nil {
		SetSpanError(span, err)
		return nil, err
	}
	c.logger.Debugw("caching rate table",
		"service_id", serviceID,
		"plan", account.Plan,
		"rates", len(rates),
	)
	c.cache.Set(ctx, key, rates, 0)
	return rates, nil
}

// Invalidate drops every cached table of a service
func (c *RateCache) Invalidate(ctx context.Context, serviceID string) {
	c.cache.DeleteByPrefix(ctx, GenerateKey(PrefixRates, serviceID, ""))
}
