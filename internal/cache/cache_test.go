package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flexprice/orderbilling/internal/config"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	rates service.Rates
	err   error
}

func (s *countingSource) RatesFor(_ context.Context, _ *order.Account, _ string) (service.Rates, error) {
	s.calls++
	return s.rates, s.err
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.CacheConfig{Enabled: true, RateTTL: time.Minute})

	c.Set(ctx, "rates:v1::a:x", 1, 0)
	c.Set(ctx, "rates:v1::b:x", 2, 0)
	c.Set(ctx, "account:v1::a", 3, 0)

	v, ok := c.Get(ctx, "rates:v1::a:x")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.DeleteByPrefix(ctx, PrefixRates)
	_, ok = c.Get(ctx, "rates:v1::b:x")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "account:v1::a")
	assert.True(t, ok)

	c.Flush(ctx)
	_, ok = c.Get(ctx, "account:v1::a")
	assert.False(t, ok)
}

func TestInMemoryCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.CacheConfig{Enabled: false})
	c.Set(ctx, "k", 1, 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRateCache(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{rates: service.Rates{{Quantity: 1, Price: decimal.NewFromInt(10)}}}
	rates := NewRateCache(source, NewInMemoryCache(config.CacheConfig{Enabled: true}), logger.NewNoopLogger())
	gold := &order.Account{ID: "a1", Plan: "gold"}

	for i := 0; i < 3; i++ {
		got, err := rates.RatesFor(ctx, gold, "svc_vm")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, source.calls)

	_, err := rates.RatesFor(ctx, &order.Account{ID: "a2", Plan: "basic"}, "svc_vm")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "plans are cached apart")

	rates.Invalidate(ctx, "svc_vm")
	_, err = rates.RatesFor(ctx, gold, "svc_vm")
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)
}

func TestRateCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{err: errors.New("db down")}
	rates := NewRateCache(source, NewInMemoryCache(config.CacheConfig{Enabled: true}), logger.NewNoopLogger())
	account := &order.Account{ID: "a1"}

	_, err := rates.RatesFor(ctx, account, "svc_vm")
	require.Error(t, err)

	source.err = nil
	_, err = rates.RatesFor(ctx, account, "svc_vm")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}
