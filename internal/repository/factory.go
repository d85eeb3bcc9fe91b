package repository

import (
	"github.com/flexprice/orderbilling/internal/billing"
	"github.com/flexprice/orderbilling/internal/cache"
	"github.com/flexprice/orderbilling/internal/clickhouse"
	"github.com/flexprice/orderbilling/internal/domain/metric"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/flexprice/orderbilling/internal/postgres"
	clickhouseRepo "github.com/flexprice/orderbilling/internal/repository/clickhouse"
	postgresRepo "github.com/flexprice/orderbilling/internal/repository/postgres"
)

func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return postgresRepo.NewOrderRepository(db, logger)
}

// NewRateProvider serves rate tables from postgres through the process cache
func NewRateProvider(db *postgres.DB, c cache.Cache, logger *logger.Logger) billing.RateProvider {
	return cache.NewRateCache(postgresRepo.NewRateRepository(db, logger), c, logger)
}

func NewMetricRepository(store *clickhouse.ClickHouseStore, logger *logger.Logger) metric.Repository {
	return clickhouseRepo.NewMetricRepository(store, logger)
}
