package service

import (
	"github.com/flexprice/orderbilling/internal/billing"
	"github.com/flexprice/orderbilling/internal/config"
	"github.com/flexprice/orderbilling/internal/domain/metric"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	OrderRepo  order.Repository
	MetricRepo metric.Repository
	Rates      billing.RateProvider
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	orderRepo order.Repository,
	metricRepo metric.Repository,
	rates billing.RateProvider,
) ServiceParams {
	return ServiceParams{
		Logger:     logger,
		Config:     config,
		OrderRepo:  orderRepo,
		MetricRepo: metricRepo,
		Rates:      rates,
	}
}
