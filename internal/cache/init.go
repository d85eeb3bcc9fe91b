package cache

import (
	"github.com/flexprice/orderbilling/internal/config"
	"github.com/flexprice/orderbilling/internal/logger"
)

// Initialize builds the process cache from the configuration
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache system",
		"enabled", cfg.Cache.Enabled,
		"rate_ttl", cfg.Cache.RateTTL,
	)
	return NewInMemoryCache(cfg.Cache)
}
