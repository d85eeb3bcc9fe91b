package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
)

// InMemoryRateStore implements billing.RateProvider. Rates set for a plan
// take precedence over the rates of the service.
type InMemoryRateStore struct {
	mu    sync.RWMutex
	rates map[string]service.Rates
	// Calls counts RatesFor calls
	Calls int
}

func NewInMemoryRateStore() *InMemoryRateStore {
	return &InMemoryRateStore{rates: make(map[string]service.Rates)}
}

// SetRates sets the rates of a service, for every plan when plan is empty
func (s *InMemoryRateStore) SetRates(serviceID, plan string, rates service.Rates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[serviceID+"/"+plan] = rates.Sorted()
}

func (s *InMemoryRateStore) RatesFor(ctx context.Context, account *order.Account, serviceID string) (service.Rates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++

	if rates, ok := s.rates[serviceID+"/"+account.Plan]; ok {
		return rates, nil
	}
	return s.rates[serviceID+"/"], nil
}

func (s *InMemoryRateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = make(map[string]service.Rates)
	s.Calls = 0
}
