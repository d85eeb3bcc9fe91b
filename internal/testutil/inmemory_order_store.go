package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/samber/lo"
)

// InMemoryOrderStore implements order.Repository. Reads return copies so
// callers never share state with the store.
type InMemoryOrderStore struct {
	mu       sync.Mutex
	orders   *InMemoryStore[*order.Order]
	accounts *InMemoryStore[*order.Account]
	// Updates records every committed batch
	Updates [][]order.BillingUpdate
	// FailUpdates makes UpdateBilling fail without changing anything
	FailUpdates error
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		orders:   NewInMemoryStore[*order.Order](),
		accounts: NewInMemoryStore[*order.Account](),
	}
}

func (s *InMemoryOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	return s.orders.Create(ctx, o.ID, o.Clone())
}

func (s *InMemoryOrderStore) CreateAccount(ctx context.Context, a *order.Account) error {
	account := *a
	return s.accounts.Create(ctx, a.ID, &account)
}

// GetOrder returns a copy of a stored order
func (s *InMemoryOrderStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

func (s *InMemoryOrderStore) GetAccount(ctx context.Context, accountID string) (*order.Account, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Account %s not found", accountID).
			Mark(ierr.ErrNotFound)
	}
	account := *a
	return &account, nil
}

func (s *InMemoryOrderStore) OrdersFor(ctx context.Context, accountID, serviceID string) ([]*order.Order, error) {
	return s.list(ctx, func(_ context.Context, o *order.Order) bool {
		return o.AccountID == accountID && o.ServiceID == serviceID
	}), nil
}

func (s *InMemoryOrderStore) Givers(ctx context.Context, accountID, serviceID string, ini, end time.Time) ([]*order.Order, error) {
	return s.list(ctx, func(_ context.Context, o *order.Order) bool {
		return o.AccountID == accountID && o.ServiceID == serviceID &&
			o.IsBilledPastCancellation() &&
			o.BilledUntil.After(ini) &&
			o.RegisteredOn.Before(end)
	}), nil
}

func (s *InMemoryOrderStore) PricingOrders(ctx context.Context, accountID, serviceID string, ini, end time.Time) ([]*order.Order, error) {
	return s.list(ctx, func(_ context.Context, o *order.Order) bool {
		return o.AccountID == accountID && o.ServiceID == serviceID &&
			!o.Ignore &&
			o.RegisteredOn.Before(end) &&
			(o.CancelledOn == nil || o.CancelledOn.After(ini))
	}), nil
}

func (s *InMemoryOrderStore) UpdateBilling(ctx context.Context, updates []order.BillingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdates != nil {
		return s.FailUpdates
	}

	byID := lo.KeyBy(updates, func(u order.BillingUpdate) string { return u.OrderID })
	err := s.orders.UpdateAll(ctx, lo.Keys(byID), func(id string, o *order.Order) *order.Order {
		updated := o.Clone()
		byID[id].Apply(updated)
		return updated
	})
	if err != nil {
		return err
	}
	s.Updates = append(s.Updates, updates)
	return nil
}

func (s *InMemoryOrderStore) list(ctx context.Context, filter FilterFunc[*order.Order]) []*order.Order {
	orders := s.orders.List(ctx, filter, func(a, b *order.Order) bool {
		return a.ID < b.ID
	})
	return lo.Map(orders, func(o *order.Order, _ int) *order.Order {
		return o.Clone()
	})
}

// Clear removes all orders and accounts
func (s *InMemoryOrderStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders.Clear()
	s.accounts.Clear()
	s.Updates = nil
	s.FailUpdates = nil
}
