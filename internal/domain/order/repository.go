package order

import (
	"context"
	"time"
)

// Repository is the order store the billing engine reads from and commits to
type Repository interface {
	// GetAccount returns the account with the given id
	GetAccount(ctx context.Context, accountID string) (*Account, error)

	// OrdersFor returns the orders of an account for a service
	OrdersFor(ctx context.Context, accountID, serviceID string) ([]*Order, error)

	// Givers returns orders registered before end and cancelled before their
	// watermark, whose unused prepaid time ends after ini
	Givers(ctx context.Context, accountID, serviceID string, ini, end time.Time) ([]*Order, error)

	// PricingOrders returns the orders active at some point of [ini, end),
	// which take part in position based pricing
	PricingOrders(ctx context.Context, accountID, serviceID string, ini, end time.Time) ([]*Order, error)

	// UpdateBilling persists billed_on/billed_until for every update, all or nothing
	UpdateBilling(ctx context.Context, updates []BillingUpdate) error
}
