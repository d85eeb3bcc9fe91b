package order

import (
	"sort"
	"time"

	"github.com/flexprice/orderbilling/internal/types"
	"github.com/samber/lo"
)

// Order is a billable subscription of an account to a service
type Order struct {
	// ID is the unique identifier of the order
	ID string `db:"id" json:"id"`

	// AccountID is the account the order bills to
	AccountID string `db:"account_id" json:"account_id"`

	// ServiceID is the service the order is priced by
	ServiceID string `db:"service_id" json:"service_id"`

	// Description is a human readable description of what was ordered
	Description string `db:"description" json:"description"`

	// RegisteredOn is the date the order started
	RegisteredOn time.Time `db:"registered_on" json:"registered_on"`

	// CancelledOn is the date the order ended, nil while active
	CancelledOn *time.Time `db:"cancelled_on" json:"cancelled_on,omitempty"`

	// BilledOn is the date of the last billing run that produced a line
	BilledOn *time.Time `db:"billed_on" json:"billed_on,omitempty"`

	// BilledUntil is the watermark up to which the order has been billed
	BilledUntil *time.Time `db:"billed_until" json:"billed_until,omitempty"`

	// Ignore excludes the order from billing
	Ignore bool `db:"ignore" json:"ignore"`
}

// PendingStart is the first date not billed yet
func (o *Order) PendingStart() time.Time {
	if o.BilledUntil != nil {
		return *o.BilledUntil
	}
	return o.RegisteredOn
}

// IsCancelled reports whether the order has a cancellation date
func (o *Order) IsCancelled() bool {
	return o.CancelledOn != nil
}

// CancelledOrMax returns the cancellation date or an open end
func (o *Order) CancelledOrMax() time.Time {
	if o.CancelledOn != nil {
		return *o.CancelledOn
	}
	return types.MaxDate
}

// IsBilledPastCancellation reports whether the watermark went beyond the
// cancellation date, meaning the order holds unused prepaid time
func (o *Order) IsBilledPastCancellation() bool {
	return o.CancelledOn != nil && o.BilledUntil != nil && o.CancelledOn.Before(*o.BilledUntil)
}

// Clone returns a copy that does not share date pointers with o
func (o *Order) Clone() *Order {
	c := *o
	if o.CancelledOn != nil {
		c.CancelledOn = lo.ToPtr(*o.CancelledOn)
	}
	if o.BilledOn != nil {
		c.BilledOn = lo.ToPtr(*o.BilledOn)
	}
	if o.BilledUntil != nil {
		c.BilledUntil = lo.ToPtr(*o.BilledUntil)
	}
	return &c
}

// Account owns orders
type Account struct {
	ID          string `db:"id" json:"id"`
	Type        string `db:"type" json:"type"`
	IsSuperuser bool   `db:"is_superuser" json:"is_superuser"`
	// Plan selects the rate table applying to the account
	Plan string `db:"plan" json:"plan"`
}

// BillingUpdate is what a committed billing run persists for one order
type BillingUpdate struct {
	OrderID     string     `db:"order_id" json:"order_id"`
	BilledOn    *time.Time `db:"billed_on" json:"billed_on,omitempty"`
	BilledUntil time.Time  `db:"billed_until" json:"billed_until"`
}

// Apply writes the update onto o
func (u BillingUpdate) Apply(o *Order) {
	if u.BilledOn != nil {
		o.BilledOn = lo.ToPtr(*u.BilledOn)
	}
	o.BilledUntil = lo.ToPtr(u.BilledUntil)
}

// SortByPendingStart orders by billed_until, or registered_on when never
// billed, oldest first. Ties fall back to registration date and then id.
func SortByPendingStart(orders []*Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.PendingStart().Equal(b.PendingStart()) {
			return a.PendingStart().Before(b.PendingStart())
		}
		if !a.RegisteredOn.Equal(b.RegisteredOn) {
			return a.RegisteredOn.Before(b.RegisteredOn)
		}
		return a.ID < b.ID
	})
}
