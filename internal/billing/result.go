package billing

import (
	"time"

	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/samber/lo"
)

// ProposedUpdate is what a run intends to persist for one order
type ProposedUpdate struct {
	// BilledUntil is the proposed watermark
	BilledUntil time.Time
	// Compensations are the credit pieces the order consumed, each owned by
	// the order that gave it
	Compensations []Interval
	// Giver marks orders whose watermark moves because their credit was used
	Giver bool
}

// Updates holds the proposed state of a run keyed by order id. Nothing in it
// is persisted until the run commits.
type Updates map[string]*ProposedUpdate

func (u Updates) entry(o *order.Order) *ProposedUpdate {
	p, ok := u[o.ID]
	if !ok {
		p = &ProposedUpdate{}
		u[o.ID] = p
	}
	return p
}

// Propose sets the proposed watermark of an order
func (u Updates) Propose(o *order.Order, until time.Time) {
	u.entry(o).BilledUntil = until
}

// Proposed returns the proposed watermark of an order
func (u Updates) Proposed(o *order.Order) (time.Time, bool) {
	p, ok := u[o.ID]
	if !ok || p.BilledUntil.IsZero() {
		return time.Time{}, false
	}
	return p.BilledUntil, true
}

// Watermark returns the proposed watermark, else the persisted one
func (u Updates) Watermark(o *order.Order) *time.Time {
	if until, ok := u.Proposed(o); ok {
		return &until
	}
	return o.BilledUntil
}

// Compensations returns the credit consumed by an order
func (u Updates) Compensations(o *order.Order) []Interval {
	if p, ok := u[o.ID]; ok {
		return p.Compensations
	}
	return nil
}

// Result is the outcome of a billing run
type Result struct {
	Lines   []*line.Line
	Updates Updates
	// Committed is set once the updates were persisted
	Committed bool
	// givers are orders whose watermark moved without producing lines
	givers []*order.Order
}

// BillingUpdates returns what a commit persists: every order with lines is
// billed today up to its proposed watermark, every giver moves its watermark
// back to where its credit started being used
func (r *Result) BillingUpdates(today time.Time) []order.BillingUpdate {
	var updates []order.BillingUpdate
	seen := make(map[string]bool)

	for _, l := range r.Lines {
		o := l.Order
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true

		until := r.Updates.Watermark(o)
		if until == nil {
			until = &o.RegisteredOn
		}
		updates = append(updates, order.BillingUpdate{
			OrderID:     o.ID,
			BilledOn:    lo.ToPtr(today),
			BilledUntil: *until,
		})
	}

	for _, o := range r.givers {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		if until, ok := r.Updates.Proposed(o); ok {
			updates = append(updates, order.BillingUpdate{
				OrderID:     o.ID,
				BilledUntil: until,
			})
		}
	}
	return updates
}
