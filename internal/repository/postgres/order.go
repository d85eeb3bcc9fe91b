package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/flexprice/orderbilling/internal/postgres"
)

const orderColumns = `id, account_id, service_id, description, registered_on,
	cancelled_on, billed_on, billed_until, ignore`

type orderRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return &orderRepository{db: db, logger: logger}
}

func (r *orderRepository) GetAccount(ctx context.Context, accountID string) (*order.Account, error) {
	query := `SELECT id, type, is_superuser, plan FROM accounts WHERE id = $1`

	var account order.Account
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &account, query, accountID); err != nil {
		if ierr.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Account %s was not found", accountID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get account").
			WithReportableDetails(map[string]any{"account_id": accountID}).
			Mark(ierr.ErrDatabase)
	}
	return &account, nil
}

func (r *orderRepository) OrdersFor(ctx context.Context, accountID, serviceID string) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE account_id = $1 AND service_id = $2
		ORDER BY registered_on, id`

	return r.selectOrders(ctx, "orders_for", query, accountID, serviceID)
}

func (r *orderRepository) Givers(ctx context.Context, accountID, serviceID string, ini, end time.Time) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE account_id = $1 AND service_id = $2
		AND cancelled_on IS NOT NULL
		AND billed_until IS NOT NULL
		AND cancelled_on < billed_until
		AND billed_until > $3
		AND registered_on < $4
		ORDER BY billed_until, registered_on, id`

	return r.selectOrders(ctx, "givers", query, accountID, serviceID, ini, end)
}

func (r *orderRepository) PricingOrders(ctx context.Context, accountID, serviceID string, ini, end time.Time) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE account_id = $1 AND service_id = $2
		AND NOT ignore
		AND registered_on < $4
		AND (cancelled_on IS NULL OR cancelled_on > $3)
		ORDER BY registered_on, id`

	return r.selectOrders(ctx, "pricing_orders", query, accountID, serviceID, ini, end)
}

func (r *orderRepository) selectOrders(ctx context.Context, op, query string, args ...interface{}) ([]*order.Order, error) {
	var orders []*order.Order
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list orders").
			WithReportableDetails(map[string]any{"operation": op}).
			Mark(ierr.ErrDatabase)
	}
	return orders, nil
}

// UpdateBilling writes every update in one transaction. An update that
// matches no order rolls the whole batch back.
func (r *orderRepository) UpdateBilling(ctx context.Context, updates []order.BillingUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	query := `UPDATE orders
		SET billed_on = COALESCE($2, billed_on), billed_until = $3
		WHERE id = $1`

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		for _, u := range updates {
			var billedOn interface{}
			if u.BilledOn != nil {
				billedOn = *u.BilledOn
			}
			result, err := q.ExecContext(ctx, query, u.OrderID, billedOn, u.BilledUntil)
			if err != nil {
				return ierr.WithError(err).
					WithHint("Failed to update order billing").
					WithReportableDetails(map[string]any{"order_id": u.OrderID}).
					Mark(ierr.ErrDatabase)
			}
			if n, err := result.RowsAffected(); err == nil && n == 0 {
				return ierr.NewErrorf("order %s not found", u.OrderID).
					WithHintf("Order %s was not found", u.OrderID).
					Mark(ierr.ErrNotFound)
			}
		}
		r.logger.Debugw("updated order billing", "orders", len(updates))
		return nil
	})
}
