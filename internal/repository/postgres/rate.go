package postgres

import (
	"context"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/flexprice/orderbilling/internal/postgres"
	"github.com/samber/lo"
)

type rateRow struct {
	Plan string `db:"plan"`
	service.Rate
}

// RateRepository reads the rate tables of services. A table stored for the
// account's plan wins over the default table, stored with an empty plan.
type RateRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewRateRepository(db *postgres.DB, logger *logger.Logger) *RateRepository {
	return &RateRepository{db: db, logger: logger}
}

func (r *RateRepository) RatesFor(ctx context.Context, account *order.Account, serviceID string) (service.Rates, error) {
	query := `SELECT plan, quantity, price FROM service_rates
		WHERE service_id = $1 AND plan IN ($2, '')
		ORDER BY quantity`

	var rows []rateRow
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, serviceID, account.Plan); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load rate table").
			WithReportableDetails(map[string]any{
				"service_id": serviceID,
				"plan":       account.Plan,
			}).
			Mark(ierr.ErrDatabase)
	}

	byPlan := lo.GroupBy(rows, func(row rateRow) string { return row.Plan })
	chosen, ok := byPlan[account.Plan]
	if !ok {
		chosen = byPlan[""]
	}
	return lo.Map(chosen, func(row rateRow, _ int) service.Rate { return row.Rate }), nil
}
