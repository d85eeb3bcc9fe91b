package clickhouse

import (
	"context"
	"time"

	"github.com/flexprice/orderbilling/internal/clickhouse"
	"github.com/flexprice/orderbilling/internal/domain/metric"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/logger"
)

// Schema creates the sample table. Touching a sample re-inserts it with a
// newer updated_on, ReplacingMergeTree keeps the latest version per id.
const Schema = `
CREATE TABLE IF NOT EXISTS metric_samples (
	id         String,
	order_id   String,
	value      Decimal(20, 8),
	created_on DateTime64(3, 'UTC'),
	updated_on DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(updated_on)
ORDER BY (order_id, id)
`

type MetricRepository struct {
	store  *clickhouse.ClickHouseStore
	logger *logger.Logger
}

func NewMetricRepository(store *clickhouse.ClickHouseStore, logger *logger.Logger) metric.Repository {
	return &MetricRepository{store: store, logger: logger}
}

func (r *MetricRepository) ListSamples(ctx context.Context, orderID string, before time.Time) ([]*metric.Sample, error) {
	span := StartRepositorySpan(ctx, "metric", "list_samples", map[string]interface{}{
		"order_id": orderID,
		"before":   before,
	})
	defer FinishSpan(span)

	query := `
		SELECT id, order_id, value, created_on, updated_on
		FROM metric_samples FINAL
		WHERE order_id = ? AND created_on < ?
		ORDER BY created_on, id
	`

	var samples []metric.Sample
	if err := r.store.GetConn().Select(ctx, &samples, query, orderID, before); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list metric samples").
			WithReportableDetails(map[string]interface{}{
				"order_id": orderID,
			}).
			Mark(ierr.ErrDatabase)
	}

	result := make([]*metric.Sample, len(samples))
	for i := range samples {
		result[i] = &samples[i]
	}
	SetSpanSuccess(span)
	return result, nil
}

func (r *MetricRepository) Latest(ctx context.Context, orderID string) (*metric.Sample, error) {
	span := StartRepositorySpan(ctx, "metric", "latest", map[string]interface{}{
		"order_id": orderID,
	})
	defer FinishSpan(span)

	query := `
		SELECT id, order_id, value, created_on, updated_on
		FROM metric_samples FINAL
		WHERE order_id = ?
		ORDER BY created_on DESC, id DESC
		LIMIT 1
	`

	var samples []metric.Sample
	if err := r.store.GetConn().Select(ctx, &samples, query, orderID); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to get latest metric sample").
			WithReportableDetails(map[string]interface{}{
				"order_id": orderID,
			}).
			Mark(ierr.ErrDatabase)
	}
	SetSpanSuccess(span)
	if len(samples) == 0 {
		return nil, nil
	}
	return &samples[0], nil
}

func (r *MetricRepository) Insert(ctx context.Context, sample *metric.Sample) error {
	span := StartRepositorySpan(ctx, "metric", "insert", map[string]interface{}{
		"sample_id": sample.ID,
		"order_id":  sample.OrderID,
	})
	defer FinishSpan(span)

	query := `
		INSERT INTO metric_samples (id, order_id, value, created_on, updated_on)
		VALUES (?, ?, ?, ?, ?)
	`

	err := r.store.GetConn().Exec(ctx, query,
		sample.ID,
		sample.OrderID,
		sample.Value,
		sample.CreatedOn,
		sample.UpdatedOn,
	)
	if err != nil {
		SetSpanError(span, err)
		return ierr.WithError(err).
			WithHint("Failed to insert metric sample").
			WithReportableDetails(map[string]interface{}{
				"sample_id": sample.ID,
				"order_id":  sample.OrderID,
			}).
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	r.logger.Debugw("inserted metric sample",
		"sample_id", sample.ID,
		"order_id", sample.OrderID,
		"value", sample.Value,
	)
	return nil
}

// Touch stores a newer version of the sample, merged on read by FINAL
func (r *MetricRepository) Touch(ctx context.Context, sample *metric.Sample, updatedOn time.Time) error {
	touched := *sample
	touched.UpdatedOn = updatedOn
	return r.Insert(ctx, &touched)
}
