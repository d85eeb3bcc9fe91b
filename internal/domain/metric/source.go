package metric

import (
	"context"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/shopspring/decimal"
)

// Source answers the metric questions of the billing engine from stored samples
type Source struct {
	repo Repository
}

func NewSource(repo Repository) *Source {
	return &Source{repo: repo}
}

// Sample returns the last value measured up to the end of the day of at,
// zero when nothing was measured
func (s *Source) Sample(ctx context.Context, o *order.Order, at time.Time) (decimal.Decimal, error) {
	before := types.ToDate(at).AddDate(0, 0, 1)
	return s.latestUpdated(ctx, o, types.MinDate, before)
}

// Aggregate returns the last value measured within [ini, end), zero when
// nothing was measured
func (s *Source) Aggregate(ctx context.Context, o *order.Order, ini, end time.Time) (decimal.Decimal, error) {
	return s.latestUpdated(ctx, o, ini, end)
}

// Changes splits [ini, end) into segments over which the metric held one
// value. Changes within a single day collapse into the last value of the day.
func (s *Source) Changes(ctx context.Context, o *order.Order, ini, end time.Time) ([]Segment, error) {
	samples, err := s.repo.ListSamples(ctx, o.ID, end)
	if err != nil {
		return nil, unavailable(err, o)
	}

	var (
		segments []Segment
		value    *decimal.Decimal
		start    = ini
	)
	for _, sample := range samples {
		created := types.ToDate(sample.CreatedOn)
		if !created.After(ini) {
			value = &sample.Value
			continue
		}
		if !created.Before(end) {
			break
		}
		if value == nil {
			// nothing known before ini, the first measurement covers it
			value = &sample.Value
			continue
		}
		if created.After(start) {
			segments = append(segments, Segment{Ini: start, End: created, Value: *value})
			start = created
		}
		value = &sample.Value
	}
	if value == nil {
		return nil, nil
	}
	if start.Before(end) {
		segments = append(segments, Segment{Ini: start, End: end, Value: *value})
	}
	return segments, nil
}

func (s *Source) latestUpdated(ctx context.Context, o *order.Order, ini, end time.Time) (decimal.Decimal, error) {
	samples, err := s.repo.ListSamples(ctx, o.ID, end)
	if err != nil {
		return decimal.Zero, unavailable(err, o)
	}
	var latest *Sample
	for _, sample := range samples {
		if sample.UpdatedOn.Before(ini) || !sample.UpdatedOn.Before(end) {
			continue
		}
		if latest == nil || !sample.UpdatedOn.Before(latest.UpdatedOn) {
			latest = sample
		}
	}
	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.Value, nil
}

func unavailable(err error, o *order.Order) error {
	return ierr.WithError(err).
		WithHintf("Could not read metric samples of order %s", o.ID).
		WithReportableDetails(map[string]any{
			"order_id": o.ID,
		}).
		Mark(ierr.ErrSourceUnavailable)
}
