package metric

import (
	"context"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	"github.com/flexprice/orderbilling/internal/types"
)

// Recorder measures instances with their service metric policy and keeps the
// sample history of each order
type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record stores the current metric of the instance behind an order. Instances
// the service does not match are skipped. It returns the stored sample.
func (r *Recorder) Record(ctx context.Context, svc *service.Service, o *order.Order, instance service.Instance, now time.Time) (*Sample, error) {
	matches, err := svc.Matches(instance)
	if err != nil || !matches {
		return nil, err
	}

	value, err := svc.GetMetric(instance)
	if err != nil {
		return nil, err
	}

	latest, err := r.repo.Latest(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.Value.Equal(value) {
		if err := r.repo.Touch(ctx, latest, now); err != nil {
			return nil, err
		}
		latest.UpdatedOn = now
		return latest, nil
	}

	sample := &Sample{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METRIC),
		OrderID:   o.ID,
		Value:     value,
		CreatedOn: now,
		UpdatedOn: now,
	}
	if err := r.repo.Insert(ctx, sample); err != nil {
		return nil, err
	}
	return sample, nil
}
