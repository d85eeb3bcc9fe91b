package metric

import (
	"context"
	"time"
)

// Repository stores metric samples
type Repository interface {
	// ListSamples returns the samples of an order created before the given
	// time, oldest first
	ListSamples(ctx context.Context, orderID string, before time.Time) ([]*Sample, error)

	// Latest returns the most recent sample of an order, nil when none exists
	Latest(ctx context.Context, orderID string) (*Sample, error)

	// Insert stores a new sample
	Insert(ctx context.Context, sample *Sample) error

	// Touch moves the UpdatedOn of an existing sample
	Touch(ctx context.Context, sample *Sample, updatedOn time.Time) error
}
