package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/metric"
	ierr "github.com/flexprice/orderbilling/internal/errors"
)

// InMemoryMetricStore implements metric.Repository
type InMemoryMetricStore struct {
	mu      sync.RWMutex
	samples map[string][]*metric.Sample
	// Fail makes every read fail
	Fail error
}

func NewInMemoryMetricStore() *InMemoryMetricStore {
	return &InMemoryMetricStore{samples: make(map[string][]*metric.Sample)}
}

func (s *InMemoryMetricStore) ListSamples(ctx context.Context, orderID string, before time.Time) ([]*metric.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}

	var result []*metric.Sample
	for _, sample := range s.samples[orderID] {
		if sample.CreatedOn.Before(before) {
			copied := *sample
			result = append(result, &copied)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedOn.Before(result[j].CreatedOn)
	})
	return result, nil
}

func (s *InMemoryMetricStore) Latest(ctx context.Context, orderID string) (*metric.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}

	var latest *metric.Sample
	for _, sample := range s.samples[orderID] {
		if latest == nil || !sample.CreatedOn.Before(latest.CreatedOn) {
			latest = sample
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *InMemoryMetricStore) Insert(ctx context.Context, sample *metric.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sample
	s.samples[sample.OrderID] = append(s.samples[sample.OrderID], &copied)
	return nil
}

func (s *InMemoryMetricStore) Touch(ctx context.Context, sample *metric.Sample, updatedOn time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.samples[sample.OrderID] {
		if stored.ID == sample.ID {
			stored.UpdatedOn = updatedOn
			return nil
		}
	}
	return ierr.NewErrorf("sample %s not found", sample.ID).
		Mark(ierr.ErrNotFound)
}

// Samples returns every stored sample of an order
func (s *InMemoryMetricStore) Samples(orderID string) []*metric.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*metric.Sample(nil), s.samples[orderID]...)
}

func (s *InMemoryMetricStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = make(map[string][]*metric.Sample)
	s.Fail = nil
}
