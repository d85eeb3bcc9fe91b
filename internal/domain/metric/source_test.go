package metric_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/metric"
	"github.com/flexprice/orderbilling/internal/domain/order"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type sampleRow struct {
	value   int64
	created time.Time
	updated time.Time
}

func seed(t *testing.T, store *testutil.InMemoryMetricStore, orderID string, rows ...sampleRow) {
	for i, row := range rows {
		require.NoError(t, store.Insert(context.Background(), &metric.Sample{
			ID:        orderID + "_" + string(rune('a'+i)),
			OrderID:   orderID,
			Value:     decimal.NewFromInt(row.value),
			CreatedOn: row.created,
			UpdatedOn: row.updated,
		}))
	}
}

func TestSource_Changes(t *testing.T) {
	o := &order.Order{ID: "o1"}
	ini, end := date(2020, 1, 1), date(2020, 2, 1)

	tests := []struct {
		name     string
		samples  []sampleRow
		expected []metric.Segment
	}{
		{
			name: "one change splits the range",
			samples: []sampleRow{
				{1, date(2020, 1, 1), date(2020, 1, 1)},
				{3, date(2020, 1, 16), date(2020, 1, 16)},
			},
			expected: []metric.Segment{
				{Ini: date(2020, 1, 1), End: date(2020, 1, 16), Value: decimal.NewFromInt(1)},
				{Ini: date(2020, 1, 16), End: end, Value: decimal.NewFromInt(3)},
			},
		},
		{
			name: "changes within a day keep the last value",
			samples: []sampleRow{
				{1, date(2019, 12, 20), date(2019, 12, 20)},
				{2, date(2020, 1, 10).Add(9 * time.Hour), date(2020, 1, 10).Add(9 * time.Hour)},
				{5, date(2020, 1, 10).Add(15 * time.Hour), date(2020, 1, 10).Add(15 * time.Hour)},
			},
			expected: []metric.Segment{
				{Ini: date(2020, 1, 1), End: date(2020, 1, 10), Value: decimal.NewFromInt(1)},
				{Ini: date(2020, 1, 10), End: end, Value: decimal.NewFromInt(5)},
			},
		},
		{
			name: "first measurement covers the start",
			samples: []sampleRow{
				{4, date(2020, 1, 5), date(2020, 1, 5)},
			},
			expected: []metric.Segment{
				{Ini: ini, End: end, Value: decimal.NewFromInt(4)},
			},
		},
		{
			name: "samples after the range are ignored",
			samples: []sampleRow{
				{2, date(2019, 11, 1), date(2020, 1, 30)},
				{9, date(2020, 2, 1), date(2020, 2, 1)},
			},
			expected: []metric.Segment{
				{Ini: ini, End: end, Value: decimal.NewFromInt(2)},
			},
		},
		{
			name: "no samples",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewInMemoryMetricStore()
			seed(t, store, o.ID, tt.samples...)

			segments, err := metric.NewSource(store).Changes(context.Background(), o, ini, end)
			require.NoError(t, err)
			require.Len(t, segments, len(tt.expected))
			for i, expected := range tt.expected {
				assert.Equal(t, expected.Ini, segments[i].Ini)
				assert.Equal(t, expected.End, segments[i].End)
				assert.True(t, expected.Value.Equal(segments[i].Value), "segment %d value %s", i, segments[i].Value)
			}
		})
	}
}

func TestSource_SampleAndAggregate(t *testing.T) {
	o := &order.Order{ID: "o1"}
	store := testutil.NewInMemoryMetricStore()
	seed(t, store, o.ID,
		sampleRow{5, date(2020, 1, 1), date(2020, 1, 20)},
		sampleRow{7, date(2020, 2, 3), date(2020, 2, 25)},
	)
	source := metric.NewSource(store)
	ctx := context.Background()

	value, err := source.Sample(ctx, o, date(2020, 1, 20))
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(5)))

	value, err = source.Sample(ctx, o, date(2020, 1, 19))
	require.NoError(t, err)
	assert.True(t, value.IsZero(), "sample updated later than the day asked")

	value, err = source.Aggregate(ctx, o, date(2020, 2, 1), date(2020, 3, 1))
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(7)))

	value, err = source.Aggregate(ctx, o, date(2020, 3, 1), date(2020, 4, 1))
	require.NoError(t, err)
	assert.True(t, value.IsZero())
}

func TestSource_Unavailable(t *testing.T) {
	store := testutil.NewInMemoryMetricStore()
	store.Fail = errors.New("dial tcp: connection refused")
	source := metric.NewSource(store)
	o := &order.Order{ID: "o1"}

	_, err := source.Changes(context.Background(), o, date(2020, 1, 1), date(2020, 2, 1))
	require.Error(t, err)
	assert.True(t, ierr.IsSourceUnavailable(err))

	_, err = source.Aggregate(context.Background(), o, date(2020, 1, 1), date(2020, 2, 1))
	assert.True(t, ierr.IsSourceUnavailable(err))
}
