package billing

import (
	"testing"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompensate_LargestOverlapFirst(t *testing.T) {
	a := newOrder("a", d(2020, 1, 1))
	b := newOrder("b", d(2020, 1, 1))
	pool := []Interval{
		NewInterval(d(2020, 3, 1), d(2020, 4, 1), a),
		NewInterval(d(2020, 3, 15), d(2020, 5, 1), b),
	}

	rest, used := compensate(NewInterval(d(2020, 3, 10), types.MaxDate, nil), pool)

	assert.Equal(t, []Interval{
		{Ini: d(2020, 3, 10), End: d(2020, 3, 15), Owner: a},
		{Ini: d(2020, 3, 15), End: d(2020, 5, 1), Owner: b},
	}, used)
	assert.ElementsMatch(t, []Interval{
		{Ini: d(2020, 3, 1), End: d(2020, 3, 10), Owner: a},
		{Ini: d(2020, 3, 15), End: d(2020, 4, 1), Owner: a},
	}, rest)
}

func TestLedger_Assign(t *testing.T) {
	giver := newOrder("giver", d(2020, 1, 1), billedUntil(d(2020, 4, 1)), cancelledOn(d(2020, 3, 1)))
	first := newOrder("first", d(2020, 3, 10))
	second := newOrder("second", d(2020, 3, 20))

	updates := make(Updates)
	updates.Propose(first, d(2020, 4, 10))
	updates.Propose(second, d(2020, 4, 20))

	ledger := NewLedger(updates, types.BILLING_PERIOD_MONTHLY, 3)
	moved := ledger.Assign([]*order.Order{giver}, []*order.Order{first, second})

	require.Len(t, moved, 1)
	assert.Equal(t, "giver", moved[0].ID)

	proposed, ok := updates.Proposed(giver)
	require.True(t, ok)
	assert.Equal(t, d(2020, 3, 10), proposed)
	assert.True(t, updates[giver.ID].Giver)

	assert.Equal(t, []Interval{
		{Ini: d(2020, 3, 10), End: d(2020, 4, 1), Owner: giver},
	}, updates.Compensations(first))
	assert.Empty(t, updates.Compensations(second), "credit is spent once")
}

func TestLedger_Conservation(t *testing.T) {
	givers := []*order.Order{
		newOrder("g1", d(2020, 1, 1), billedUntil(d(2020, 4, 1)), cancelledOn(d(2020, 3, 1))),
		newOrder("g2", d(2020, 1, 1), billedUntil(d(2020, 5, 1)), cancelledOn(d(2020, 3, 20))),
	}
	receivers := []*order.Order{
		newOrder("r1", d(2020, 3, 5)),
		newOrder("r2", d(2020, 3, 12)),
		newOrder("r3", d(2020, 3, 25)),
	}

	updates := make(Updates)
	for _, r := range receivers {
		updates.Propose(r, d(2020, 4, 15))
	}
	NewLedger(updates, types.BILLING_PERIOD_MONTHLY, 3).Assign(givers, receivers)

	available := lo.SumBy(givers, func(o *order.Order) int {
		return NewInterval(*o.CancelledOn, *o.BilledUntil, o).Days()
	})
	used := 0
	for _, r := range receivers {
		for _, piece := range updates.Compensations(r) {
			used += piece.Days()
			assert.Contains(t, []string{"g1", "g2"}, piece.Owner.ID)
		}
	}
	assert.Positive(t, used)
	assert.LessOrEqual(t, used, available)
}

func TestLedger_Apply(t *testing.T) {
	giver := newOrder("giver", d(2020, 1, 1))
	receiver := newOrder("receiver", d(2020, 3, 10))

	updates := make(Updates)
	updates.Propose(receiver, d(2020, 3, 20))
	updates.entry(receiver).Compensations = []Interval{
		NewInterval(d(2020, 3, 10), d(2020, 4, 1), giver),
	}
	ledger := NewLedger(updates, types.BILLING_PERIOD_MONTHLY, 3)

	size, newEnd, err := ledger.Apply(receiver, false)
	require.NoError(t, err)
	assertDecimal(t, frac(22, 30), size)
	require.NotNil(t, newEnd)
	assert.Equal(t, d(2020, 4, 1), *newEnd)

	size, newEnd, err = ledger.Apply(receiver, true)
	require.NoError(t, err)
	assertDecimal(t, frac(12, 30), size)
	require.NotNil(t, newEnd)
	assert.Equal(t, d(2020, 4, 1), *newEnd)
}

func TestLedger_Apply_InternalCredit(t *testing.T) {
	giver := newOrder("giver", d(2020, 1, 1))
	receiver := newOrder("receiver", d(2020, 3, 10))

	updates := make(Updates)
	updates.Propose(receiver, d(2020, 4, 10))
	updates.entry(receiver).Compensations = []Interval{
		NewInterval(d(2020, 3, 10), d(2020, 4, 1), giver),
	}
	ledger := NewLedger(updates, types.BILLING_PERIOD_MONTHLY, 3)

	size, newEnd, err := ledger.Apply(receiver, false)
	require.NoError(t, err)
	assertDecimal(t, frac(22, 30), size)
	assert.Nil(t, newEnd)

	size, newEnd, err = ledger.Apply(receiver, true)
	require.NoError(t, err)
	assertDecimal(t, decimal.Zero, size)
	assert.Nil(t, newEnd)
}

func TestLedger_Apply_ExtendsOverLongCredit(t *testing.T) {
	giver := newOrder("giver", d(2020, 1, 1))
	receiver := newOrder("receiver", d(2020, 3, 1))

	updates := make(Updates)
	updates.Propose(receiver, d(2020, 3, 5))
	updates.entry(receiver).Compensations = []Interval{
		NewInterval(d(2020, 3, 6), d(2020, 4, 30), giver),
		NewInterval(d(2020, 6, 1), d(2020, 6, 10), giver),
	}

	size, newEnd, err := NewLedger(updates, types.BILLING_PERIOD_MONTHLY, 3).Apply(receiver, false)
	require.NoError(t, err)

	expected, err := PriceSize(d(2020, 3, 6), d(2020, 4, 30), types.BILLING_PERIOD_MONTHLY)
	require.NoError(t, err)
	assertDecimal(t, expected, size)
	require.NotNil(t, newEnd)
	assert.Equal(t, d(2020, 4, 30), *newEnd)
}
