package billing

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/orderbilling/internal/config"
	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/metric"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/flexprice/orderbilling/internal/testutil"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newService(mods ...func(*service.Service)) *service.Service {
	svc := &service.Service{
		ID:            "svc_hosting",
		Description:   "Hosting",
		NominalPrice:  decimal.NewFromInt(10),
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		PricingPeriod: types.BILLING_PERIOD_NEVER,
		BillingPoint:  types.BILLING_POINT_ON_REGISTER,
		PaymentStyle:  types.PAYMENT_STYLE_PREPAY,
		OnCancel:      types.ON_CANCEL_NOTHING,
	}
	for _, mod := range mods {
		mod(svc)
	}
	return svc
}

func newOrder(id string, registered time.Time, mods ...func(*order.Order)) *order.Order {
	o := &order.Order{
		ID:           id,
		AccountID:    "acc_1",
		ServiceID:    "svc_hosting",
		Description:  id,
		RegisteredOn: registered,
	}
	for _, mod := range mods {
		mod(o)
	}
	return o
}

func billedUntil(t time.Time) func(*order.Order) {
	return func(o *order.Order) { o.BilledUntil = lo.ToPtr(t) }
}

func billedOn(t time.Time) func(*order.Order) {
	return func(o *order.Order) { o.BilledOn = lo.ToPtr(t) }
}

func cancelledOn(t time.Time) func(*order.Order) {
	return func(o *order.Order) { o.CancelledOn = lo.ToPtr(t) }
}

// fixture wires a handler to in-memory stores
type fixture struct {
	ctx     context.Context
	orders  *testutil.InMemoryOrderStore
	rates   *testutil.InMemoryRateStore
	samples *testutil.InMemoryMetricStore
	account *order.Account
	cfg     config.BillingConfig
}

func newFixture(t *testing.T, orders ...*order.Order) *fixture {
	f := &fixture{
		ctx:     testutil.SetupContext(),
		orders:  testutil.NewInMemoryOrderStore(),
		rates:   testutil.NewInMemoryRateStore(),
		samples: testutil.NewInMemoryMetricStore(),
		account: &order.Account{ID: "acc_1", Type: "individual"},
		cfg:     config.GetDefaultConfig().Billing,
	}
	require.NoError(t, f.orders.CreateAccount(f.ctx, f.account))
	for _, o := range orders {
		require.NoError(t, f.orders.CreateOrder(f.ctx, o))
	}
	return f
}

func (f *fixture) handler(svc *service.Service) *Handler {
	return NewHandler(svc, f.orders, f.rates, metric.NewSource(f.samples), f.cfg, logger.NewNoopLogger())
}

func (f *fixture) addSample(t *testing.T, orderID string, value int64, created, updated time.Time) {
	require.NoError(t, f.samples.Insert(f.ctx, &metric.Sample{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METRIC),
		OrderID:   orderID,
		Value:     decimal.NewFromInt(value),
		CreatedOn: created,
		UpdatedOn: updated,
	}))
}

// run bills the stored orders of the fixture account
func (f *fixture) run(t *testing.T, svc *service.Service, opts Options) (*Result, error) {
	orders, err := f.orders.OrdersFor(f.ctx, f.account.ID, svc.ID)
	require.NoError(t, err)
	return f.handler(svc).GenerateBillLines(f.ctx, f.account, orders, opts)
}

func (f *fixture) order(t *testing.T, id string) *order.Order {
	o, err := f.orders.GetOrder(f.ctx, id)
	require.NoError(t, err)
	return o
}

func linesOf(lines []*line.Line, orderID string) []*line.Line {
	return lo.Filter(lines, func(l *line.Line, _ int) bool { return l.OrderID == orderID })
}

func assertDecimal(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()
	require.True(t, expected.Equal(actual), "expected %s, got %s", expected, actual)
}
