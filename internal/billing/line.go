package billing

import (
	"fmt"
	"time"

	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/domain/service"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/shopspring/decimal"
)

type lineParams struct {
	metric    decimal.Decimal
	discounts []line.Discount
	computed  bool
}

// LineOption customizes a generated line
type LineOption func(*lineParams)

// WithMetric multiplies the nominal subtotal by a measured quantity
func WithMetric(metric decimal.Decimal) LineOption {
	return func(p *lineParams) {
		p.metric = metric
	}
}

// WithDiscounts attaches discounts to the line
func WithDiscounts(discounts ...line.Discount) LineOption {
	return func(p *lineParams) {
		p.discounts = append(p.discounts, discounts...)
	}
}

// WithComputedPrice marks the price as the total for the whole range
// instead of a price per period
func WithComputedPrice() LineOption {
	return func(p *lineParams) {
		p.computed = true
	}
}

// LineGenerator builds the lines of one service
type LineGenerator struct {
	svc  *service.Service
	seen map[string]int
}

func NewLineGenerator(svc *service.Service) *LineGenerator {
	return &LineGenerator{svc: svc, seen: make(map[string]int)}
}

// lineID derives the id of a line from its order and range so that repeated
// runs over the same data produce the same ids. Lines sharing an order and
// range within one run are told apart by their position.
func (g *LineGenerator) lineID(o *order.Order, ini, end time.Time) string {
	id := fmt.Sprintf("%s_%s_%s_%s", types.UUID_PREFIX_LINE, o.ID, ini.Format("20060102"), end.Format("20060102"))
	n := g.seen[id]
	g.seen[id] = n + 1
	if n > 0 {
		id = fmt.Sprintf("%s_%d", id, n)
	}
	return id
}

// Generate builds the line of an order over dates, which is either [ini, end]
// or a single day. The subtotal is the nominal price of the range; when it
// exceeds price after discounts a volume discount makes up the difference so
// a line never costs more than its price.
func (g *LineGenerator) Generate(o *order.Order, price decimal.Decimal, dates []time.Time, opts ...LineOption) (*line.Line, error) {
	var ini, end time.Time
	switch len(dates) {
	case 1:
		ini, end = dates[0], dates[0]
	case 2:
		ini, end = dates[0], dates[1]
	default:
		return nil, ierr.NewErrorf("a line needs one or two dates, got %d", len(dates)).
			WithHint("Pass either a single date or an ini and end date").
			Mark(ierr.ErrInvalidArgument)
	}

	params := &lineParams{metric: decimal.NewFromInt(1)}
	for _, opt := range opts {
		opt(params)
	}

	size, err := PriceSize(ini, end, g.svc.BillingPeriod)
	if err != nil {
		return nil, err
	}
	if !params.computed {
		price = price.Mul(size)
	}

	l := &line.Line{
		ID:          g.lineID(o, ini, end),
		Order:       o,
		OrderID:     o.ID,
		Description: g.svc.DescribeOrder(o),
		Ini:         ini,
		End:         end,
		Size:        size,
		Metric:      params.metric,
		Subtotal:    g.svc.NominalPrice.Mul(size).Mul(params.metric),
		Discounts:   append([]line.Discount(nil), params.discounts...),
	}

	if discounted := l.Total(); discounted.GreaterThan(price) {
		l.Discounts = append(l.Discounts, line.Discount{
			Type:   types.DISCOUNT_TYPE_VOLUME,
			Amount: price.Sub(discounted),
		})
	}
	return l, nil
}

func compensationDiscount(amount decimal.Decimal) line.Discount {
	return line.Discount{Type: types.DISCOUNT_TYPE_COMPENSATION, Amount: amount.Neg()}
}
