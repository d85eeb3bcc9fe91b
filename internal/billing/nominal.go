package billing

import (
	"time"

	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/shopspring/decimal"
)

// billNominal prices every pending order at the nominal price of the service
func (r *run) billNominal(billed []*order.Order) ([]*line.Line, error) {
	var lines []*line.Line
	for _, o := range billed {
		window, ok := r.window(o)
		if !ok {
			continue
		}
		l, err := r.nominalLine(o, window, r.svc.NominalPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// nominalLine bills the pending window of an order at a price per period,
// discounting the consumed credit and stretching the window over credit that
// reaches past it
func (r *run) nominalLine(o *order.Order, window Interval, price decimal.Decimal) (*line.Line, error) {
	dsize, newEnd, err := r.ledger.Apply(o, false)
	if err != nil {
		return nil, err
	}

	var opts []LineOption
	end := window.End
	if !dsize.IsZero() {
		opts = append(opts, WithDiscounts(compensationDiscount(dsize.Mul(price))))
		if newEnd != nil {
			end = *newEnd
			r.updates.Propose(o, end)
		}
	}
	return r.lines.Generate(o, price, []time.Time{window.Ini, end}, opts...)
}
