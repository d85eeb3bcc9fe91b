package metric

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sample is a stored measurement of an order's metric. A sample stays valid
// from CreatedOn until the next sample; UpdatedOn moves forward every time
// the same value is measured again.
type Sample struct {
	ID        string          `db:"id" json:"id" ch:"id"`
	OrderID   string          `db:"order_id" json:"order_id" ch:"order_id"`
	Value     decimal.Decimal `db:"value" json:"value" ch:"value"`
	CreatedOn time.Time       `db:"created_on" json:"created_on" ch:"created_on"`
	UpdatedOn time.Time       `db:"updated_on" json:"updated_on" ch:"updated_on"`
}

// Segment is a date range over which a metric kept one value
type Segment struct {
	Ini   time.Time
	End   time.Time
	Value decimal.Decimal
}
