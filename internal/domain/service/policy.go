package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Instance is the provisioned object an order stands for, seen as fields
type Instance map[string]any

// FieldError is returned when a policy reads a field the instance lacks
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("instance has no field %q", e.Field)
}

// MatchPolicy decides whether an instance is billed by a service
type MatchPolicy interface {
	Matches(instance Instance) (bool, error)
}

// MetricPolicy measures the billable quantity of an instance
type MetricPolicy interface {
	Metric(instance Instance) (decimal.Decimal, error)
}

// DescriptionPolicy renders the description of an order's lines
type DescriptionPolicy interface {
	Describe(svc *Service, o *order.Order) string
}

// AlwaysTrue matches every instance
type AlwaysTrue struct{}

func (AlwaysTrue) Matches(Instance) (bool, error) {
	return true, nil
}

// ComparisonOp is the operator of a FieldComparison
type ComparisonOp string

const (
	OpEqual          ComparisonOp = "eq"
	OpNotEqual       ComparisonOp = "ne"
	OpGreater        ComparisonOp = "gt"
	OpGreaterOrEqual ComparisonOp = "gte"
	OpLess           ComparisonOp = "lt"
	OpLessOrEqual    ComparisonOp = "lte"
)

// FieldComparison compares one instance field against a value. Numeric
// operands are compared as decimals, anything else by its string form.
type FieldComparison struct {
	Field string
	Op    ComparisonOp
	Value any
}

func (c FieldComparison) Matches(instance Instance) (bool, error) {
	raw, ok := instance[c.Field]
	if !ok {
		return false, &FieldError{Field: c.Field}
	}

	left, lerr := toDecimal(raw)
	right, rerr := toDecimal(c.Value)
	if lerr == nil && rerr == nil {
		cmp := left.Cmp(right)
		switch c.Op {
		case OpEqual:
			return cmp == 0, nil
		case OpNotEqual:
			return cmp != 0, nil
		case OpGreater:
			return cmp > 0, nil
		case OpGreaterOrEqual:
			return cmp >= 0, nil
		case OpLess:
			return cmp < 0, nil
		case OpLessOrEqual:
			return cmp <= 0, nil
		}
		return false, fmt.Errorf("unknown comparison operator %q", c.Op)
	}

	ls, rs := fmt.Sprint(raw), fmt.Sprint(c.Value)
	switch c.Op {
	case OpEqual:
		return ls == rs, nil
	case OpNotEqual:
		return ls != rs, nil
	case OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual:
		return false, fmt.Errorf("operator %q needs numeric operands, got %T and %T", c.Op, raw, c.Value)
	}
	return false, fmt.Errorf("unknown comparison operator %q", c.Op)
}

// All matches when every policy matches, an empty list matches everything
type All []MatchPolicy

func (a All) Matches(instance Instance) (bool, error) {
	for _, p := range a {
		ok, err := p.Matches(instance)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// CustomPredicate wraps a Go function as a match policy
type CustomPredicate func(instance Instance) (bool, error)

func (f CustomPredicate) Matches(instance Instance) (bool, error) {
	return f(instance)
}

// Constant always measures the same quantity
type Constant struct {
	Value decimal.Decimal
}

func (c Constant) Metric(Instance) (decimal.Decimal, error) {
	return c.Value, nil
}

// FieldExtractor reads the quantity from one numeric instance field
type FieldExtractor struct {
	Field string
}

func (f FieldExtractor) Metric(instance Instance) (decimal.Decimal, error) {
	raw, ok := instance[f.Field]
	if !ok {
		return decimal.Zero, &FieldError{Field: f.Field}
	}
	return toDecimal(raw)
}

// LogSteps reads a numeric field and rounds it to steps of Size times its
// order of magnitude, ex 1234 with size 1 becomes 1000 and 5678 becomes 6000.
type LogSteps struct {
	Field string
	Size  int64
}

func (l LogSteps) Metric(instance Instance) (decimal.Decimal, error) {
	value, err := FieldExtractor{Field: l.Field}.Metric(instance)
	if err != nil {
		return decimal.Zero, err
	}
	size := l.Size
	if size <= 0 {
		size = 1
	}
	f, _ := decimal.Max(value, decimal.NewFromInt(1)).Float64()
	magnitude := decimal.New(1, int32(math.Floor(math.Log10(f))))
	step := magnitude.Mul(decimal.NewFromInt(size))
	return value.Div(step).Round(0).Mul(step), nil
}

// CustomFunction wraps a Go function as a metric policy
type CustomFunction func(instance Instance) (decimal.Decimal, error)

func (f CustomFunction) Metric(instance Instance) (decimal.Decimal, error) {
	return f(instance)
}

// DefaultDescription renders "<service description>: <order description>"
type DefaultDescription struct{}

func (DefaultDescription) Describe(svc *Service, o *order.Order) string {
	if o.Description == "" {
		return svc.Description
	}
	return strings.Join([]string{svc.Description, o.Description}, ": ")
}

// CustomDescription wraps a Go function as a description policy
type CustomDescription func(svc *Service, o *order.Order) string

func (f CustomDescription) Describe(svc *Service, o *order.Order) string {
	return f(svc, o)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, fmt.Errorf("nil decimal")
		}
		return *n, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case uint:
		return decimal.NewFromInt(int64(n)), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, fmt.Errorf("cannot use %T as a number", v)
	}
}
