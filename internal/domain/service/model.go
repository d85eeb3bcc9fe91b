package service

import (
	"fmt"
	"runtime/debug"

	"github.com/flexprice/orderbilling/internal/domain/order"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/flexprice/orderbilling/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// IgnorePeriod is a trial window: orders cancelled within it after their
// registration are not billed. The zero value never ignores.
type IgnorePeriod struct {
	Days   int `json:"days" validate:"min=0"`
	Months int `json:"months" validate:"min=0"`
}

// IsZero reports whether the period is disabled
func (p IgnorePeriod) IsZero() bool {
	return p.Days == 0 && p.Months == 0
}

// Service is the read only billing policy of a service
type Service struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description"`

	// NominalPrice is the undiscounted price of one unit for one period
	NominalPrice decimal.Decimal `json:"nominal_price"`

	BillingPeriod types.BillingPeriod  `json:"billing_period" validate:"required,enum"`
	PricingPeriod types.BillingPeriod  `json:"pricing_period" validate:"required,enum"`
	BillingPoint  types.BillingPoint   `json:"billing_point" validate:"required,enum"`
	PaymentStyle  types.PaymentStyle   `json:"payment_style" validate:"required,enum"`
	OnCancel      types.OnCancelPolicy `json:"on_cancel" validate:"required,enum"`

	IgnorePeriod     IgnorePeriod `json:"ignore_period"`
	IgnoreSuperusers bool         `json:"ignore_superusers"`

	// Match selects the instances billed by the service, nil matches all
	Match MatchPolicy `json:"-"`
	// Metric makes the service usage priced, nil means order priced
	Metric MetricPolicy `json:"-"`
	// OrderDescription renders line descriptions, nil uses DefaultDescription
	OrderDescription DescriptionPolicy `json:"-"`
}

// IsMetered reports whether lines are priced from measured usage
func (s *Service) IsMetered() bool {
	return s.Metric != nil
}

func (s *Service) HasBillingPeriod() bool {
	return s.BillingPeriod != types.BILLING_PERIOD_NEVER
}

func (s *Service) HasPricingPeriod() bool {
	return s.PricingPeriod != types.BILLING_PERIOD_NEVER
}

// IsPrepayCompensate reports whether cancelled orders hand their unused
// prepaid time to other orders
func (s *Service) IsPrepayCompensate() bool {
	return s.PaymentStyle == types.PAYMENT_STYLE_PREPAY && s.OnCancel == types.ON_CANCEL_COMPENSATE
}

// Matches evaluates the match policy
func (s *Service) Matches(instance Instance) (bool, error) {
	if s.Match == nil {
		return true, nil
	}
	return s.Match.Matches(instance)
}

// GetMetric evaluates the metric policy
func (s *Service) GetMetric(instance Instance) (decimal.Decimal, error) {
	if s.Metric == nil {
		return decimal.Zero, ierr.NewError("service has no metric").
			WithHintf("Service %s is not usage priced", s.ID).
			Mark(ierr.ErrInvalidArgument)
	}
	value, err := s.Metric.Metric(instance)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithMessagef("metric on service %s", s.ID).
			Mark(ierr.ErrPolicyEvaluation)
	}
	return value, nil
}

// DescribeOrder renders the line description of an order
func (s *Service) DescribeOrder(o *order.Order) string {
	if s.OrderDescription == nil {
		return DefaultDescription{}.Describe(s, o)
	}
	return s.OrderDescription.Describe(s, o)
}

// PriceAt returns the unit price at a position, the nominal price when the
// rate table is empty
func (s *Service) PriceAt(rates Rates, position int64) decimal.Decimal {
	if len(rates) == 0 {
		return s.NominalPrice
	}
	return rates.PriceAt(position)
}

// Accumulated returns the total price of metric units, nominal price per unit
// when the rate table is empty
func (s *Service) Accumulated(rates Rates, metric decimal.Decimal) decimal.Decimal {
	if len(rates) == 0 {
		return s.NominalPrice.Mul(metric)
	}
	return rates.Accumulated(metric)
}

// IsOrderIgnored reports whether an order is excluded from billing, either
// explicitly or because it was cancelled inside the ignore period
func (s *Service) IsOrderIgnored(o *order.Order) bool {
	if !s.IgnorePeriod.IsZero() && o.CancelledOn != nil {
		limit := types.AddClampedDate(o.RegisteredOn, 0, s.IgnorePeriod.Months, s.IgnorePeriod.Days)
		if !o.CancelledOn.After(limit) {
			return true
		}
	}
	return o.Ignore
}

// IsAccountIgnored reports whether the account is excluded from billing by
// this service. "superuser" in ignoreTypes also matches superuser accounts.
func (s *Service) IsAccountIgnored(account *order.Account, ignoreTypes []string) bool {
	if !s.IgnoreSuperusers || account == nil {
		return false
	}
	if lo.Contains(ignoreTypes, account.Type) {
		return true
	}
	return account.IsSuperuser && lo.Contains(ignoreTypes, "superuser")
}

// Validate checks the configuration and, when a sample instance is given,
// evaluates the match and metric policies against it. Policy failures are
// reported with the type and message of the underlying error.
func (s *Service) Validate(sample Instance) error {
	if err := validator.ValidateRequest(s); err != nil {
		return err
	}
	if sample == nil {
		return nil
	}
	if err := tryPolicy("match", func() error {
		_, err := s.Matches(sample)
		return err
	}); err != nil {
		return err
	}
	if s.Metric == nil {
		return nil
	}
	return tryPolicy("metric", func() error {
		_, err := s.Metric.Metric(sample)
		return err
	})
}

// tryPolicy runs a policy evaluation turning errors and panics into policy
// evaluation errors
func tryPolicy(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = policyError(name, cause, string(debug.Stack()))
		}
	}()
	if evalErr := fn(); evalErr != nil {
		return policyError(name, evalErr, "")
	}
	return nil
}

func policyError(name string, cause error, stack string) error {
	details := map[string]any{
		"policy":     name,
		"error_type": fmt.Sprintf("%T", cause),
	}
	if stack != "" {
		details["stack"] = stack
	}
	return ierr.NewErrorf("%T: %s", cause, cause.Error()).
		WithHintf("The %s policy failed on the sample instance", name).
		WithReportableDetails(details).
		Mark(ierr.ErrPolicyEvaluation)
}
