package service

import (
	"github.com/flexprice/orderbilling/internal/domain/service"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// MatchDefinition is one field comparison of a catalog entry
type MatchDefinition struct {
	Field string `mapstructure:"field"`
	Op    string `mapstructure:"op"`
	Value any    `mapstructure:"value"`
}

// MetricDefinition selects the metric policy of a catalog entry
type MetricDefinition struct {
	// Type is one of constant, field or log_steps
	Type  string `mapstructure:"type"`
	Field string `mapstructure:"field"`
	Value string `mapstructure:"value"`
	Size  int64  `mapstructure:"size"`
}

// ServiceDefinition is how a service is written in the catalog file
type ServiceDefinition struct {
	ID               string               `mapstructure:"id"`
	Description      string               `mapstructure:"description"`
	NominalPrice     string               `mapstructure:"nominal_price"`
	BillingPeriod    string               `mapstructure:"billing_period"`
	PricingPeriod    string               `mapstructure:"pricing_period"`
	BillingPoint     string               `mapstructure:"billing_point"`
	PaymentStyle     string               `mapstructure:"payment_style"`
	OnCancel         string               `mapstructure:"on_cancel"`
	IgnorePeriod     service.IgnorePeriod `mapstructure:"ignore_period"`
	IgnoreSuperusers bool                 `mapstructure:"ignore_superusers"`
	Match            []MatchDefinition    `mapstructure:"match"`
	Metric           *MetricDefinition    `mapstructure:"metric"`
}

// Catalog holds the billable services by id
type Catalog map[string]*service.Service

// LoadCatalog reads and validates the service definitions of a yaml file
func LoadCatalog(path string) (Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Could not read service catalog %s", path).
			Mark(ierr.ErrValidation)
	}

	var defs []ServiceDefinition
	if err := v.UnmarshalKey("services", &defs); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Service catalog is malformed").
			Mark(ierr.ErrValidation)
	}
	return NewCatalog(defs)
}

// NewCatalog builds and validates services from their definitions
func NewCatalog(defs []ServiceDefinition) (Catalog, error) {
	catalog := make(Catalog, len(defs))
	for _, def := range defs {
		if _, ok := catalog[def.ID]; ok {
			return nil, ierr.NewErrorf("duplicate service %s", def.ID).
				WithHint("Service ids must be unique in the catalog").
				Mark(ierr.ErrValidation)
		}
		svc, err := def.ToService()
		if err != nil {
			return nil, err
		}
		if err := svc.Validate(nil); err != nil {
			return nil, err
		}
		catalog[def.ID] = svc
	}
	return catalog, nil
}

// Get returns a service of the catalog
func (c Catalog) Get(id string) (*service.Service, error) {
	svc, ok := c[id]
	if !ok {
		return nil, ierr.NewErrorf("service %s not found", id).
			WithHintf("Service %s is not in the catalog", id).
			Mark(ierr.ErrNotFound)
	}
	return svc, nil
}

func (d ServiceDefinition) ToService() (*service.Service, error) {
	price := decimal.Zero
	if d.NominalPrice != "" {
		var err error
		price, err = decimal.NewFromString(d.NominalPrice)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Invalid nominal price %q for service %s", d.NominalPrice, d.ID).
				Mark(ierr.ErrValidation)
		}
	}

	svc := &service.Service{
		ID:               d.ID,
		Description:      d.Description,
		NominalPrice:     price,
		BillingPeriod:    types.BillingPeriod(d.BillingPeriod),
		PricingPeriod:    types.BillingPeriod(lo.Ternary(d.PricingPeriod == "", string(types.BILLING_PERIOD_NEVER), d.PricingPeriod)),
		BillingPoint:     types.BillingPoint(d.BillingPoint),
		PaymentStyle:     types.PaymentStyle(d.PaymentStyle),
		OnCancel:         types.OnCancelPolicy(lo.Ternary(d.OnCancel == "", string(types.ON_CANCEL_NOTHING), d.OnCancel)),
		IgnorePeriod:     d.IgnorePeriod,
		IgnoreSuperusers: d.IgnoreSuperusers,
	}

	if len(d.Match) > 0 {
		svc.Match = service.All(lo.Map(d.Match, func(m MatchDefinition, _ int) service.MatchPolicy {
			return service.FieldComparison{Field: m.Field, Op: service.ComparisonOp(m.Op), Value: m.Value}
		}))
	}

	if d.Metric != nil {
		metric, err := d.Metric.toPolicy(d.ID)
		if err != nil {
			return nil, err
		}
		svc.Metric = metric
	}
	return svc, nil
}

func (m MetricDefinition) toPolicy(serviceID string) (service.MetricPolicy, error) {
	switch m.Type {
	case "constant":
		value, err := decimal.NewFromString(m.Value)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Invalid constant metric %q for service %s", m.Value, serviceID).
				Mark(ierr.ErrValidation)
		}
		return service.Constant{Value: value}, nil
	case "field":
		return service.FieldExtractor{Field: m.Field}, nil
	case "log_steps":
		return service.LogSteps{Field: m.Field, Size: m.Size}, nil
	}
	return nil, ierr.NewErrorf("unknown metric type %q", m.Type).
		WithHintf("Metric type of service %s must be constant, field or log_steps", serviceID).
		Mark(ierr.ErrValidation)
}
