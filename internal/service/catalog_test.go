package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flexprice/orderbilling/internal/domain/service"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join("..", "config", "services.yaml"))
	require.NoError(t, err)
	require.Len(t, catalog, 3)

	hosting, err := catalog.Get("svc_hosting")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(hosting.NominalPrice))
	assert.Equal(t, types.ON_CANCEL_COMPENSATE, hosting.OnCancel)
	assert.Equal(t, 7, hosting.IgnorePeriod.Days)
	assert.False(t, hosting.IsMetered())

	disk, err := catalog.Get("svc_disk")
	require.NoError(t, err)
	require.True(t, disk.IsMetered())

	matches, err := disk.Matches(service.Instance{"active": true, "disk_gb": 1234})
	require.NoError(t, err)
	assert.True(t, matches)

	value, err := disk.GetMetric(service.Instance{"active": true, "disk_gb": 1234})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(value))

	_, err = catalog.Get("svc_unknown")
	assert.True(t, ierr.IsNotFound(err))
}

func TestNewCatalog_Defaults(t *testing.T) {
	catalog, err := NewCatalog([]ServiceDefinition{{
		ID:            "svc_domain",
		NominalPrice:  "12.50",
		BillingPeriod: "ANNUAL",
		BillingPoint:  "FIXED_DATE",
		PaymentStyle:  "PREPAY",
		Metric:        &MetricDefinition{Type: "constant", Value: "2"},
	}})
	require.NoError(t, err)

	svc := catalog["svc_domain"]
	assert.Equal(t, types.BILLING_PERIOD_NEVER, svc.PricingPeriod)
	assert.Equal(t, types.ON_CANCEL_NOTHING, svc.OnCancel)
	assert.Nil(t, svc.Match)

	value, err := svc.GetMetric(service.Instance{})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(value))
}

func TestNewCatalog_Errors(t *testing.T) {
	valid := ServiceDefinition{
		ID:            "svc_a",
		NominalPrice:  "1",
		BillingPeriod: "MONTHLY",
		BillingPoint:  "ON_REGISTER",
		PaymentStyle:  "PREPAY",
	}

	tests := []struct {
		name   string
		mutate func(d *ServiceDefinition)
	}{
		{"bad price", func(d *ServiceDefinition) { d.NominalPrice = "ten" }},
		{"bad period", func(d *ServiceDefinition) { d.BillingPeriod = "WEEKLY" }},
		{"bad metric type", func(d *ServiceDefinition) { d.Metric = &MetricDefinition{Type: "random"} }},
		{"bad constant", func(d *ServiceDefinition) { d.Metric = &MetricDefinition{Type: "constant", Value: "x"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid
			tt.mutate(&def)
			_, err := NewCatalog([]ServiceDefinition{def})
			assert.Error(t, err)
		})
	}

	_, err := NewCatalog([]ServiceDefinition{valid, valid})
	assert.True(t, ierr.IsValidation(err), "duplicate ids")
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, ierr.IsValidation(err))

	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: []\n"), 0o600))
	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Empty(t, catalog)
}
