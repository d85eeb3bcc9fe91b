package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/flexprice/orderbilling/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Cache      CacheConfig
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Sentry     SentryConfig
	Run        RunConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// BillingConfig holds the engine wide policy constants
type BillingConfig struct {
	// AnnualBillingMonth is the month annual FIXED_DATE services are billed on
	AnnualBillingMonth int `mapstructure:"annual_billing_month" validate:"required,min=1,max=12"`
	// CompensationExtendRatio is how many times longer than the gap it bridges
	// a compensation credit must be for the billing point to be extended to it
	CompensationExtendRatio int `mapstructure:"compensation_extend_ratio" validate:"required,min=1"`
	// IgnoreAccountTypes are not billed for services that ignore superusers.
	// The special value "superuser" also matches superuser accounts.
	IgnoreAccountTypes    []string `mapstructure:"ignore_account_types"`
	MaxConcurrentAccounts int      `mapstructure:"max_concurrent_accounts" validate:"min=0"`
	// MetricWritesPerSecond throttles metric recording, 0 disables the limit
	MetricWritesPerSecond float64 `mapstructure:"metric_writes_per_second" validate:"min=0"`
}

type CacheConfig struct {
	Enabled bool
	RateTTL time.Duration `mapstructure:"rate_ttl"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ClickHouseConfig struct {
	Address  string
	TLS      bool
	Username string
	Password string
	Database string
}

type SentryConfig struct {
	Enabled     bool
	DSN         string  `validate:"required_if=Enabled true"`
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// RunConfig drives a single cmd/billrun invocation
type RunConfig struct {
	Accounts  []string
	ServiceID string `mapstructure:"service_id"`
	Proforma  bool
	// CatalogFile is the yaml file holding the service definitions
	CatalogFile string `mapstructure:"catalog_file"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/orderbilling")

	v.SetEnvPrefix("ORDERBILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	def := GetDefaultConfig()
	v.SetDefault("deployment.mode", def.Deployment.Mode)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("billing.annual_billing_month", def.Billing.AnnualBillingMonth)
	v.SetDefault("billing.compensation_extend_ratio", def.Billing.CompensationExtendRatio)
	v.SetDefault("billing.ignore_account_types", def.Billing.IgnoreAccountTypes)
	v.SetDefault("billing.max_concurrent_accounts", def.Billing.MaxConcurrentAccounts)
	v.SetDefault("billing.metric_writes_per_second", def.Billing.MetricWritesPerSecond)
	v.SetDefault("cache.enabled", def.Cache.Enabled)
	v.SetDefault("cache.rate_ttl", def.Cache.RateTTL)
	v.SetDefault("sentry.enabled", def.Sentry.Enabled)
	v.SetDefault("sentry.environment", def.Sentry.Environment)
	v.SetDefault("sentry.sample_rate", def.Sentry.SampleRate)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			AnnualBillingMonth:      1,
			CompensationExtendRatio: 3,
			IgnoreAccountTypes:      []string{"superuser"},
			MaxConcurrentAccounts:   4,
			MetricWritesPerSecond:   100,
		},
		Cache: CacheConfig{
			Enabled: true,
			RateTTL: 5 * time.Minute,
		},
		Sentry: SentryConfig{
			Environment: "local",
			SampleRate:  1.0,
		},
	}
}

func (c ClickHouseConfig) GetClientOptions() *clickhouse.Options {
	options := &clickhouse.Options{
		Addr: []string{c.Address},
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.Username,
			Password: c.Password,
		},
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	}
	if c.TLS {
		options.TLS = &tls.Config{}
	}
	return options
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
