package main

import (
	"context"
	"time"

	"github.com/flexprice/orderbilling/internal/billing"
	"github.com/flexprice/orderbilling/internal/cache"
	"github.com/flexprice/orderbilling/internal/clickhouse"
	"github.com/flexprice/orderbilling/internal/config"
	"github.com/flexprice/orderbilling/internal/domain/line"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/flexprice/orderbilling/internal/postgres"
	"github.com/flexprice/orderbilling/internal/repository"
	"github.com/flexprice/orderbilling/internal/sentry"
	"github.com/flexprice/orderbilling/internal/service"
	"github.com/flexprice/orderbilling/internal/validator"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// ORDERBILLING_* overrides may live in a local .env
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// Postgres
			postgres.NewDB,

			// Clickhouse
			provideClickHouseStore,

			// Repositories
			repository.NewOrderRepository,
			repository.NewRateProvider,
			repository.NewMetricRepository,

			// Service layer
			service.NewServiceParams,
			service.NewBillingService,
			provideCatalog,
		),
		sentry.Module(),
		fx.Invoke(runBilling),
	)
	app.Run()
}

func provideClickHouseStore(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*clickhouse.ClickHouseStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := clickhouse.NewClickHouseStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

func provideCatalog(cfg *config.Configuration) (service.Catalog, error) {
	return service.LoadCatalog(cfg.Run.CatalogFile)
}

func runBilling(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Configuration,
	log *logger.Logger,
	sentryService *sentry.Service,
	db *postgres.DB,
	catalog service.Catalog,
	billingService service.BillingService,
) error {
	svc, err := catalog.Get(cfg.Run.ServiceID)
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				opts := billing.Options{
					Commit:   !cfg.Run.Proforma,
					Proforma: cfg.Run.Proforma,
				}
				tx, ctx := sentryService.StartTransaction(context.Background(), "billrun."+svc.ID)
				results := billingService.BillAccounts(ctx, svc, cfg.Run.Accounts, opts)

				exitCode := 0
				for _, r := range results {
					if r.Err != nil {
						exitCode = 1
						log.Errorw("failed to bill account", "account_id", r.AccountID, "error", r.Err)
						sentryService.CaptureException(r.Err, map[string]string{
							"account_id": r.AccountID,
							"service_id": svc.ID,
						})
						continue
					}
					for _, l := range r.Result.Lines {
						log.Infow("bill line",
							"account_id", r.AccountID,
							"order_id", l.OrderID,
							"description", l.Description,
							"ini", l.Ini.Format(time.DateOnly),
							"end", l.End.Format(time.DateOnly),
							"size", l.Size,
							"subtotal", l.Subtotal,
							"total", l.Total(),
						)
					}
					log.Infow("account billed",
						"account_id", r.AccountID,
						"lines", len(r.Result.Lines),
						"total", line.Sum(r.Result.Lines),
						"committed", r.Result.Committed,
					)
				}
				sentryService.FinishTransaction(tx, exitCode != 0)
				_ = shutdowner.Shutdown(fx.ExitCode(exitCode))
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
	return nil
}
