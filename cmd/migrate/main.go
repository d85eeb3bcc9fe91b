package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/flexprice/orderbilling/internal/clickhouse"
	"github.com/flexprice/orderbilling/internal/config"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/flexprice/orderbilling/internal/postgres"
	clickhouseRepo "github.com/flexprice/orderbilling/internal/repository/clickhouse"
	postgresRepo "github.com/flexprice/orderbilling/internal/repository/postgres"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	skipClickHouse := flag.Bool("skip-clickhouse", false, "Only migrate postgres")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		fmt.Fprintln(os.Stdout, "-- postgres")
		fmt.Fprintln(os.Stdout, postgresRepo.Schema)
		if !*skipClickHouse {
			fmt.Fprintln(os.Stdout, "-- clickhouse")
			fmt.Fprintln(os.Stdout, clickhouseRepo.Schema)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	logger.Info("Running postgres migrations...")
	if _, err := db.ExecContext(ctx, postgresRepo.Schema); err != nil {
		logger.Fatalw("Failed to create postgres schema", "error", err)
	}

	if !*skipClickHouse {
		store, err := clickhouse.NewClickHouseStore(ctx, cfg, logger)
		if err != nil {
			logger.Fatalw("Failed to connect to clickhouse", "error", err)
		}
		defer store.Close()

		logger.Info("Running clickhouse migrations...")
		if err := store.GetConn().Exec(ctx, clickhouseRepo.Schema); err != nil {
			logger.Fatalw("Failed to create clickhouse schema", "error", err)
		}
	}

	logger.Info("Migration completed successfully")
	fmt.Println("Migration process completed")
}
