package clickhouse

import (
	"context"

	clickhouse_go "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/flexprice/orderbilling/internal/config"
	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/flexprice/orderbilling/internal/logger"
)

// ClickHouseStore owns the connection to the metric sample database
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logger.Logger
}

func NewClickHouseStore(ctx context.Context, cfg *config.Configuration, logger *logger.Logger) (*ClickHouseStore, error) {
	conn, err := clickhouse_go.Open(cfg.ClickHouse.GetClientOptions())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not open the clickhouse client").
			Mark(ierr.ErrDatabase)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Clickhouse at %s is not reachable", cfg.ClickHouse.Address).
			Mark(ierr.ErrDatabase)
	}

	logger.Infow("connected to clickhouse",
		"address", cfg.ClickHouse.Address,
		"database", cfg.ClickHouse.Database,
	)
	return &ClickHouseStore{conn: conn, logger: logger}, nil
}

func (s *ClickHouseStore) GetConn() driver.Conn {
	return s.conn
}

func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}
