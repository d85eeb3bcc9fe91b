package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/orderbilling/internal/domain/order"
	"github.com/flexprice/orderbilling/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateRepository_RatesFor(t *testing.T) {
	tests := []struct {
		name     string
		plan     string
		rows     [][]interface{}
		expected []string
	}{
		{
			name: "plan table wins",
			plan: "gold",
			rows: [][]interface{}{
				{"", int64(1), "10"},
				{"gold", int64(1), "9"},
				{"gold", int64(3), "7.5"},
			},
			expected: []string{"9", "7.5"},
		},
		{
			name: "default table",
			plan: "basic",
			rows: [][]interface{}{
				{"", int64(1), "10"},
				{"", int64(2), "8"},
			},
			expected: []string{"10", "8"},
		},
		{
			name: "no table",
			plan: "basic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewRateRepository(db, logger.NewNoopLogger())

			rows := sqlmock.NewRows([]string{"plan", "quantity", "price"})
			for _, row := range tt.rows {
				rows.AddRow(row...)
			}
			mock.ExpectQuery(`SELECT plan, quantity, price FROM service_rates`).
				WithArgs("svc_vm", tt.plan).
				WillReturnRows(rows)

			rates, err := repo.RatesFor(context.Background(), &order.Account{ID: "acc_1", Plan: tt.plan}, "svc_vm")
			require.NoError(t, err)
			require.Len(t, rates, len(tt.expected))
			for i, price := range tt.expected {
				assert.Equal(t, price, rates[i].Price.String())
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
