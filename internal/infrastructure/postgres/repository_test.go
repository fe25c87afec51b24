package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"github.com/jhoicas/vento-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/vento-pos/pkg/config"
)

// Requiere VENTO_TEST_DATABASE_URL apuntando a una base desechable.
func openPool(t *testing.T) *postgres.TxRunner {
	t.Helper()
	url := os.Getenv("VENTO_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("VENTO_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE sale_items, sales, products, exchange_rates RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return postgres.NewTxRunner(pool)
}

func TestTxRunner_VentaYRollback(t *testing.T) {
	runner := openPool(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	var productID int64
	err := runner.RunSale(ctx, func(products repository.ProductRepository, _ repository.SaleRepository) error {
		p := entity.NewProduct("Harina PAN", decimal.RequireFromString("1.00"), 5)
		p.SKU = "HAR-1"
		p.ApplyExchangeRate(decimal.RequireFromString("36.50"))
		p.CreatedAt, p.UpdatedAt = now, now
		if err := products.Create(ctx, p); err != nil {
			return err
		}
		productID = p.ID
		return nil
	})
	require.NoError(t, err)

	boom := domain.PersistenceError("simulado", assert.AnError)
	err = runner.RunSale(ctx, func(products repository.ProductRepository, sales repository.SaleRepository) error {
		require.NoError(t, products.UpdateStock(ctx, productID, 2))
		s := &entity.Sale{
			ExternalID: uuid.NewString(), ReceiptNumber: "REC-20240315-0001", SaleDate: now,
			Items:          []entity.SaleItem{{ProductID: productID, ProductName: "Harina PAN", UnitPrice: decimal.RequireFromString("47.45"), Quantity: 3, CreatedAt: now}},
			TaxPercent:     decimal.NewFromInt(16),
			DiscountAmount: decimal.Zero, ExchangeRate: decimal.RequireFromString("36.50"), CurrencyCode: "VES",
			PaymentMethod: entity.PaymentCash, Status: entity.SaleStatusCompleted, CreatedAt: now, UpdatedAt: now,
		}
		s.CalculateTotals()
		require.NoError(t, sales.Create(ctx, s))
		got, err := sales.GetByID(ctx, s.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.True(t, got.Total.Equal(s.Total))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = runner.RunSale(ctx, func(products repository.ProductRepository, sales repository.SaleRepository) error {
		p, err := products.GetByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 5, p.StockQuantity)
		last, err := sales.LatestReceiptNumber(ctx)
		require.NoError(t, err)
		assert.Empty(t, last)
		return nil
	})
	require.NoError(t, err)

	err = runner.RunSale(ctx, func(products repository.ProductRepository, _ repository.SaleRepository) error {
		dup := entity.NewProduct("Otra", decimal.RequireFromString("1.00"), 1)
		dup.SKU = "HAR-1"
		return products.Create(ctx, dup)
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
