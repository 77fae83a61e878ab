package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/lock"
	"github.com/jhoicas/Inventario-pos/pkg/config"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerSobrePostgres(t *testing.T) {
	databaseURL := os.Getenv("INVENTARIO_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set INVENTARIO_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: databaseURL})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool, logger.Nop()))

	stamp := time.Now().UnixNano()
	productID := fmt.Sprintf("p-it-%d", stamp)
	reads := NewStores(pool)
	now := time.Now().UTC()
	require.NoError(t, reads.Products.Create(ctx, &entity.Product{
		ID: productID, SKU: "SKU-IT-" + productID, Name: "Producto IT", Active: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM stock_movements WHERE product_id = $1 AND original_movement_id IS NOT NULL`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM stock_movements WHERE product_id = $1`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM stock_batches WHERE product_id = $1`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	})

	engine := ledger.NewEngine(NewTxRunner(pool, 2*time.Second), reads, lock.NewKeyedMutex(2*time.Second), logger.Nop(), ledger.Config{MaxRetries: 3})
	actor := ledger.Actor{UserID: "it"}
	d := decimal.NewFromInt

	rec, err := engine.Receive(ctx, actor, ledger.ReceiveInput{ProductID: productID, Quantity: d(20), CostPrice: d(100), SellingPrice: d(150)})
	require.NoError(t, err)

	sale, err := engine.Sell(ctx, actor, ledger.SellInput{ProductID: productID, BatchID: rec.Batch.ID, Quantity: d(5), UnitPrice: d(150)})
	require.NoError(t, err)
	assert.True(t, sale.Batch.RemainingQuantity.Equal(d(15)))

	_, err = engine.Sell(ctx, actor, ledger.SellInput{ProductID: productID, BatchID: rec.Batch.ID, Quantity: d(20), UnitPrice: d(150)})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = engine.Return(ctx, actor, ledger.ReturnInput{OriginalMovementID: sale.Movement.ID, Quantity: d(5)})
	require.NoError(t, err)

	p, err := reads.Products.GetByID(ctx, productID)
	require.NoError(t, err)
	sum, err := reads.Batches.SumRemainingByProduct(ctx, productID)
	require.NoError(t, err)
	assert.True(t, p.Quantity.Equal(d(20)))
	assert.True(t, sum.Equal(p.Quantity))

	card, err := reads.Movements.QueryByProduct(ctx, productID, nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, card, 3)
	assert.Equal(t, entity.MovementTypeSalesReturn, card[2].Type)
	assert.Equal(t, sale.Movement.ID, card[2].OriginalMovementID)
}
