package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/lock"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ptr[T any](v T) *T { return &v }

var ctx = context.Background()

type fixture struct {
	store      *memory.Store
	engine     *ledger.Engine
	products   *ProductUseCase
	categories *CategoryUseCase
	batches    *BatchUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Stores()
	engine := ledger.NewEngine(store, repos, lock.NewKeyedMutex(time.Second), logger.Nop(), ledger.Config{})
	return &fixture{
		store:      store,
		engine:     engine,
		products:   NewProductUseCase(repos.Products, repos.Categories),
		categories: NewCategoryUseCase(repos.Categories),
		batches:    NewBatchUseCase(engine, repos.Batches),
	}
}

// ─── Categorías ───────────────────────────────────────────────────────────────

func TestCategory_CrearDuplicadaYDesactivar(t *testing.T) {
	f := newFixture(t)
	c, err := f.categories.Create(ctx, dto.CreateCategoryRequest{Name: "Granos"})
	require.NoError(t, err)
	assert.True(t, c.Active)

	_, err = f.categories.Create(ctx, dto.CreateCategoryRequest{Name: "Granos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.categories.Update(ctx, c.ID, dto.UpdateCategoryRequest{Active: ptr(false)})
	require.NoError(t, err)

	active, err := f.categories.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := f.categories.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.categories.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Productos ────────────────────────────────────────────────────────────────

func TestProduct_CrearConCantidadCero(t *testing.T) {
	f := newFixture(t)
	c, err := f.categories.Create(ctx, dto.CreateCategoryRequest{Name: "Lácteos"})
	require.NoError(t, err)

	p, err := f.products.Create(ctx, dto.CreateProductRequest{
		SKU: "L-1", Name: "Leche", CategoryID: c.ID, SellingPrice: d(80), DiscountLimit: d(10),
	})
	require.NoError(t, err)
	assert.True(t, p.Quantity.IsZero())
	assert.True(t, p.BuyingPrice.IsZero())
	assert.True(t, p.Active)

	_, err = f.products.Create(ctx, dto.CreateProductRequest{SKU: "L-1", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProduct_Validaciones(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "X", DiscountLimit: d(101)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.products.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "X", SellingPrice: d(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.products.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "X", CategoryID: "fantasma"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduct_UpdateNoTocaCantidad(t *testing.T) {
	f := newFixture(t)
	p, err := f.products.Create(ctx, dto.CreateProductRequest{SKU: "A-1", Name: "Arroz", SellingPrice: d(150)})
	require.NoError(t, err)
	_, err = f.engine.Receive(ctx, ledger.Actor{UserID: "u1"}, ledger.ReceiveInput{
		ProductID: p.ID, Quantity: d(10), CostPrice: d(100), SellingPrice: d(150),
	})
	require.NoError(t, err)

	updated, err := f.products.Update(ctx, p.ID, dto.UpdateProductRequest{Name: ptr("Arroz blanco"), SellingPrice: ptr(d(160))})
	require.NoError(t, err)
	assert.Equal(t, "Arroz blanco", updated.Name)
	assert.True(t, updated.Quantity.Equal(d(10)))

	got, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(d(10)))
	assert.True(t, got.SellingPrice.Equal(d(160)))
}

func TestProduct_DeleteEsLogico(t *testing.T) {
	f := newFixture(t)
	p, err := f.products.Create(ctx, dto.CreateProductRequest{SKU: "A-1", Name: "Arroz"})
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, p.ID))
	got, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	list, err := f.products.List(ctx, dto.ProductListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, 20, list.Page.Limit)

	list, err = f.products.List(ctx, dto.ProductListRequest{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	assert.ErrorIs(t, f.products.Delete(ctx, "nope"), domain.ErrNotFound)
}

// ─── Lotes ────────────────────────────────────────────────────────────────────

func TestBatch_CorrigePreciosSinTocarMovimientos(t *testing.T) {
	f := newFixture(t)
	p, err := f.products.Create(ctx, dto.CreateProductRequest{SKU: "A-1", Name: "Arroz"})
	require.NoError(t, err)
	res, err := f.engine.Receive(ctx, ledger.Actor{UserID: "u1"}, ledger.ReceiveInput{
		ProductID: p.ID, Quantity: d(10), CostPrice: d(100), SellingPrice: d(150),
	})
	require.NoError(t, err)

	b, err := f.batches.CorrectPricing(ctx, res.Batch.ID, dto.BatchPricingRequest{
		CostPrice: ptr(d(95)), DiscountCode: ptr("PROMO"), DiscountPercentage: ptr(d(5)),
	})
	require.NoError(t, err)
	assert.True(t, b.CostPrice.Equal(d(95)))
	assert.True(t, b.SellingPrice.Equal(d(150)))
	assert.Equal(t, "PROMO", b.DiscountCode)

	m, err := f.store.Stores().Movements.GetByID(ctx, res.Movement.ID)
	require.NoError(t, err)
	assert.True(t, m.UnitCost.Equal(d(100)))

	_, err = f.batches.CorrectPricing(ctx, res.Batch.ID, dto.BatchPricingRequest{DiscountPercentage: ptr(d(120))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.batches.CorrectPricing(ctx, "nope", dto.BatchPricingRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
