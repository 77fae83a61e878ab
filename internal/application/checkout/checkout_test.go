package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/lock"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var (
	ctx    = context.Background()
	cajero = ledger.Actor{UserID: "u-cajero"}
	day    = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
)

type fixture struct {
	store   *memory.Store
	engine  *ledger.Engine
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Stores()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "arroz", SKU: "A1", Name: "Arroz", Active: true, DiscountLimit: d(10)}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "leche", SKU: "L1", Name: "Leche", Active: true}))
	engine := ledger.NewEngine(store, repos, lock.NewKeyedMutex(time.Second), logger.Nop(), ledger.Config{})

	receive := func(product string, qty, cost, price int64, when time.Time, code string, pct int64) {
		_, err := engine.Receive(ctx, cajero, ledger.ReceiveInput{
			ProductID: product, Quantity: d(qty), CostPrice: d(cost), SellingPrice: d(price),
			ReceivedDate: when, DiscountCode: code, DiscountPercentage: d(pct),
		})
		require.NoError(t, err)
	}
	receive("arroz", 3, 100, 200, day, "", 0)
	receive("arroz", 5, 120, 220, day.Add(24*time.Hour), "PROMO", 10)
	receive("leche", 4, 50, 80, day, "", 0)

	return &fixture{store: store, engine: engine, service: NewService(engine, logger.Nop())}
}

func (f *fixture) quantity(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := f.store.Stores().Products.GetByID(ctx, productID)
	require.NoError(t, err)
	return p.Quantity
}

func TestCheckout_FIFOAbarcaLotes(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.service.Checkout(ctx, cajero, Request{
		Lines:        []Line{{ProductID: "arroz", Quantity: d(4)}, {ProductID: "leche", Quantity: d(1)}},
		DiscountCode: "PROMO",
	})
	require.NoError(t, err)

	require.Len(t, receipt.Lines, 3)
	// 3 del lote antiguo a 200, 1 del nuevo a 220 - 10% = 198
	assert.True(t, receipt.Lines[0].Quantity.Equal(d(3)))
	assert.True(t, receipt.Lines[0].UnitPrice.Equal(d(200)))
	assert.True(t, receipt.Lines[1].UnitPrice.Equal(d(198)))
	assert.True(t, receipt.Lines[1].UnitCost.Equal(d(120)))
	assert.True(t, receipt.Sale.TotalAmount.Equal(d(600+198+80)))
	assert.Equal(t, entity.PaymentStatusPaid, receipt.Sale.Status)
	assert.True(t, f.quantity(t, "arroz").Equal(d(4)))

	movs, err := f.store.Stores().Movements.QueryByReceipt(ctx, receipt.Sale.ID)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	for _, m := range movs {
		assert.Equal(t, movs[0].Timestamp, m.Timestamp)
	}

	payments, _ := f.store.Stores().Payments.ListByReceipt(ctx, receipt.Sale.ID)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(receipt.Sale.TotalAmount))
}

func TestCheckout_CarritoAtomico(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Checkout(ctx, cajero, Request{
		Lines: []Line{{ProductID: "leche", Quantity: d(2)}, {ProductID: "arroz", Quantity: d(50)}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.quantity(t, "leche").Equal(d(4)))

	ids, err := f.store.Stores().Sales.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCheckout_CreditoConAbonoInicial(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.service.Checkout(ctx, cajero, Request{
		Lines:          []Line{{ProductID: "leche", Quantity: d(2)}},
		IsCredit:       true,
		CustomerName:   "Doña Marta",
		UpfrontPayment: d(60),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartiallyPaid, receipt.Sale.Status)
	assert.True(t, receipt.Sale.RemainingBalance().Equal(d(100)))

	_, err = f.service.Checkout(ctx, cajero, Request{
		Lines: []Line{{ProductID: "leche", Quantity: d(1)}}, IsCredit: true, CustomerName: "X", UpfrontPayment: d(500),
	})
	assert.ErrorIs(t, err, domain.ErrOverPayment)

	_, err = f.service.Checkout(ctx, cajero, Request{Lines: []Line{{ProductID: "leche", Quantity: d(1)}}, IsCredit: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckout_ContadoConCambio(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.service.Checkout(ctx, cajero, Request{Lines: []Line{{ProductID: "leche", Quantity: d(1)}}, Tendered: d(100)})
	require.NoError(t, err)
	assert.True(t, receipt.Change.Equal(d(20)))

	_, err = f.service.Checkout(ctx, cajero, Request{Lines: []Line{{ProductID: "leche", Quantity: d(1)}}, Tendered: d(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCheckout_DescuentoDeLinea(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Checkout(ctx, cajero, Request{Lines: []Line{{ProductID: "arroz", Quantity: d(1), DiscountPercent: d(15)}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	manual := d(150)
	receipt, err := f.service.Checkout(ctx, cajero, Request{Lines: []Line{{ProductID: "arroz", Quantity: d(1), UnitPrice: &manual, DiscountPercent: d(10)}}})
	require.NoError(t, err)
	assert.True(t, receipt.Lines[0].UnitPrice.Equal(d(135)))
}

func TestCheckout_Validaciones(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Checkout(ctx, cajero, Request{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.service.Checkout(ctx, cajero, Request{Lines: []Line{{ProductID: "arroz", Quantity: decimal.Zero}}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.service.Checkout(ctx, cajero, Request{Lines: []Line{{ProductID: "fantasma", Quantity: d(1)}}})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestCheckout_DevolucionYAnulacionSobreRecibo(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.service.Checkout(ctx, cajero, Request{
		Lines: []Line{{ProductID: "leche", Quantity: d(3)}}, IsCredit: true, CustomerName: "Ana", UpfrontPayment: d(200),
	})
	require.NoError(t, err)
	line := receipt.Lines[0]

	ret, err := f.engine.Return(ctx, cajero, ledger.ReturnInput{OriginalMovementID: line.MovementID, Quantity: d(1)})
	require.NoError(t, err)
	// total 240 - 80 = 160 < pagado 200: se reintegran 40
	assert.True(t, ret.Sale.TotalAmount.Equal(d(160)))
	assert.True(t, ret.CashBack.Equal(d(40)))
	assert.Equal(t, entity.PaymentStatusPaid, ret.Sale.Status)

	voided, err := f.engine.Void(ctx, cajero, ledger.VoidInput{MovementID: line.MovementID, Reason: "cliente desiste"})
	require.NoError(t, err)
	assert.True(t, voided.Sale.TotalAmount.IsZero())
	assert.True(t, voided.Sale.PaidAmount.IsZero())
	assert.True(t, f.quantity(t, "leche").Equal(d(4)))

	sum, err := f.store.Stores().Payments.SumByReceipt(ctx, receipt.Sale.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestCheckout_PrecioConDecimales_DevolucionTotalSaldaElRecibo(t *testing.T) {
	f := newFixture(t)
	price := decimal.RequireFromString("3.333")
	receipt, err := f.service.Checkout(ctx, cajero, Request{
		Lines: []Line{{ProductID: "leche", Quantity: d(3), UnitPrice: &price}}, IsCredit: true, CustomerName: "Ana",
	})
	require.NoError(t, err)
	// 3 × 3,333 = 9,999 → 10,00
	assert.Equal(t, "10", receipt.Sale.TotalAmount.String())
	assert.Equal(t, entity.PaymentStatusUnpaid, receipt.Sale.Status)

	ret, err := f.engine.Return(ctx, cajero, ledger.ReturnInput{OriginalMovementID: receipt.Lines[0].MovementID, Quantity: d(3)})
	require.NoError(t, err)
	assert.Equal(t, "10", ret.Refund.String())
	assert.True(t, ret.Sale.TotalAmount.IsZero(), "total %s", ret.Sale.TotalAmount)
	assert.True(t, ret.Sale.RemainingBalance().IsZero())
	assert.Equal(t, entity.PaymentStatusPaid, ret.Sale.Status)

	unpaid, err := f.store.Stores().Sales.ListUnpaid(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, unpaid)
}

func TestCheckout_PrecioConDecimales_ParcialesYAnulacion(t *testing.T) {
	f := newFixture(t)
	price := decimal.RequireFromString("3.333")
	receipt, err := f.service.Checkout(ctx, cajero, Request{
		Lines: []Line{{ProductID: "leche", Quantity: d(3), UnitPrice: &price}}, IsCredit: true, CustomerName: "Ana",
	})
	require.NoError(t, err)
	line := receipt.Lines[0]

	first, err := f.engine.Return(ctx, cajero, ledger.ReturnInput{OriginalMovementID: line.MovementID, Quantity: d(1)})
	require.NoError(t, err)
	// 10,00 - round(2 × 3,333) = 10,00 - 6,67
	assert.Equal(t, "3.33", first.Refund.String())
	assert.Equal(t, "6.67", first.Sale.TotalAmount.String())

	voided, err := f.engine.Void(ctx, cajero, ledger.VoidInput{MovementID: line.MovementID, Reason: "cliente desiste"})
	require.NoError(t, err)
	assert.Equal(t, "6.67", voided.Refund.String())
	assert.True(t, voided.Sale.TotalAmount.IsZero())
	assert.Equal(t, entity.PaymentStatusPaid, voided.Sale.Status)
}

func TestCheckout_PrecioExplicitoConMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t)
	price := decimal.RequireFromString("3.33333")
	_, err := f.service.Checkout(ctx, cajero, Request{Lines: []Line{{ProductID: "leche", Quantity: d(1), UnitPrice: &price}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.quantity(t, "leche").Equal(d(4)))
}

// ─── Carrito ──────────────────────────────────────────────────────────────────

func TestSession_OperacionesDeCarrito(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Add("arroz", d(1)))
	require.NoError(t, s.Add("arroz", d(2)))
	require.NoError(t, s.Add("leche", d(1)))
	assert.ErrorIs(t, s.Add("leche", decimal.Zero), domain.ErrInvalidQuantity)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Quantity.Equal(d(3)))

	require.NoError(t, s.SetQuantity("leche", decimal.Zero))
	assert.Len(t, s.Lines(), 1)
	assert.ErrorIs(t, s.Remove("leche"), domain.ErrNotFound)
	assert.ErrorIs(t, s.SetLineDiscount("arroz", d(101)), domain.ErrInvalidInput)

	s.SetDiscountCode("PROMO")
	s.SetCustomer("Ana", true, d(10))
	req := s.Request()
	assert.Equal(t, "PROMO", req.DiscountCode)
	assert.True(t, req.IsCredit)

	s.Clear()
	assert.Empty(t, s.Lines())
	assert.Empty(t, s.Request().DiscountCode)
}

func TestSession_CobroDesdeCarrito(t *testing.T) {
	f := newFixture(t)
	s := NewSession()
	require.NoError(t, s.Add("leche", d(2)))
	require.NoError(t, s.SetPrice("leche", d(75)))

	receipt, err := f.service.Checkout(ctx, cajero, s.Request())
	require.NoError(t, err)
	assert.True(t, receipt.Sale.TotalAmount.Equal(d(150)))
}
