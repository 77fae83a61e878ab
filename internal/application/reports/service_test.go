package reports

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/application/checkout"
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
	till    *checkout.Service
	reports *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Stores()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "arroz", SKU: "A1", Name: "Arroz", Active: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "leche", SKU: "L1", Name: "Leche", Active: true}))
	engine := ledger.NewEngine(store, repos, lock.NewKeyedMutex(time.Second), logger.Nop(), ledger.Config{})

	for _, in := range []ledger.ReceiveInput{
		{ProductID: "arroz", Quantity: d(10), CostPrice: d(100), SellingPrice: d(150), ReceivedDate: day},
		{ProductID: "leche", Quantity: d(5), CostPrice: d(50), SellingPrice: d(80), ReceivedDate: day},
	} {
		_, err := engine.Receive(ctx, cajero, in)
		require.NoError(t, err)
	}
	return &fixture{
		store:   store,
		engine:  engine,
		till:    checkout.NewService(engine, logger.Nop()),
		reports: NewService(repos, logger.Nop()),
	}
}

// sale cobra 4 arroz y 2 leche, devuelve 1 arroz y anula la línea de leche.
func (f *fixture) sale(t *testing.T) *checkout.Receipt {
	t.Helper()
	at := ledger.Actor{UserID: "u-cajero", At: day.Add(time.Hour)}
	receipt, err := f.till.Checkout(ctx, at, checkout.Request{
		Lines: []checkout.Line{{ProductID: "arroz", Quantity: d(4)}, {ProductID: "leche", Quantity: d(2)}},
	})
	require.NoError(t, err)

	for _, l := range receipt.Lines {
		switch l.ProductID {
		case "arroz":
			_, err = f.engine.Return(ctx, cajero, ledger.ReturnInput{OriginalMovementID: l.MovementID, Quantity: d(1)})
		case "leche":
			_, err = f.engine.Void(ctx, cajero, ledger.VoidInput{MovementID: l.MovementID, Reason: "error de digitación"})
		}
		require.NoError(t, err)
	}
	return receipt
}

// ─── Recibos ──────────────────────────────────────────────────────────────────

func TestTransactionItems_NetoDevueltoYAnulado(t *testing.T) {
	f := newFixture(t)
	receipt := f.sale(t)

	detail, err := f.reports.TransactionItems(ctx, receipt.Sale.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Sale)
	require.Len(t, detail.Items, 2)
	assert.Len(t, detail.Returns, 1)

	for _, it := range detail.Items {
		switch it.ProductID {
		case "arroz":
			assert.Equal(t, "Arroz", it.ProductName)
			assert.True(t, it.Returned.Equal(d(1)))
			assert.True(t, it.Net.Equal(d(3)))
			assert.True(t, it.LineTotal.Equal(d(450)))
			assert.False(t, it.Voided)
		case "leche":
			assert.True(t, it.Voided)
			assert.True(t, it.Net.IsZero())
			assert.True(t, it.LineTotal.IsZero())
		}
	}
	assert.True(t, detail.Total.Equal(d(450)))
	assert.True(t, detail.Sale.TotalAmount.Equal(d(450)), "total %s", detail.Sale.TotalAmount)
}

func TestTransactionItems_PrecioConDecimalesCuadraConElTotal(t *testing.T) {
	f := newFixture(t)
	price := decimal.RequireFromString("3.333")
	receipt, err := f.till.Checkout(ctx, ledger.Actor{UserID: "u-cajero", At: day.Add(time.Hour)}, checkout.Request{
		Lines:        []checkout.Line{{ProductID: "arroz", Quantity: d(3), UnitPrice: &price}},
		CustomerName: "Doña Marta",
		IsCredit:     true,
	})
	require.NoError(t, err)
	_, err = f.engine.Return(ctx, cajero, ledger.ReturnInput{OriginalMovementID: receipt.Lines[0].MovementID, Quantity: d(1)})
	require.NoError(t, err)

	detail, err := f.reports.TransactionItems(ctx, receipt.Sale.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "6.67", detail.Items[0].LineTotal.String())
	assert.True(t, detail.Total.Equal(detail.Sale.TotalAmount), "items %s venta %s", detail.Total, detail.Sale.TotalAmount)

	report, err := f.reports.MarginSummary(ctx, day, day.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "6.67", report.Revenue.String())
}

func TestTransactionItems_ReciboInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.TransactionItems(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Márgenes ─────────────────────────────────────────────────────────────────

func TestMarginSummary_ExcluyeAnuladosYDevoluciones(t *testing.T) {
	f := newFixture(t)
	f.sale(t)

	report, err := f.reports.MarginSummary(ctx, day, day.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Lines)
	assert.True(t, report.UnitsSold.Equal(d(3)))
	assert.True(t, report.Revenue.Equal(d(450)))
	assert.True(t, report.Cost.Equal(d(300)))
	assert.True(t, report.Profit.Equal(d(150)))
	assert.Equal(t, "33.33", report.MarginPct.StringFixed(2))
	require.Len(t, report.Products, 1)
	assert.Equal(t, "A1", report.Products[0].SKU)
}

func TestMarginSummary_FueraDeRango(t *testing.T) {
	f := newFixture(t)
	f.sale(t)

	report, err := f.reports.MarginSummary(ctx, day.Add(3*time.Hour), day.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, report.Lines)
	assert.True(t, report.MarginPct.IsZero())

	_, err = f.reports.MarginSummary(ctx, day, day.Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Ventas ───────────────────────────────────────────────────────────────────

func TestSalesHistoryYPendientes(t *testing.T) {
	f := newFixture(t)
	f.sale(t)

	at := ledger.Actor{UserID: "u-cajero", At: day.Add(90 * time.Minute)}
	credit, err := f.till.Checkout(ctx, at, checkout.Request{
		Lines:        []checkout.Line{{ProductID: "arroz", Quantity: d(2)}},
		CustomerName: "Doña Marta",
		IsCredit:     true,
	})
	require.NoError(t, err)

	history, err := f.reports.SalesHistory(ctx, day, day.Add(2*time.Hour), Page{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, credit.Sale.ID, history[0].ID)

	unpaid, err := f.reports.UnpaidTransactions(ctx, Page{})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, entity.PaymentStatusUnpaid, unpaid[0].Status)
	assert.True(t, unpaid[0].RemainingBalance().Equal(d(300)))
}

// ─── Existencias ──────────────────────────────────────────────────────────────

func TestLowStockProducts(t *testing.T) {
	f := newFixture(t)
	f.sale(t)

	low, err := f.reports.LowStockProducts(ctx, d(7))
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "leche", low[0].ID)
	assert.True(t, low[1].Quantity.Equal(d(7)))

	_, err = f.reports.LowStockProducts(ctx, d(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockCard_OmiteAnulados(t *testing.T) {
	f := newFixture(t)
	f.sale(t)

	card, err := f.reports.StockCard(ctx, "leche", nil, nil, Page{})
	require.NoError(t, err)
	require.Len(t, card, 1)
	assert.Equal(t, entity.MovementTypeIn, card[0].Movement.Type)
	assert.True(t, card[0].Delta.Equal(d(5)))

	card, err = f.reports.StockCard(ctx, "arroz", nil, nil, Page{})
	require.NoError(t, err)
	var balance decimal.Decimal
	for _, e := range card {
		balance = balance.Add(e.Delta)
	}
	assert.True(t, balance.Equal(d(7)), "saldo %s", balance)

	_, err = f.reports.StockCard(ctx, "nope", nil, nil, Page{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductBatches_MasRecientePrimero(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Receive(ctx, cajero, ledger.ReceiveInput{
		ProductID: "arroz", Quantity: d(3), CostPrice: d(110), SellingPrice: d(160), ReceivedDate: day.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	batches, err := f.reports.ProductBatches(ctx, "arroz")
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.True(t, batches[0].CostPrice.Equal(d(110)))

	_, err = f.reports.ProductBatches(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovements_FiltroPorReciboYTipo(t *testing.T) {
	f := newFixture(t)
	receipt := f.sale(t)

	byReceipt, err := f.reports.Movements(ctx, MovementFilter{ReceiptID: receipt.Sale.ID}, Page{})
	require.NoError(t, err)
	assert.Len(t, byReceipt, 3) // 2 OUT + 1 SALES_RETURN

	from, to := day, time.Now().Add(time.Hour) // la devolución se registra con la hora actual
	returns, err := f.reports.Movements(ctx, MovementFilter{Type: entity.MovementTypeSalesReturn, From: &from, To: &to}, Page{})
	require.NoError(t, err)
	require.Len(t, returns, 1)

	_, err = f.reports.Movements(ctx, MovementFilter{Type: "BOGUS"}, Page{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.reports.Movements(ctx, MovementFilter{}, Page{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
