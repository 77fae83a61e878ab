package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/application/checkout"
	"github.com/jhoicas/Inventario-pos/internal/application/credit"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/lock"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// newServer arma la API completa sobre el almacén en memoria.
func newServer(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	repos := store.Stores()
	engine := ledger.NewEngine(store, repos, lock.NewKeyedMutex(time.Second), log, ledger.Config{})

	app := apphttp.NewApp(apphttp.AppConfig{Name: "test"}, log)
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:  usecase.NewProductUseCase(repos.Products, repos.Categories),
		CategoryUC: usecase.NewCategoryUseCase(repos.Categories),
		BatchUC:    usecase.NewBatchUseCase(engine, repos.Batches),
		Ledger:     engine,
		Credit:     credit.NewEngine(engine, repos, log),
		Checkout:   checkout.NewService(engine, log),
		Reports:    reports.NewService(repos, log),
		ReceiptPDF: pdf.NewReceiptPDFGenerator("Tienda de prueba"),
		JWTSecret:  testJWTSecret,
	})
	return app
}

// call ejecuta la petición con el rol dado ("" = sin token) y decodifica la respuesta en out.
func call(t *testing.T, app *fiber.App, role, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

// seedProduct crea un producto y recibe 20 unidades a costo 100, venta 150.
func seedProduct(t *testing.T, app *fiber.App) (dto.ProductResponse, dto.LedgerResultResponse) {
	t.Helper()
	var p dto.ProductResponse
	status := call(t, app, "admin", http.MethodPost, "/api/products",
		dto.CreateProductRequest{SKU: "A-1", Name: "Arroz", SellingPrice: d(150)}, &p)
	require.Equal(t, http.StatusCreated, status)

	var rec dto.LedgerResultResponse
	status = call(t, app, "bodeguero", http.MethodPost, "/api/inventory/receipts",
		dto.ReceiveRequest{ProductID: p.ID, Quantity: d(20), CostPrice: d(100), SellingPrice: d(150)}, &rec)
	require.Equal(t, http.StatusCreated, status)
	return p, rec
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación y validación
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_SinTokenRetorna401(t *testing.T) {
	app := newServer(t)
	var e dto.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "", http.MethodGet, "/api/products", nil, &e))
	assert.Equal(t, "MISSING_TOKEN", e.Code)
}

func TestRouter_ValidacionYNoEncontrado(t *testing.T) {
	app := newServer(t)
	var e dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, app, "admin", http.MethodPost, "/api/products",
		dto.CreateProductRequest{Name: "Sin SKU"}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	assert.Equal(t, http.StatusNotFound, call(t, app, "admin", http.MethodGet, "/api/products/no-existe", nil, &e))
	assert.Equal(t, "NOT_FOUND", e.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, app, "bodeguero", http.MethodPost, "/api/inventory/adjustments",
		dto.AdjustRequest{ProductID: "x", BatchID: "y", Quantity: d(1), Reason: "ROBO"}, &e))
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro de existencias
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_RecibirYVenderSinStock(t *testing.T) {
	app := newServer(t)
	p, rec := seedProduct(t, app)
	assert.True(t, rec.Product.Quantity.Equal(d(20)))
	assert.Equal(t, "IN", rec.Movement.Type)

	var sold dto.LedgerResultResponse
	require.Equal(t, http.StatusCreated, call(t, app, "cajero", http.MethodPost, "/api/inventory/sales",
		dto.SellRequest{ProductID: p.ID, BatchID: rec.Batch.ID, Quantity: d(5), UnitPrice: d(150)}, &sold))
	assert.True(t, sold.Batch.RemainingQuantity.Equal(d(15)))
	assert.True(t, sold.Movement.UnitCost.Equal(d(100)))

	var e dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, "cajero", http.MethodPost, "/api/inventory/sales",
		dto.SellRequest{ProductID: p.ID, BatchID: rec.Batch.ID, Quantity: d(20), UnitPrice: d(150)}, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)

	var got dto.ProductResponse
	require.Equal(t, http.StatusOK, call(t, app, "cajero", http.MethodGet, "/api/products/"+p.ID, nil, &got))
	assert.True(t, got.Quantity.Equal(d(15)))

	var movements []dto.MovementResponse
	require.Equal(t, http.StatusOK, call(t, app, "cajero", http.MethodGet, "/api/inventory/movements?product_id="+p.ID, nil, &movements))
	assert.Len(t, movements, 2)

	var rep dto.ReconcileResponse
	require.Equal(t, http.StatusOK, call(t, app, "admin", http.MethodPost, "/api/inventory/reconcile", nil, &rep))
	assert.Empty(t, rep.Drifts)
}

func TestRouter_CajeroNoPuedeAnular(t *testing.T) {
	app := newServer(t)
	_, rec := seedProduct(t, app)

	var e dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden, call(t, app, "cajero", http.MethodPost,
		"/api/inventory/movements/"+rec.Movement.ID+"/void", dto.VoidRequest{Reason: "x"}, &e))
	assert.Equal(t, "FORBIDDEN", e.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cobro, crédito y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_VentaACreditoCompleta(t *testing.T) {
	app := newServer(t)
	p, _ := seedProduct(t, app)

	var receipt dto.CheckoutResponse
	require.Equal(t, http.StatusCreated, call(t, app, "cajero", http.MethodPost, "/api/checkout", dto.CheckoutRequest{
		Lines:        []dto.CheckoutLineRequest{{ProductID: p.ID, Quantity: d(5)}},
		CustomerName: "Doña Marta",
		IsCredit:     true,
	}, &receipt))
	receiptID := receipt.Sale.ID
	assert.True(t, receipt.Sale.TotalAmount.Equal(d(750)))
	assert.Equal(t, "UNPAID", receipt.Sale.Status)
	require.Len(t, receipt.Lines, 1)

	paymentsPath := "/api/credit/" + receiptID + "/payments"
	var paid dto.RecordPaymentResponse
	require.Equal(t, http.StatusCreated, call(t, app, "cajero", http.MethodPost, paymentsPath, dto.PaymentRequest{Amount: d(400)}, &paid))
	assert.Equal(t, "PARTIALLY_PAID", paid.Sale.Status)

	var e dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, "cajero", http.MethodPost, paymentsPath, dto.PaymentRequest{Amount: d(1000)}, &e))
	assert.Equal(t, "OVER_PAYMENT", e.Code)

	require.Equal(t, http.StatusCreated, call(t, app, "cajero", http.MethodPost, paymentsPath, dto.PaymentRequest{Amount: d(350)}, &paid))
	assert.Equal(t, "PAID", paid.Sale.Status)

	var log []dto.PaymentResponse
	require.Equal(t, http.StatusOK, call(t, app, "cajero", http.MethodGet, paymentsPath, nil, &log))
	assert.Len(t, log, 2)

	var consistency dto.ConsistencyResponse
	require.Equal(t, http.StatusOK, call(t, app, "admin", http.MethodGet, "/api/credit/"+receiptID+"/verify", nil, &consistency))
	assert.True(t, consistency.Consistent)
	assert.True(t, consistency.PaidAmount.Equal(d(750)))

	var detail dto.ReceiptDetailResponse
	require.Equal(t, http.StatusOK, call(t, app, "cajero", http.MethodGet, "/api/reports/receipts/"+receiptID+"/items", nil, &detail))
	require.Len(t, detail.Items, 1)
	assert.True(t, detail.Total.Equal(d(750)))

	var low []dto.ProductResponse
	require.Equal(t, http.StatusOK, call(t, app, "cajero", http.MethodGet, "/api/reports/low-stock?threshold=15", nil, &low))
	assert.Len(t, low, 1)

	var margin dto.MarginReportResponse
	require.Equal(t, http.StatusOK, call(t, app, "admin", http.MethodGet, "/api/reports/margin", nil, &margin))
	assert.True(t, margin.Profit.Equal(d(250)))

	var reversal dto.ReversalResponse
	require.Equal(t, http.StatusOK, call(t, app, "admin", http.MethodPost,
		"/api/inventory/movements/"+receipt.Lines[0].MovementID+"/void", dto.VoidRequest{Reason: "error de cobro"}, &reversal))
	assert.True(t, reversal.CashBack.Equal(d(750)))
	require.NotNil(t, reversal.Sale)
	assert.True(t, reversal.Sale.TotalAmount.IsZero())
}

func TestRouter_ReciboPDF(t *testing.T) {
	app := newServer(t)
	p, _ := seedProduct(t, app)

	var receipt dto.CheckoutResponse
	require.Equal(t, http.StatusCreated, call(t, app, "cajero", http.MethodPost, "/api/checkout", dto.CheckoutRequest{
		Lines: []dto.CheckoutLineRequest{{ProductID: p.ID, Quantity: d(2)}},
	}, &receipt))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/receipts/"+receipt.Sale.ID+"/pdf", nil)
	req.Header.Set("Authorization", tokenForRole(t, "cajero"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	require.Greater(t, len(body), 4)
	assert.Equal(t, "%PDF", string(body[:4]))
}

func TestRouter_ConciliacionAsincronaSinCola(t *testing.T) {
	app := newServer(t)
	var e dto.ErrorResponse
	assert.Equal(t, http.StatusServiceUnavailable, call(t, app, "admin", http.MethodPost, "/api/inventory/reconcile?async=true", nil, &e))
	assert.Equal(t, "SERVICE_UNAVAILABLE", e.Code)
}
