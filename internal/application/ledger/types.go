package ledger

import (
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Actor identifica a quién ejecuta la operación y, opcionalmente, el instante a registrar.
type Actor struct {
	UserID string
	At     time.Time // cero = ahora
}

// Now instante a registrar para la operación.
func (a Actor) Now() time.Time {
	if a.At.IsZero() {
		return time.Now().UTC()
	}
	return a.At
}

// ReceiveInput entrada de una recepción de mercancía (un lote nuevo).
type ReceiveInput struct {
	ProductID          string
	Quantity           decimal.Decimal
	CostPrice          decimal.Decimal
	SellingPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountCode       string
	ReceivedDate       time.Time // cero = fecha del actor
	InvoiceID          string    // factura del proveedor (opcional)
}

// InvoiceLine línea de una factura de proveedor.
type InvoiceLine struct {
	ProductID          string
	Quantity           decimal.Decimal
	CostPrice          decimal.Decimal
	SellingPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountCode       string
}

// ReceiveInvoiceInput recepción de varias líneas bajo una misma factura.
type ReceiveInvoiceInput struct {
	InvoiceID    string
	ReceivedDate time.Time
	Lines        []InvoiceLine
}

// ReceiveResult entidades resultantes de una recepción.
type ReceiveResult struct {
	Batch    *entity.StockBatch
	Movement *entity.StockMovement
	Product  *entity.Product
}

// SellInput venta de un lote elegido por el caller.
type SellInput struct {
	ProductID string
	BatchID   string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	ReceiptID string
}

// AdjustInput ajuste (solo descuento) por corrección o pérdida.
type AdjustInput struct {
	ProductID string
	BatchID   string
	Quantity  decimal.Decimal
	Reason    string
}

// MovementResult entidades resultantes de un descuento de existencias.
type MovementResult struct {
	Movement *entity.StockMovement
	Batch    *entity.StockBatch
	Product  *entity.Product
}

// ReturnInput devolución parcial o total de una línea de venta.
type ReturnInput struct {
	OriginalMovementID string
	Quantity           decimal.Decimal
}

// VoidInput anulación completa de una línea.
type VoidInput struct {
	MovementID string
	Reason     string
}

// ReversalResult entidades resultantes de una devolución o anulación.
// Sale es nil si la línea no pertenece a una venta registrada.
type ReversalResult struct {
	Movement *entity.StockMovement // SALES_RETURN creado, o la línea anulada
	Original *entity.StockMovement
	Batch    *entity.StockBatch
	Product  *entity.Product
	Sale     *entity.SalesTransaction
	Restored decimal.Decimal // unidades devueltas al lote
	Refund   decimal.Decimal // valor descontado del total de la venta
	CashBack decimal.Decimal // efectivo a reintegrar al cliente
}

// Drift diferencia entre la cantidad en caché del producto y la suma de sus lotes.
type Drift struct {
	ProductID string
	Cached    decimal.Decimal
	Actual    decimal.Decimal
	Repaired  bool
}

// ReconcileReport resultado de una conciliación.
type ReconcileReport struct {
	Checked int
	Drifts  []Drift
}
