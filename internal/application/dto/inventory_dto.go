package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveRequest body para POST /api/inventory/receipts.
type ReceiveRequest struct {
	ProductID          string          `json:"product_id" validate:"required,max=64"`
	Quantity           decimal.Decimal `json:"quantity"`
	CostPrice          decimal.Decimal `json:"cost_price"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountCode       string          `json:"discount_code" validate:"max=40"`
	ReceivedDate       string          `json:"received_date"` // YYYY-MM-DD, opcional
	InvoiceID          string          `json:"invoice_id" validate:"max=64"`
}

// ReceiveInvoiceRequest body para POST /api/inventory/invoices.
type ReceiveInvoiceRequest struct {
	InvoiceID    string               `json:"invoice_id" validate:"required,max=64"`
	ReceivedDate string               `json:"received_date"`
	Lines        []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// InvoiceLineRequest línea de una factura de proveedor.
type InvoiceLineRequest struct {
	ProductID          string          `json:"product_id" validate:"required,max=64"`
	Quantity           decimal.Decimal `json:"quantity"`
	CostPrice          decimal.Decimal `json:"cost_price"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountCode       string          `json:"discount_code" validate:"max=40"`
}

// SellRequest body para POST /api/inventory/sales (lote elegido por el caller).
type SellRequest struct {
	ProductID string          `json:"product_id" validate:"required,max=64"`
	BatchID   string          `json:"batch_id" validate:"required,max=64"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ReceiptID string          `json:"receipt_id" validate:"max=64"`
}

// AdjustRequest body para POST /api/inventory/adjustments.
type AdjustRequest struct {
	ProductID string          `json:"product_id" validate:"required,max=64"`
	BatchID   string          `json:"batch_id" validate:"required,max=64"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason" validate:"required,oneof=CORRECTION LOST"`
}

// ReturnRequest body para POST /api/inventory/returns.
type ReturnRequest struct {
	MovementID string          `json:"movement_id" validate:"required,max=64"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// VoidRequest body para POST /api/inventory/movements/:id/void.
type VoidRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

// MovementQuery filtros de GET /api/inventory/movements. Se usa el primero presente:
// receipt_id, product_id, type, o solo el rango de fechas.
type MovementQuery struct {
	PageRequest
	PeriodRequest
	ProductID string `query:"product_id"`
	ReceiptID string `query:"receipt_id"`
	Type      string `query:"type" validate:"omitempty,oneof=IN OUT ADJUSTMENT SALES_RETURN VOID"`
}

// ReconcileRequest body para POST /api/inventory/reconcile.
type ReconcileRequest struct {
	Repair bool `json:"repair"`
}

// BatchPricingRequest body para PUT /api/batches/:id/pricing.
type BatchPricingRequest struct {
	CostPrice          *decimal.Decimal `json:"cost_price"`
	SellingPrice       *decimal.Decimal `json:"selling_price"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	DiscountCode       *string          `json:"discount_code" validate:"omitempty,max=40"`
}

// BatchResponse lote en respuestas.
type BatchResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	InitialQuantity    decimal.Decimal `json:"initial_quantity"`
	RemainingQuantity  decimal.Decimal `json:"remaining_quantity"`
	CostPrice          decimal.Decimal `json:"cost_price"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountCode       string          `json:"discount_code,omitempty"`
	ReceivedDate       time.Time       `json:"received_date"`
	InvoiceID          string          `json:"invoice_id,omitempty"`
}

// MovementResponse movimiento del libro en respuestas.
type MovementResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	BatchID            string          `json:"batch_id,omitempty"`
	Type               string          `json:"type"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Timestamp          time.Time       `json:"timestamp"`
	ReceiptID          string          `json:"receipt_id,omitempty"`
	ReasonCode         string          `json:"reason_code,omitempty"`
	OriginalMovementID string          `json:"original_movement_id,omitempty"`
	ReturnedQuantity   decimal.Decimal `json:"returned_quantity"`
	IsVoided           bool            `json:"is_voided"`
	VoidReason         string          `json:"void_reason,omitempty"`
	VoidedAt           *time.Time      `json:"voided_at,omitempty"`
	CreatedBy          string          `json:"created_by,omitempty"`
}

// LedgerResultResponse resultado de recepción, venta o ajuste.
type LedgerResultResponse struct {
	Movement MovementResponse `json:"movement"`
	Batch    BatchResponse    `json:"batch"`
	Product  ProductResponse  `json:"product"`
}

// ReversalResponse resultado de una devolución o anulación.
type ReversalResponse struct {
	Movement MovementResponse     `json:"movement"`
	Original MovementResponse     `json:"original"`
	Batch    BatchResponse        `json:"batch"`
	Product  ProductResponse      `json:"product"`
	Sale     *TransactionResponse `json:"sale,omitempty"`
	Restored decimal.Decimal      `json:"restored"`
	Refund   decimal.Decimal      `json:"refund"`
	CashBack decimal.Decimal      `json:"cash_back"`
}

// DriftResponse diferencia detectada por la conciliación.
type DriftResponse struct {
	ProductID string          `json:"product_id"`
	Cached    decimal.Decimal `json:"cached"`
	Actual    decimal.Decimal `json:"actual"`
	Repaired  bool            `json:"repaired"`
}

// ReconcileResponse resultado de POST /api/inventory/reconcile.
type ReconcileResponse struct {
	Checked int             `json:"checked"`
	Drifts  []DriftResponse `json:"drifts"`
}
