package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockRequest parámetros de GET /api/reports/low-stock.
type LowStockRequest struct {
	Threshold string `query:"threshold"` // decimal; por defecto 5
}

// ReceiptItemResponse línea de un recibo con devoluciones y anulación.
type ReceiptItemResponse struct {
	MovementID  string          `json:"movement_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	BatchID     string          `json:"batch_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Returned    decimal.Decimal `json:"returned"`
	Net         decimal.Decimal `json:"net"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Voided      bool            `json:"voided"`
	VoidReason  string          `json:"void_reason,omitempty"`
}

// ReceiptDetailResponse respuesta de GET /api/reports/receipts/:receipt_id/items.
type ReceiptDetailResponse struct {
	ReceiptID string                `json:"receipt_id"`
	Sale      *TransactionResponse  `json:"sale,omitempty"`
	Items     []ReceiptItemResponse `json:"items"`
	Returns   []MovementResponse    `json:"returns"`
	Total     decimal.Decimal       `json:"total"`
}

// ProductMarginResponse margen de un producto.
type ProductMarginResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	UnitsSold   decimal.Decimal `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`     // Revenue - Cost
	MarginPct   decimal.Decimal `json:"margin_pct"` // Profit / Revenue * 100
}

// MarginReportResponse respuesta de GET /api/reports/margin.
type MarginReportResponse struct {
	From      time.Time               `json:"from"`
	To        time.Time               `json:"to"`
	Lines     int                     `json:"lines"`
	UnitsSold decimal.Decimal         `json:"units_sold"`
	Revenue   decimal.Decimal         `json:"revenue"`
	Cost      decimal.Decimal         `json:"cost"`
	Profit    decimal.Decimal         `json:"profit"`
	MarginPct decimal.Decimal         `json:"margin_pct"`
	Products  []ProductMarginResponse `json:"products"`
}

// StockCardEntryResponse movimiento de la tarjeta de existencias con su efecto firmado.
type StockCardEntryResponse struct {
	MovementResponse
	Delta decimal.Decimal `json:"delta"`
}

// StockCardRequest parámetros de GET /api/reports/products/:id/stock-card.
type StockCardRequest struct {
	PageRequest
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}
