package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest body para POST /api/checkout.
type CheckoutRequest struct {
	Lines          []CheckoutLineRequest `json:"lines" validate:"required,min=1,dive"`
	DiscountCode   string                `json:"discount_code" validate:"max=40"`
	CustomerName   string                `json:"customer_name" validate:"required_if=IsCredit true,max=200"`
	IsCredit       bool                  `json:"is_credit"`
	UpfrontPayment decimal.Decimal       `json:"upfront_payment"`
	Tendered       decimal.Decimal       `json:"tendered"`
}

// CheckoutLineRequest línea del carrito.
type CheckoutLineRequest struct {
	ProductID       string           `json:"product_id" validate:"required,max=64"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"` // precio explícito; si falta se usa el del lote
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

// ReceiptLineResponse porción de una línea vendida de un lote.
type ReceiptLineResponse struct {
	MovementID  string          `json:"movement_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	BatchID     string          `json:"batch_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// CheckoutResponse resultado del cobro.
type CheckoutResponse struct {
	Sale   TransactionResponse   `json:"sale"`
	Lines  []ReceiptLineResponse `json:"lines"`
	Change decimal.Decimal       `json:"change"`
}

// TransactionResponse venta (recibo) en respuestas.
type TransactionResponse struct {
	ID               string          `json:"id"`
	Date             time.Time       `json:"date"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	IsCredit         bool            `json:"is_credit"`
	CustomerName     string          `json:"customer_name,omitempty"`
	Status           string          `json:"status"`
	CreatedBy        string          `json:"created_by,omitempty"`
}

// PaymentRequest body para POST /api/credit/:receipt_id/payments.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" validate:"max=200"`
}

// PaymentResponse abono registrado en el log de crédito.
type PaymentResponse struct {
	ID        string          `json:"id"`
	ReceiptID string          `json:"receipt_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	Note      string          `json:"note,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
}

// RecordPaymentResponse resultado de un abono.
type RecordPaymentResponse struct {
	Payment PaymentResponse     `json:"payment"`
	Sale    TransactionResponse `json:"sale"`
}

// ConsistencyResponse resultado de GET /api/credit/:receipt_id/verify.
type ConsistencyResponse struct {
	ReceiptID  string          `json:"receipt_id"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	LogTotal   decimal.Decimal `json:"log_total"`
	Consistent bool            `json:"consistent"`
}
