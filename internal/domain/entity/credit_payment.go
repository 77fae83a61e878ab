package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditPayment registro inmutable de un abono (o reintegro, con monto negativo) a una venta.
// La suma de los registros de un recibo es igual a su PaidAmount.
type CreditPayment struct {
	ID        string
	ReceiptID string
	Amount    decimal.Decimal
	PaidAt    time.Time
	Note      string
	CreatedBy string
}
