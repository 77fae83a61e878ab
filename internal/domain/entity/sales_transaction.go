package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de pago de una venta.
type PaymentStatus string

// Estados de pago.
const (
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
)

// StatusFor es función pura de (pagado, total): PAID si pagado == total.
func StatusFor(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.Equal(total):
		return PaymentStatusPaid
	case paid.IsZero():
		return PaymentStatusUnpaid
	default:
		return PaymentStatusPartiallyPaid
	}
}

// SalesTransaction cabecera de una venta (recibo). Su ID es el receipt id de los movimientos.
type SalesTransaction struct {
	ID           string
	Date         time.Time
	TotalAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	IsCredit     bool
	CustomerName string
	Status       PaymentStatus
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RemainingBalance saldo pendiente = total - pagado.
func (t *SalesTransaction) RemainingBalance() decimal.Decimal {
	return t.TotalAmount.Sub(t.PaidAmount)
}

// ApplyPayment suma un abono (recortado al total) y recalcula el estado. Devuelve lo aplicado.
func (t *SalesTransaction) ApplyPayment(amount decimal.Decimal) decimal.Decimal {
	applied := decimal.Min(amount, t.RemainingBalance())
	t.PaidAmount = t.PaidAmount.Add(applied)
	t.Status = StatusFor(t.PaidAmount, t.TotalAmount)
	return applied
}

// ApplyRefund reduce el total por una devolución o anulación. Si lo pagado supera el nuevo
// total, lo pagado baja al total y se devuelve el efectivo a reintegrar al cliente.
func (t *SalesTransaction) ApplyRefund(value decimal.Decimal) (cashBack decimal.Decimal) {
	t.TotalAmount = decimal.Max(t.TotalAmount.Sub(value), decimal.Zero)
	if t.PaidAmount.GreaterThan(t.TotalAmount) {
		cashBack = t.PaidAmount.Sub(t.TotalAmount)
		t.PaidAmount = t.TotalAmount
	}
	t.Status = StatusFor(t.PaidAmount, t.TotalAmount)
	return cashBack
}
