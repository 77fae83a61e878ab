package repository

import (
	"context"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreditPaymentRepository puerto del registro de abonos (append-only).
type CreditPaymentRepository interface {
	Append(ctx context.Context, payment *entity.CreditPayment) error
	ListByReceipt(ctx context.Context, receiptID string) ([]*entity.CreditPayment, error)
	SumByReceipt(ctx context.Context, receiptID string) (decimal.Decimal, error)
}
