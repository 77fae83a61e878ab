package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CreditPaymentRepository = (*CreditPaymentRepo)(nil)

// CreditPaymentRepo registro de abonos (solo inserción) sobre PostgreSQL.
type CreditPaymentRepo struct {
	q Querier
}

// NewCreditPaymentRepository construye el adaptador de abonos. Pasar pool o tx (Querier).
func NewCreditPaymentRepository(q Querier) *CreditPaymentRepo {
	return &CreditPaymentRepo{q: q}
}

func (r *CreditPaymentRepo) Append(ctx context.Context, p *entity.CreditPayment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO credit_payments (id, receipt_id, amount, paid_at, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.ReceiptID, p.Amount, p.PaidAt, p.Note, p.CreatedBy,
	)
	if err != nil {
		if _, ok := foreignKeyConstraint(err); ok {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit payment: %w", err)
	}
	return nil
}

// ListByReceipt abonos del recibo en orden de registro.
func (r *CreditPaymentRepo) ListByReceipt(ctx context.Context, receiptID string) ([]*entity.CreditPayment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, receipt_id, amount, paid_at, note, created_by
		FROM credit_payments WHERE receipt_id = $1 ORDER BY seq`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list credit payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditPayment
	for rows.Next() {
		var p entity.CreditPayment
		if err := rows.Scan(&p.ID, &p.ReceiptID, &p.Amount, &p.PaidAt, &p.Note, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan credit payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *CreditPaymentRepo) SumByReceipt(ctx context.Context, receiptID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM credit_payments WHERE receipt_id = $1`, receiptID,
	).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum credit payments: %w", err)
	}
	return sum, nil
}
