package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

var _ repository.SalesTransactionRepository = (*SalesTransactionRepo)(nil)

const saleColumns = `id, date, total_amount, paid_amount, is_credit, customer_name, status, created_by, created_at, updated_at`

// SalesTransactionRepo ventas (recibos) sobre PostgreSQL.
type SalesTransactionRepo struct {
	q Querier
}

// NewSalesTransactionRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSalesTransactionRepository(q Querier) *SalesTransactionRepo {
	return &SalesTransactionRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.SalesTransaction, error) {
	var t entity.SalesTransaction
	var status string
	if err := row.Scan(&t.ID, &t.Date, &t.TotalAmount, &t.PaidAmount, &t.IsCredit, &t.CustomerName,
		&status, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = entity.PaymentStatus(status)
	return &t, nil
}

func (r *SalesTransactionRepo) Create(ctx context.Context, t *entity.SalesTransaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales_transactions (id, date, total_amount, paid_amount, is_credit, customer_name, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Date, t.TotalAmount, t.PaidAmount, t.IsCredit, t.CustomerName, string(t.Status),
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return fmt.Errorf("venta inconsistente: %w", domain.ErrInvalidAmount)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SalesTransactionRepo) getOne(ctx context.Context, op, suffix, id string) (*entity.SalesTransaction, error) {
	t, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales_transactions WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (r *SalesTransactionRepo) GetByID(ctx context.Context, id string) (*entity.SalesTransaction, error) {
	return r.getOne(ctx, "get sale", "", id)
}

// GetForUpdate bloquea la venta mientras se aplica un abono o un reintegro.
func (r *SalesTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesTransaction, error) {
	return r.getOne(ctx, "get sale for update", " FOR UPDATE", id)
}

// UpdateBalance persiste total, pagado y estado.
func (r *SalesTransactionRepo) UpdateBalance(ctx context.Context, t *entity.SalesTransaction) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales_transactions SET total_amount = $2, paid_amount = $3, status = $4, updated_at = $5
		WHERE id = $1`, t.ID, t.TotalAmount, t.PaidAmount, string(t.Status), t.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrOverPayment
		}
		return fmt.Errorf("update sale balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListUnpaid ventas con saldo pendiente, más antiguas primero.
func (r *SalesTransactionRepo) ListUnpaid(ctx context.Context, limit, offset int) ([]*entity.SalesTransaction, error) {
	return r.list(ctx, "list unpaid sales", `
		SELECT `+saleColumns+` FROM sales_transactions WHERE status <> 'PAID'
		ORDER BY date LIMIT $1 OFFSET $2`, limitArg(limit), offset)
}

// ListByDateRange ventas en [from, to], más recientes primero.
func (r *SalesTransactionRepo) ListByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.SalesTransaction, error) {
	return r.list(ctx, "list sales by date", `
		SELECT `+saleColumns+` FROM sales_transactions WHERE date >= $1 AND date <= $2
		ORDER BY date DESC LIMIT $3 OFFSET $4`, from, to, limitArg(limit), offset)
}

func (r *SalesTransactionRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM sales_transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sale ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan sale ids: %w", err)
	}
	return ids, nil
}

func (r *SalesTransactionRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.SalesTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.SalesTransaction
	for rows.Next() {
		t, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
