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
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, COALESCE(batch_id, ''), type, quantity, unit_cost, unit_price, ts,
	COALESCE(receipt_id, ''), reason_code, COALESCE(original_movement_id, ''), returned_quantity,
	is_voided, void_reason, voided_at, created_by`

// StockMovementRepo libro de movimientos sobre PostgreSQL. Solo inserta, salvo returned_quantity y la anulación.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var typ string
	if err := row.Scan(&m.ID, &m.ProductID, &m.BatchID, &typ, &m.Quantity, &m.UnitCost, &m.UnitPrice,
		&m.Timestamp, &m.ReceiptID, &m.ReasonCode, &m.OriginalMovementID, &m.ReturnedQuantity,
		&m.IsVoided, &m.VoidReason, &m.VoidedAt, &m.CreatedBy); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}

// Append inserta un movimiento validando cantidad, tipo y referencias.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if !m.Quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if !m.Type.IsValid() {
		return domain.ErrInvalidInput
	}
	if m.BatchID != "" {
		var owner string
		err := r.q.QueryRow(ctx, `SELECT product_id FROM stock_batches WHERE id = $1`, m.BatchID).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) || (err == nil && owner != m.ProductID) {
			return domain.ErrInvalidBatch
		}
		if err != nil {
			return fmt.Errorf("check movement batch: %w", err)
		}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, batch_id, type, quantity, unit_cost, unit_price, ts,
			receipt_id, reason_code, original_movement_id, returned_quantity, is_voided, void_reason, voided_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		m.ID, m.ProductID, nullIfEmpty(m.BatchID), string(m.Type), m.Quantity, m.UnitCost, m.UnitPrice, m.Timestamp,
		nullIfEmpty(m.ReceiptID), m.ReasonCode, nullIfEmpty(m.OriginalMovementID), m.ReturnedQuantity,
		m.IsVoided, m.VoidReason, nullTime(m.VoidedAt), m.CreatedBy,
	)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if constraint, ok := foreignKeyConstraint(err); ok {
		switch constraint {
		case "stock_movements_product_fkey":
			return domain.ErrInvalidProduct
		case "stock_movements_batch_fkey":
			return domain.ErrInvalidBatch
		}
		return fmt.Errorf("referencia inválida (%s): %w", constraint, domain.ErrInvalidInput)
	}
	return fmt.Errorf("insert movement: %w", err)
}

func (r *StockMovementRepo) getOne(ctx context.Context, op, suffix, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, "get movement", "", id)
}

// GetForUpdate bloquea la línea para devoluciones y anulaciones concurrentes.
func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, "get movement for update", " FOR UPDATE", id)
}

// IncrementReturned suma a returned_quantity sin superar quantity.
func (r *StockMovementRepo) IncrementReturned(ctx context.Context, id string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_movements SET returned_quantity = returned_quantity + $2
		WHERE id = $1 AND returned_quantity + $2 <= quantity`, id, qty)
	if err != nil {
		return fmt.Errorf("increment returned: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrOverReturn
	}
	return nil
}

// MarkVoided fija el grupo de anulación una sola vez.
func (r *StockMovementRepo) MarkVoided(ctx context.Context, id, reason string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_movements SET is_voided = TRUE, void_reason = $2, voided_at = $3
		WHERE id = $1 AND NOT is_voided`, id, reason, at)
	if err != nil {
		return fmt.Errorf("mark voided: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrMovementVoided
	}
	return nil
}

// QueryByProduct movimientos del producto en orden cronológico; from/to opcionales e inclusivos.
func (r *StockMovementRepo) QueryByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	f, t := timeRange(from, to)
	return r.list(ctx, "query movements by product", `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id = $1 AND ($2::timestamptz IS NULL OR ts >= $2) AND ($3::timestamptz IS NULL OR ts <= $3)
		ORDER BY ts, seq LIMIT $4 OFFSET $5`, productID, f, t, limitArg(limit), offset)
}

func (r *StockMovementRepo) QueryByReceipt(ctx context.Context, receiptID string) ([]*entity.StockMovement, error) {
	if receiptID == "" {
		return nil, nil
	}
	return r.list(ctx, "query movements by receipt", `
		SELECT `+movementColumns+` FROM stock_movements WHERE receipt_id = $1 ORDER BY ts, seq`, receiptID)
}

func (r *StockMovementRepo) QueryByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(ctx, "query movements by date", `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE ts >= $1 AND ts <= $2 ORDER BY ts, seq LIMIT $3 OFFSET $4`, from, to, limitArg(limit), offset)
}

func (r *StockMovementRepo) QueryByType(ctx context.Context, movementType entity.MovementType, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	f, t := timeRange(from, to)
	return r.list(ctx, "query movements by type", `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE type = $1 AND ($2::timestamptz IS NULL OR ts >= $2) AND ($3::timestamptz IS NULL OR ts <= $3)
		ORDER BY ts, seq LIMIT $4 OFFSET $5`, string(movementType), f, t, limitArg(limit), offset)
}

func (r *StockMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
