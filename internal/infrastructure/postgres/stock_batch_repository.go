package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

const batchColumns = `id, product_id, initial_quantity, remaining_quantity, cost_price, selling_price,
	discount_percentage, discount_code, received_date, COALESCE(invoice_id, ''), created_at, updated_at`

// Orden FIFO: fecha de recepción, luego creación, luego ID.
const (
	orderFIFO        = `ORDER BY received_date, created_at, id`
	orderNewestFirst = `ORDER BY received_date DESC, created_at DESC, id DESC`
)

// StockBatchRepo implementación de StockBatchRepository sobre PostgreSQL (usable con pool o tx).
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

func scanBatch(row pgx.Row) (*entity.StockBatch, error) {
	var b entity.StockBatch
	if err := row.Scan(&b.ID, &b.ProductID, &b.InitialQuantity, &b.RemainingQuantity, &b.CostPrice,
		&b.SellingPrice, &b.DiscountPercentage, &b.DiscountCode, &b.ReceivedDate, &b.InvoiceID,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserta un lote nuevo; los lotes nunca se eliminan.
func (r *StockBatchRepo) Create(ctx context.Context, b *entity.StockBatch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_batches (id, product_id, initial_quantity, remaining_quantity, cost_price, selling_price,
			discount_percentage, discount_code, received_date, invoice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.ProductID, b.InitialQuantity, b.RemainingQuantity, b.CostPrice, b.SellingPrice,
		b.DiscountPercentage, b.DiscountCode, b.ReceivedDate, nullIfEmpty(b.InvoiceID), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if _, ok := foreignKeyConstraint(err); ok {
			return domain.ErrInvalidProduct
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidQuantity
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *StockBatchRepo) getOne(ctx context.Context, op, query string, id string) (*entity.StockBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// GetByID obtiene un lote por ID.
func (r *StockBatchRepo) GetByID(ctx context.Context, id string) (*entity.StockBatch, error) {
	return r.getOne(ctx, "get batch", `SELECT `+batchColumns+` FROM stock_batches WHERE id = $1`, id)
}

// GetForUpdate obtiene el lote y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockBatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error) {
	return r.getOne(ctx, "get batch for update", `SELECT `+batchColumns+` FROM stock_batches WHERE id = $1 FOR UPDATE`, id)
}

// FindActive lotes con existencias. Dentro de una tx, FIFO bloquea las filas devueltas.
func (r *StockBatchRepo) FindActive(ctx context.Context, productID string, order repository.BatchOrder) ([]*entity.StockBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM stock_batches WHERE product_id = $1 AND remaining_quantity > 0 `
	if order == repository.BatchOrderNewestFirst {
		query += orderNewestFirst
	} else {
		query += orderFIFO + ` FOR UPDATE`
	}
	return r.list(ctx, "find active batches", query, productID)
}

// ListByProduct todos los lotes del producto, incluidos los agotados, más reciente primero.
func (r *StockBatchRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockBatch, error) {
	return r.list(ctx, "list batches", `SELECT `+batchColumns+` FROM stock_batches WHERE product_id = $1 `+orderNewestFirst, productID)
}

// AdjustRemaining aplica un delta con signo validando 0 <= remaining <= initial.
func (r *StockBatchRepo) AdjustRemaining(ctx context.Context, id string, delta decimal.Decimal) (*entity.StockBatch, error) {
	current, err := r.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrInvalidBatch
	}
	next := current.RemainingQuantity.Add(delta)
	if next.IsNegative() {
		return nil, domain.ErrInsufficientStock
	}
	if next.GreaterThan(current.InitialQuantity) {
		return nil, domain.ErrInvalidQuantity
	}
	b, err := scanBatch(r.q.QueryRow(ctx, `
		UPDATE stock_batches SET remaining_quantity = $2, updated_at = now()
		WHERE id = $1 RETURNING `+batchColumns, id, next))
	if err != nil {
		return nil, fmt.Errorf("adjust batch remaining: %w", err)
	}
	return b, nil
}

// UpdatePricing corrige costo, precio y descuento; no altera movimientos ya registrados.
func (r *StockBatchRepo) UpdatePricing(ctx context.Context, b *entity.StockBatch) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_batches SET cost_price = $2, selling_price = $3, discount_percentage = $4,
			discount_code = $5, updated_at = $6
		WHERE id = $1`,
		b.ID, b.CostPrice, b.SellingPrice, b.DiscountPercentage, b.DiscountCode, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch pricing: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidBatch
	}
	return nil
}

// ExistsByInvoice indica si la factura de proveedor ya originó lotes.
func (r *StockBatchRepo) ExistsByInvoice(ctx context.Context, invoiceID string) (bool, error) {
	if invoiceID == "" {
		return false, nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_batches WHERE invoice_id = $1)`, invoiceID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists batch by invoice: %w", err)
	}
	return exists, nil
}

// SumRemainingByProduct suma de existencias de los lotes del producto.
func (r *StockBatchRepo) SumRemainingByProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(remaining_quantity), 0) FROM stock_batches WHERE product_id = $1`, productID,
	).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum batch remaining: %w", err)
	}
	return sum, nil
}

func (r *StockBatchRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockBatch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.StockBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
