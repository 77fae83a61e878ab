package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockMovementRepository puerto del libro de movimientos (append-only).
// Las únicas mutaciones permitidas son IncrementReturned y MarkVoided.
type StockMovementRepository interface {
	// Append falla con ErrInvalidProduct/ErrInvalidBatch si las referencias no existen
	// y con ErrInvalidQuantity si la cantidad no es positiva.
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error)
	IncrementReturned(ctx context.Context, id string, qty decimal.Decimal) error
	MarkVoided(ctx context.Context, id, reason string, at time.Time) error

	QueryByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	QueryByReceipt(ctx context.Context, receiptID string) ([]*entity.StockMovement, error)
	QueryByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.StockMovement, error)
	QueryByType(ctx context.Context, movementType entity.MovementType, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
