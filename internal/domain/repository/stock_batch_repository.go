package repository

import (
	"context"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BatchOrder orden de los lotes activos.
type BatchOrder int

const (
	// BatchOrderFIFO más antiguo primero (asignación de ventas).
	BatchOrderFIFO BatchOrder = iota
	// BatchOrderNewestFirst más reciente primero (visualización).
	BatchOrderNewestFirst
)

// StockBatchRepository puerto del almacén de lotes. La creación es solo de inserción.
type StockBatchRepository interface {
	Create(ctx context.Context, batch *entity.StockBatch) error
	GetByID(ctx context.Context, id string) (*entity.StockBatch, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error)
	// FindActive devuelve los lotes con RemainingQuantity > 0 en el orden pedido.
	FindActive(ctx context.Context, productID string, order BatchOrder) ([]*entity.StockBatch, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockBatch, error)
	// AdjustRemaining aplica un delta con signo: ErrInsufficientStock si queda negativo,
	// ErrInvalidBatch si no existe, ErrInvalidQuantity si supera InitialQuantity.
	AdjustRemaining(ctx context.Context, id string, delta decimal.Decimal) (*entity.StockBatch, error)
	// UpdatePricing corrige costo, precio y descuento; no altera movimientos ya registrados.
	UpdatePricing(ctx context.Context, batch *entity.StockBatch) error
	ExistsByInvoice(ctx context.Context, invoiceID string) (bool, error)
	SumRemainingByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
}
