package repository

import (
	"context"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros para listar productos.
type ProductFilter struct {
	CategoryID      string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Update no escribe Quantity: la cantidad solo cambia vía AdjustQuantity, dentro de la
// misma transacción que la mutación del lote correspondiente.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateReferencePrices(ctx context.Context, id string, buying, selling decimal.Decimal) error
	// AdjustQuantity aplica un delta con signo; ErrInsufficientStock si el resultado es negativo.
	AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) (*entity.Product, error)
	// SetQuantity solo para la reparación de la conciliación.
	SetQuantity(ctx context.Context, id string, quantity decimal.Decimal) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	ListIDs(ctx context.Context) ([]string, error)
	ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]*entity.Product, error)
}
