package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// SalesTransactionRepository puerto de persistencia de ventas (recibos).
type SalesTransactionRepository interface {
	Create(ctx context.Context, tx *entity.SalesTransaction) error
	GetByID(ctx context.Context, id string) (*entity.SalesTransaction, error)
	GetForUpdate(ctx context.Context, id string) (*entity.SalesTransaction, error)
	// UpdateBalance persiste total, pagado y estado.
	UpdateBalance(ctx context.Context, tx *entity.SalesTransaction) error
	ListUnpaid(ctx context.Context, limit, offset int) ([]*entity.SalesTransaction, error)
	ListByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.SalesTransaction, error)
	ListIDs(ctx context.Context) ([]string, error)
}
