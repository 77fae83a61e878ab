package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// Querier lo que los repositorios necesitan de la conexión: lo cumplen *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewStores arma el conjunto de repositorios sobre un pool (lecturas fuera de transacción) o una tx.
func NewStores(q Querier) repository.Stores {
	return repository.Stores{
		Products:   NewProductRepository(q),
		Categories: NewCategoryRepository(q),
		Batches:    NewStockBatchRepository(q),
		Movements:  NewStockMovementRepository(q),
		Sales:      NewSalesTransactionRepository(q),
		Payments:   NewCreditPaymentRepository(q),
	}
}
