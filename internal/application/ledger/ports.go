package ledger

import (
	"context"

	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Garantiza atomicidad: si fn devuelve error no queda ninguna escritura aplicada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Stores) error) error
}

// Locker serializa operaciones por clave (un escritor lógico por producto).
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// ProductKey clave de lock de un producto.
func ProductKey(productID string) string { return "product:" + productID }

// ReceiptKey clave de lock de un recibo (saldo de la venta).
func ReceiptKey(receiptID string) string { return "receipt:" + receiptID }
