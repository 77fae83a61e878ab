// Package lock serializa las operaciones del libro de existencias por producto.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/Inventario-pos/internal/domain"
)

// Locker adquiere un conjunto de claves en orden y devuelve la función que las libera.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// normalize ordena y elimina duplicados: todas las rutas toman las claves en el mismo orden.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// waitError traduce el fin de la espera en un error de dominio.
func waitError(ctx context.Context, key string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("lock %s: %w", key, domain.ErrTransactionConflict)
	}
	return ctx.Err()
}
