package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// Config parámetros del motor.
type Config struct {
	MaxRetries       int           // reintentos ante ErrTransactionConflict
	RetryBackoff     time.Duration // espera lineal entre intentos
	ReconcileWorkers int
}

// Engine coordina recepción, venta, ajuste, devolución y anulación sobre lotes, producto y libro de movimientos.
// Cada operación corre bajo el lock del producto y en una sola transacción del almacén.
type Engine struct {
	tx    TxRunner
	reads repository.Stores
	locks Locker
	log   *logger.Logger
	cfg   Config
}

// NewEngine construye el motor. reads son repositorios fuera de transacción para lecturas previas al lock.
func NewEngine(tx TxRunner, reads repository.Stores, locks Locker, log *logger.Logger, cfg Config) *Engine {
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 25 * time.Millisecond
	}
	if cfg.ReconcileWorkers <= 0 {
		cfg.ReconcileWorkers = 4
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{tx: tx, reads: reads, locks: locks, log: log.Named("ledger"), cfg: cfg}
}

// Execute toma los locks de keys, corre fn en una transacción y reintenta ante conflicto
// hasta MaxRetries veces. Lo usan las operaciones del motor y los flujos que agrupan
// varias de ellas (checkout).
func (e *Engine) Execute(ctx context.Context, keys []string, fn func(repos repository.Stores) error) error {
	for attempt := 0; ; attempt++ {
		err := e.attempt(ctx, keys, fn)
		if err == nil || !errors.Is(err, domain.ErrTransactionConflict) || attempt >= e.cfg.MaxRetries {
			return err
		}
		e.log.Warn().Err(err).Int("attempt", attempt+1).Strs("keys", keys).Msg("conflicto de escritura, reintentando")

		wait := time.NewTimer(e.cfg.RetryBackoff * time.Duration(attempt+1))
		select {
		case <-ctx.Done():
			wait.Stop()
			return ctx.Err()
		case <-wait.C:
		}
	}
}

func (e *Engine) attempt(ctx context.Context, keys []string, fn func(repos repository.Stores) error) error {
	release, err := e.locks.Acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()
	return e.tx.Run(ctx, fn)
}
