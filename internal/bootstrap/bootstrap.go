// Package bootstrap arma el almacén, el lock y los servicios a partir de la configuración.
// Lo comparten cmd/api, cmd/worker y cmd/seed.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-pos/internal/application/checkout"
	"github.com/jhoicas/Inventario-pos/internal/application/credit"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/lock"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-pos/pkg/config"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// Services dependencias de la aplicación ya construidas.
type Services struct {
	Stores     repository.Stores
	Ledger     *ledger.Engine
	Credit     *credit.Engine
	Checkout   *checkout.Service
	Reports    *reports.Service
	Products   *usecase.ProductUseCase
	Categories *usecase.CategoryUseCase
	Batches    *usecase.BatchUseCase

	closers []func()
}

// Build construye el almacén según STORE_DRIVER, el locker (Redis si REDIS_ADDR está
// definido, si no en proceso) y los servicios de aplicación.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Services{}

	var tx ledger.TxRunner
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		tx, s.Stores = store, store.Stores()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				s.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		tx, s.Stores = postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout), postgres.NewStores(pool)
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
	}

	var locker ledger.Locker = lock.NewKeyedMutex(cfg.Ledger.LockTimeout)
	if cfg.Redis.Enabled() {
		client := NewRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			s.Close()
			return nil, fmt.Errorf("ping Redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		locker = lock.NewRedisLocker(client, lock.RedisConfig{
			TTL:     cfg.Ledger.LockTTL,
			Timeout: cfg.Ledger.LockTimeout,
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock distribuido en Redis")
	}

	s.Ledger = ledger.NewEngine(tx, s.Stores, locker, log, ledger.Config{
		MaxRetries:       cfg.Ledger.MaxRetries,
		RetryBackoff:     cfg.Ledger.RetryBackoff,
		ReconcileWorkers: cfg.Ledger.ReconcileWorkers,
	})
	s.Credit = credit.NewEngine(s.Ledger, s.Stores, log)
	s.Checkout = checkout.NewService(s.Ledger, log)
	s.Reports = reports.NewService(s.Stores, log)
	s.Products = usecase.NewProductUseCase(s.Stores.Products, s.Stores.Categories)
	s.Categories = usecase.NewCategoryUseCase(s.Stores.Categories)
	s.Batches = usecase.NewBatchUseCase(s.Ledger, s.Stores.Batches)
	return s, nil
}

// NewRedisClient cliente go-redis para la configuración dada.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// AsynqOpts conexión de la cola de trabajos (mismo Redis que el lock).
func AsynqOpts(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// Close libera conexiones en orden inverso de apertura.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
