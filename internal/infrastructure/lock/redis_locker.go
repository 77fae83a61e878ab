package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ Locker = (*RedisLocker)(nil)

// releaseScript borra la clave solo si sigue siendo nuestra.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisConfig parámetros del lock distribuido.
type RedisConfig struct {
	Prefix  string
	TTL     time.Duration // expiración de la clave si el proceso muere con el lock tomado
	Timeout time.Duration // espera máxima
	Poll    time.Duration
}

// RedisLocker lock distribuido por clave (SET NX PX + borrado condicional) para varias instancias de la API.
type RedisLocker struct {
	client redis.UniversalClient
	cfg    RedisConfig
}

// NewRedisLocker construye el locker sobre un cliente go-redis.
func NewRedisLocker(client redis.UniversalClient, cfg RedisConfig) *RedisLocker {
	if cfg.Prefix == "" {
		cfg.Prefix = "inventario:lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 20 * time.Millisecond
	}
	return &RedisLocker{client: client, cfg: cfg}
}

// Acquire toma todas las claves (ordenadas) o ninguna.
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	token := uuid.NewString()
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.lockOne(ctx, l.cfg.Prefix+key, token); err != nil {
			l.unlockAll(held, token)
			return nil, err
		}
		held = append(held, l.cfg.Prefix+key)
	}
	var once sync.Once
	return func() { once.Do(func() { l.unlockAll(held, token) }) }, nil
}

func (l *RedisLocker) lockOne(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.cfg.Poll)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return waitError(ctx, key)
			}
			return fmt.Errorf("redis setnx %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return waitError(ctx, key)
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlockAll(keys []string, token string) {
	// contexto propio: la liberación no debe fallar porque el del caller expiró
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		_ = releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err()
	}
}
