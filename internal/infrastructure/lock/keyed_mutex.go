package lock

import (
	"context"
	"sync"
	"time"
)

var _ Locker = (*KeyedMutex)(nil)

// KeyedMutex locks en memoria por clave, para un solo proceso.
type KeyedMutex struct {
	mu      sync.Mutex
	slots   map[string]*slot
	timeout time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex construye el locker; timeout <= 0 espera hasta que el contexto se cancele.
func NewKeyedMutex(timeout time.Duration) *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot), timeout: timeout}
}

// Acquire toma todas las claves (ordenadas) o ninguna.
func (k *KeyedMutex) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := k.lockOne(ctx, key); err != nil {
			k.unlockAll(held)
			return nil, err
		}
		held = append(held, key)
	}
	var once sync.Once
	return func() { once.Do(func() { k.unlockAll(held) }) }, nil
}

func (k *KeyedMutex) lockOne(ctx context.Context, key string) error {
	k.mu.Lock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.mu.Lock()
		k.dropRef(key, s)
		k.mu.Unlock()
		return waitError(ctx, key)
	}
}

func (k *KeyedMutex) unlockAll(keys []string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i := len(keys) - 1; i >= 0; i-- {
		s := k.slots[keys[i]]
		<-s.ch
		k.dropRef(keys[i], s)
	}
}

func (k *KeyedMutex) dropRef(key string, s *slot) {
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}
