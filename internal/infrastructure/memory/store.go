// Package memory implementa los puertos de persistencia en memoria (desarrollo y tests).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

type state struct {
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	batches    map[string]*entity.StockBatch
	movements  map[string]*entity.StockMovement
	seq        map[string]int // orden de inserción de movimientos
	sales      map[string]*entity.SalesTransaction
	payments   []*entity.CreditPayment
}

func newState() *state {
	return &state{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		batches:    make(map[string]*entity.StockBatch),
		movements:  make(map[string]*entity.StockMovement),
		seq:        make(map[string]int),
		sales:      make(map[string]*entity.SalesTransaction),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.categories {
		cp := *v
		c.categories[k] = &cp
	}
	for k, v := range s.batches {
		c.batches[k] = copyBatch(v)
	}
	for k, v := range s.movements {
		c.movements[k] = copyMovement(v)
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = copySale(v)
	}
	c.payments = make([]*entity.CreditPayment, len(s.payments))
	for i, p := range s.payments {
		cp := *p
		c.payments[i] = &cp
	}
	return c
}

// Store almacén en memoria. Cada transacción trabaja sobre una copia del estado
// que reemplaza al original solo si fn termina sin error.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn con repositorios atados a una transacción exclusiva.
// Dentro de fn no se deben usar los repositorios de Stores() (bloqueo).
//
// Todas las transacciones se serializan con un único lock del almacén, incluso las de
// productos distintos. Sirve para desarrollo y pruebas; las mediciones de concurrencia
// solo son representativas con el driver postgres.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	if err := fn(s.bind(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// Stores devuelve repositorios fuera de transacción (cada llamada es atómica por sí sola).
func (s *Store) Stores() repository.Stores {
	return s.bind(nil)
}

func (s *Store) bind(tx *state) repository.Stores {
	return repository.Stores{
		Products:   &ProductRepo{s: s, tx: tx},
		Categories: &CategoryRepo{s: s, tx: tx},
		Batches:    &StockBatchRepo{s: s, tx: tx},
		Movements:  &StockMovementRepo{s: s, tx: tx},
		Sales:      &SalesTransactionRepo{s: s, tx: tx},
		Payments:   &CreditPaymentRepo{s: s, tx: tx},
	}
}

// view ejecuta fn sobre el estado de la transacción o, sin ella, sobre el estado vigente con el lock adecuado.
func (s *Store) view(tx *state, write bool, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

func page[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func copyBatch(b *entity.StockBatch) *entity.StockBatch {
	cp := *b
	return &cp
}

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	cp := *m
	if m.VoidedAt != nil {
		at := *m.VoidedAt
		cp.VoidedAt = &at
	}
	return &cp
}

func copySale(t *entity.SalesTransaction) *entity.SalesTransaction {
	cp := *t
	return &cp
}
