package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación en memoria del libro de movimientos.
type StockMovementRepo struct {
	s  *Store
	tx *state
}

func (r *StockMovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	if !m.Quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if !m.Type.IsValid() {
		return domain.ErrInvalidInput
	}
	return r.s.view(r.tx, true, func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return domain.ErrInvalidProduct
		}
		if m.BatchID != "" {
			b, ok := st.batches[m.BatchID]
			if !ok || b.ProductID != m.ProductID {
				return domain.ErrInvalidBatch
			}
		}
		if _, ok := st.movements[m.ID]; ok {
			return domain.ErrDuplicate
		}
		st.movements[m.ID] = copyMovement(m)
		st.seq[m.ID] = len(st.seq)
		return nil
	})
}

func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.s.view(r.tx, false, func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = copyMovement(m)
		}
		return nil
	})
	return out, err
}

func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.GetByID(ctx, id)
}

func (r *StockMovementRepo) IncrementReturned(_ context.Context, id string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	return r.s.view(r.tx, true, func(st *state) error {
		m, ok := st.movements[id]
		if !ok {
			return domain.ErrNotFound
		}
		next := m.ReturnedQuantity.Add(qty)
		if next.GreaterThan(m.Quantity) {
			return domain.ErrOverReturn
		}
		m.ReturnedQuantity = next
		return nil
	})
}

func (r *StockMovementRepo) MarkVoided(_ context.Context, id, reason string, at time.Time) error {
	return r.s.view(r.tx, true, func(st *state) error {
		m, ok := st.movements[id]
		if !ok {
			return domain.ErrNotFound
		}
		if m.IsVoided {
			return domain.ErrMovementVoided
		}
		m.IsVoided = true
		m.VoidReason = reason
		m.VoidedAt = &at
		return nil
	})
}

func (r *StockMovementRepo) QueryByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.query(func(m *entity.StockMovement) bool {
		return m.ProductID == productID && inRange(m.Timestamp, from, to)
	}, limit, offset)
}

func (r *StockMovementRepo) QueryByReceipt(_ context.Context, receiptID string) ([]*entity.StockMovement, error) {
	if receiptID == "" {
		return nil, nil
	}
	return r.query(func(m *entity.StockMovement) bool { return m.ReceiptID == receiptID }, 0, 0)
}

func (r *StockMovementRepo) QueryByDateRange(_ context.Context, from, to time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.query(func(m *entity.StockMovement) bool { return inRange(m.Timestamp, &from, &to) }, limit, offset)
}

func (r *StockMovementRepo) QueryByType(_ context.Context, movementType entity.MovementType, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.query(func(m *entity.StockMovement) bool {
		return m.Type == movementType && inRange(m.Timestamp, from, to)
	}, limit, offset)
}

// query filtra y ordena cronológicamente (timestamp, luego orden de inserción).
func (r *StockMovementRepo) query(match func(*entity.StockMovement) bool, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	seq := map[string]int{}
	err := r.s.view(r.tx, false, func(st *state) error {
		for id, m := range st.movements {
			if match(m) {
				out = append(out, copyMovement(m))
				seq[id] = st.seq[id]
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return seq[out[i].ID] < seq[out[j].ID]
	})
	return page(out, limit, offset), err
}

// inRange extremos inclusivos; nil = sin límite.
func inRange(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}
