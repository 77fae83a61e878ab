package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

// StockBatchRepo implementación en memoria de StockBatchRepository.
type StockBatchRepo struct {
	s  *Store
	tx *state
}

func (r *StockBatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	return r.s.view(r.tx, true, func(st *state) error {
		if _, ok := st.products[batch.ProductID]; !ok {
			return domain.ErrInvalidProduct
		}
		if _, ok := st.batches[batch.ID]; ok {
			return domain.ErrDuplicate
		}
		st.batches[batch.ID] = copyBatch(batch)
		return nil
	})
}

func (r *StockBatchRepo) GetByID(_ context.Context, id string) (*entity.StockBatch, error) {
	var out *entity.StockBatch
	err := r.s.view(r.tx, false, func(st *state) error {
		if b, ok := st.batches[id]; ok {
			out = copyBatch(b)
		}
		return nil
	})
	return out, err
}

func (r *StockBatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error) {
	return r.GetByID(ctx, id)
}

func (r *StockBatchRepo) FindActive(_ context.Context, productID string, order repository.BatchOrder) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID && b.RemainingQuantity.IsPositive() {
				out = append(out, copyBatch(b))
			}
		}
		return nil
	})
	inventory.SortFIFO(out)
	if order == repository.BatchOrderNewestFirst {
		reverse(out)
	}
	return out, err
}

// ListByProduct todos los lotes del producto, incluidos los agotados, más reciente primero.
func (r *StockBatchRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID {
				out = append(out, copyBatch(b))
			}
		}
		return nil
	})
	inventory.SortFIFO(out)
	reverse(out)
	return out, err
}

func (r *StockBatchRepo) AdjustRemaining(_ context.Context, id string, delta decimal.Decimal) (*entity.StockBatch, error) {
	var out *entity.StockBatch
	err := r.s.view(r.tx, true, func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrInvalidBatch
		}
		next := b.RemainingQuantity.Add(delta)
		if next.IsNegative() {
			return domain.ErrInsufficientStock
		}
		if next.GreaterThan(b.InitialQuantity) {
			return domain.ErrInvalidQuantity
		}
		b.RemainingQuantity = next
		b.UpdatedAt = time.Now()
		out = copyBatch(b)
		return nil
	})
	return out, err
}

func (r *StockBatchRepo) UpdatePricing(_ context.Context, batch *entity.StockBatch) error {
	return r.s.view(r.tx, true, func(st *state) error {
		b, ok := st.batches[batch.ID]
		if !ok {
			return domain.ErrInvalidBatch
		}
		b.CostPrice = batch.CostPrice
		b.SellingPrice = batch.SellingPrice
		b.DiscountPercentage = batch.DiscountPercentage
		b.DiscountCode = batch.DiscountCode
		b.UpdatedAt = batch.UpdatedAt
		return nil
	})
}

func (r *StockBatchRepo) ExistsByInvoice(_ context.Context, invoiceID string) (bool, error) {
	if invoiceID == "" {
		return false, nil
	}
	found := false
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, b := range st.batches {
			if b.InvoiceID == invoiceID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *StockBatchRepo) SumRemainingByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID {
				sum = sum.Add(b.RemainingQuantity)
			}
		}
		return nil
	})
	return sum, err
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
