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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s  *Store
	tx *state
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.s.view(r.tx, true, func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, p := range st.products {
			if p.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[product.ID] = copyProduct(product)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.tx, false, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = copyProduct(p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual a GetByID: la transacción en memoria ya es exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update no toca Quantity ni CreatedAt.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.s.view(r.tx, true, func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for id, p := range st.products {
			if id != product.ID && p.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		cur.SKU = product.SKU
		cur.Name = product.Name
		cur.CategoryID = product.CategoryID
		cur.BuyingPrice = product.BuyingPrice
		cur.SellingPrice = product.SellingPrice
		cur.DiscountLimit = product.DiscountLimit
		cur.Active = product.Active
		cur.UpdatedAt = product.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) UpdateReferencePrices(_ context.Context, id string, buying, selling decimal.Decimal) error {
	return r.s.view(r.tx, true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrInvalidProduct
		}
		p.BuyingPrice = buying
		p.SellingPrice = selling
		p.UpdatedAt = time.Now()
		return nil
	})
}

func (r *ProductRepo) AdjustQuantity(_ context.Context, id string, delta decimal.Decimal) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.tx, true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrInvalidProduct
		}
		next := p.Quantity.Add(delta)
		if next.IsNegative() {
			return domain.ErrInsufficientStock
		}
		p.Quantity = next
		p.UpdatedAt = time.Now()
		out = copyProduct(p)
		return nil
	})
	return out, err
}

func (r *ProductRepo) SetQuantity(_ context.Context, id string, quantity decimal.Decimal) error {
	return r.s.view(r.tx, true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrInvalidProduct
		}
		p.Quantity = quantity
		p.UpdatedAt = time.Now()
		return nil
	})
}

func (r *ProductRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.s.view(r.tx, true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.Active = active
		p.UpdatedAt = time.Now()
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, p := range st.products {
			if !p.Active && !filter.IncludeInactive {
				continue
			}
			if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
				continue
			}
			out = append(out, copyProduct(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, filter.Limit, filter.Offset), err
}

func (r *ProductRepo) ListIDs(_ context.Context) ([]string, error) {
	var ids []string
	err := r.s.view(r.tx, false, func(st *state) error {
		for id := range st.products {
			ids = append(ids, id)
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

// ListLowStock productos activos con cantidad <= threshold, menor cantidad primero.
func (r *ProductRepo) ListLowStock(_ context.Context, threshold decimal.Decimal) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, p := range st.products {
			if p.Active && p.Quantity.LessThanOrEqual(threshold) {
				out = append(out, copyProduct(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.LessThan(out[j].Quantity)
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}
