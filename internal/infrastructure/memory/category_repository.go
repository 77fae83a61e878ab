package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct {
	s  *Store
	tx *state
}

func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	return r.s.view(r.tx, true, func(st *state) error {
		if _, ok := st.categories[category.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, category.Name) {
				return domain.ErrDuplicate
			}
		}
		cp := *category
		st.categories[category.ID] = &cp
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.view(r.tx, false, func(st *state) error {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, name) {
				cp := *c
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Update(_ context.Context, category *entity.Category) error {
	return r.s.view(r.tx, true, func(st *state) error {
		cur, ok := st.categories[category.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for id, c := range st.categories {
			if id != category.ID && strings.EqualFold(c.Name, category.Name) {
				return domain.ErrDuplicate
			}
		}
		cur.Name = category.Name
		cur.Description = category.Description
		cur.Active = category.Active
		cur.UpdatedAt = category.UpdatedAt
		return nil
	})
}

func (r *CategoryRepo) List(_ context.Context, includeInactive bool) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, c := range st.categories {
			if !c.Active && !includeInactive {
				continue
			}
			cp := *c
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}
