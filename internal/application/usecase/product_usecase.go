package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProductUseCase casos de uso CRUD para productos. Quantity y BuyingPrice se manejan vía el libro de existencias.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categories repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories}
}

// Create crea un nuevo producto activo. Quantity y BuyingPrice inician en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := validatePricing(in.SellingPrice, in.DiscountLimit); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:            uuid.New().String(),
		SKU:           in.SKU,
		Name:          in.Name,
		CategoryID:    in.CategoryID,
		BuyingPrice:   decimal.Zero,
		SellingPrice:  in.SellingPrice,
		DiscountLimit: in.DiscountLimit,
		Quantity:      decimal.Zero,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Quantity ni el costo (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.SKU != nil && *in.SKU != product.SKU {
		other, err := uc.repo.GetBySKU(ctx, *in.SKU)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, domain.ErrDuplicate
		}
		product.SKU = *in.SKU
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.SellingPrice != nil {
		product.SellingPrice = *in.SellingPrice
	}
	if in.DiscountLimit != nil {
		product.DiscountLimit = *in.DiscountLimit
	}
	if err := validatePricing(product.SellingPrice, product.DiscountLimit); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		CategoryID:      in.CategoryID,
		IncludeInactive: in.IncludeInactive,
		Limit:           in.Limit,
		Offset:          in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// Delete desactiva el producto. Sus lotes y movimientos se conservan.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.SetActive(ctx, id, false)
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	c, err := uc.categories.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if c == nil || !c.Active {
		return fmt.Errorf("categoría %s inexistente o inactiva: %w", categoryID, domain.ErrInvalidInput)
	}
	return nil
}

func validatePricing(selling, discountLimit decimal.Decimal) error {
	if selling.IsNegative() {
		return fmt.Errorf("precio de venta negativo: %w", domain.ErrInvalidInput)
	}
	if discountLimit.IsNegative() || discountLimit.GreaterThan(hundred) {
		return fmt.Errorf("límite de descuento fuera de 0..100: %w", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		CategoryID:    p.CategoryID,
		BuyingPrice:   p.BuyingPrice,
		SellingPrice:  p.SellingPrice,
		DiscountLimit: p.DiscountLimit,
		Quantity:      p.Quantity,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProductResponse expone el mapeo para las respuestas del libro de existencias.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	return toProductResponse(p)
}
