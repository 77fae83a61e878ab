package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. La cantidad inicia en 0 y solo
// cambia con recepciones de mercancía.
type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	CategoryID    string          `json:"category_id" validate:"omitempty,max=64"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	DiscountLimit decimal.Decimal `json:"discount_limit"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Quantity ni costo).
type UpdateProductRequest struct {
	SKU           *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID    *string          `json:"category_id" validate:"omitempty,max=64"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	DiscountLimit *decimal.Decimal `json:"discount_limit"`
}

// ProductListRequest filtros de GET /api/products.
type ProductListRequest struct {
	PageRequest
	CategoryID      string `query:"category_id"`
	IncludeInactive bool   `query:"include_inactive"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	CategoryID    string          `json:"category_id,omitempty"`
	BuyingPrice   decimal.Decimal `json:"buying_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	DiscountLimit decimal.Decimal `json:"discount_limit"`
	Quantity      decimal.Decimal `json:"quantity"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateCategoryRequest entrada para actualizar una categoría.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Active      *bool   `json:"active"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
