package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la tienda.
// Quantity es una proyección en caché de la suma de RemainingQuantity de sus lotes;
// solo el motor del libro de existencias la modifica (dentro de su transacción).
type Product struct {
	ID            string
	SKU           string // código único
	Name          string
	CategoryID    string // vacío si no tiene categoría
	BuyingPrice   decimal.Decimal // costo de referencia (promedio ponderado de las entradas)
	SellingPrice  decimal.Decimal // precio de venta de referencia (último lote recibido)
	DiscountLimit decimal.Decimal // % máximo de descuento permitido en caja
	Quantity      decimal.Decimal
	Active        bool // false = eliminado lógicamente
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
