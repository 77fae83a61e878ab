package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch representa un lote de compra: una cantidad recibida de un producto a un costo fijo.
// Invariante: 0 <= RemainingQuantity <= InitialQuantity. Nunca se elimina físicamente.
type StockBatch struct {
	ID                 string
	ProductID          string
	InitialQuantity    decimal.Decimal
	RemainingQuantity  decimal.Decimal
	CostPrice          decimal.Decimal
	SellingPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountCode       string
	ReceivedDate       time.Time
	InvoiceID          string // factura del proveedor (opcional)
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsDepleted indica si el lote ya no tiene unidades disponibles.
func (b *StockBatch) IsDepleted() bool {
	return !b.RemainingQuantity.IsPositive()
}

// Restorable devuelve cuántas unidades caben todavía en el lote sin superar su tamaño original.
func (b *StockBatch) Restorable() decimal.Decimal {
	return b.InitialQuantity.Sub(b.RemainingQuantity)
}

// PriceFor devuelve el precio unitario de venta del lote aplicando su descuento
// cuando el código de la venta coincide con el del lote.
func (b *StockBatch) PriceFor(discountCode string) decimal.Decimal {
	if b.DiscountCode == "" || discountCode != b.DiscountCode || !b.DiscountPercentage.IsPositive() {
		return b.SellingPrice
	}
	return ApplyDiscount(b.SellingPrice, b.DiscountPercentage)
}

// ApplyDiscount aplica un porcentaje de descuento a un precio, redondeado a 2 decimales.
func ApplyDiscount(price, percent decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	factor := hundred.Sub(percent).Div(hundred)
	return price.Mul(factor).Round(2)
}
