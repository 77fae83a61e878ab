package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro de existencias.
type MovementType string

// Tipos de movimiento. La cantidad siempre es positiva; el signo lo da el tipo.
const (
	MovementTypeIn          MovementType = "IN"           // entrada (recepción de lote)
	MovementTypeOut         MovementType = "OUT"          // venta
	MovementTypeAdjustment  MovementType = "ADJUSTMENT"   // ajuste (corrección, pérdida)
	MovementTypeSalesReturn MovementType = "SALES_RETURN" // devolución de cliente
	MovementTypeVoid        MovementType = "VOID"         // reversión (solo importaciones históricas)
)

// IsValid verifica que el tipo pertenezca al conjunto cerrado.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeSalesReturn, MovementTypeVoid:
		return true
	}
	return false
}

// Decreases indica si el tipo descuenta existencias.
func (t MovementType) Decreases() bool {
	return t == MovementTypeOut || t == MovementTypeAdjustment
}

// Escalas decimales. Los importes de línea se redondean a MoneyScale; cantidades y precios
// se almacenan con StoreScale decimales (NUMERIC(18,4)).
const (
	MoneyScale = 2
	StoreScale = 4
)

// FitsStoreScale indica si v se almacena sin perder decimales.
func FitsStoreScale(v decimal.Decimal) bool {
	return v.Equal(v.Truncate(StoreScale))
}

// LineAmount importe de una línea: quantity × price redondeado a MoneyScale.
func LineAmount(qty, price decimal.Decimal) decimal.Decimal {
	return qty.Mul(price).Round(MoneyScale)
}

// Motivos de ajuste.
const (
	ReasonCorrection = "CORRECTION"
	ReasonLost       = "LOST"
)

// IsValidAdjustmentReason valida el motivo de un ajuste.
func IsValidAdjustmentReason(reason string) bool {
	return reason == ReasonCorrection || reason == ReasonLost
}

// StockMovement es un asiento del libro de existencias. Inmutable salvo ReturnedQuantity
// (solo crece) y el grupo de anulación (IsVoided, VoidReason, VoidedAt; se fija una vez).
type StockMovement struct {
	ID                 string
	ProductID          string
	BatchID            string // vacío solo en movimientos sin lote
	Type               MovementType
	Quantity           decimal.Decimal
	UnitCost           decimal.Decimal // costo del lote al momento del movimiento
	UnitPrice          decimal.Decimal
	Timestamp          time.Time
	ReceiptID          string // agrupa las líneas de una misma venta
	ReasonCode         string
	OriginalMovementID string // para SALES_RETURN: la línea de venta revertida
	ReturnedQuantity   decimal.Decimal
	IsVoided           bool
	VoidReason         string
	VoidedAt           *time.Time
	CreatedBy          string
}

// Reversible devuelve la cantidad que aún se puede devolver o anular.
func (m *StockMovement) Reversible() decimal.Decimal {
	if m.IsVoided {
		return decimal.Zero
	}
	return m.Quantity.Sub(m.ReturnedQuantity)
}

// NetQuantity cantidad efectiva de la línea para reportes (anulada = 0, descontando devoluciones).
func (m *StockMovement) NetQuantity() decimal.Decimal {
	if m.IsVoided {
		return decimal.Zero
	}
	return m.Quantity.Sub(m.ReturnedQuantity)
}

// NetAmount importe vigente de la línea según NetQuantity.
func (m *StockMovement) NetAmount() decimal.Decimal {
	return LineAmount(m.NetQuantity(), m.UnitPrice)
}

// RefundFor valor a reintegrar al revertir qty unidades. Es la diferencia entre el importe
// redondeado antes y después, así la suma de reintegros de una línea totalmente revertida
// coincide con el importe cobrado.
func (m *StockMovement) RefundFor(qty decimal.Decimal) decimal.Decimal {
	before := m.Reversible()
	return LineAmount(before, m.UnitPrice).Sub(LineAmount(before.Sub(qty), m.UnitPrice))
}
