package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Allocation porción de una línea de venta asignada a un lote.
type Allocation struct {
	Batch    *entity.StockBatch
	Quantity decimal.Decimal
}

// SortFIFO ordena lotes del más antiguo al más reciente (fecha de recepción, creación, ID).
func SortFIFO(batches []*entity.StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// AllocateFIFO reparte qty sobre los lotes en el orden recibido (se asume FIFO) sin modificarlos.
// Devuelve ErrInsufficientStock si la suma disponible no alcanza.
func AllocateFIFO(batches []*entity.StockBatch, qty decimal.Decimal) ([]Allocation, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	pending := qty
	var out []Allocation
	for _, b := range batches {
		if !pending.IsPositive() {
			break
		}
		if b.IsDepleted() {
			continue
		}
		take := decimal.Min(pending, b.RemainingQuantity)
		out = append(out, Allocation{Batch: b, Quantity: take})
		pending = pending.Sub(take)
	}
	if pending.IsPositive() {
		return nil, domain.ErrInsufficientStock
	}
	return out, nil
}
