package inventory

import (
	"testing"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// 10 @ 100 + 10 @ 200 = 150
	got := CostCalculator(d(10), d(100), d(10), d(200))
	assert.True(t, got.Equal(d(150)), "got %s", got)
}

func TestCostCalculator_SinStockTomaCostoEntrada(t *testing.T) {
	got := CostCalculator(decimal.Zero, d(80), d(5), d(120))
	assert.True(t, got.Equal(d(120)))
}

func TestCostCalculator_SumaCeroDevuelveCero(t *testing.T) {
	assert.True(t, CostCalculator(decimal.Zero, d(10), decimal.Zero, d(10)).IsZero())
}

// ─── Asignación FIFO ──────────────────────────────────────────────────────────

func batch(id string, remaining int64, received time.Time) *entity.StockBatch {
	return &entity.StockBatch{ID: id, InitialQuantity: d(remaining), RemainingQuantity: d(remaining), ReceivedDate: received}
}

func TestSortFIFO_OrdenaPorFechaDeRecepcion(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []*entity.StockBatch{
		batch("c", 1, base.Add(48*time.Hour)),
		batch("a", 1, base),
		batch("b", 1, base.Add(24*time.Hour)),
	}
	SortFIFO(list)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, "c", list[2].ID)
}

func TestAllocateFIFO_AbarcaVariosLotes(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []*entity.StockBatch{batch("a", 3, base), batch("b", 5, base.Add(time.Hour))}

	allocs, err := AllocateFIFO(list, d(6))
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, "a", allocs[0].Batch.ID)
	assert.True(t, allocs[0].Quantity.Equal(d(3)))
	assert.True(t, allocs[1].Quantity.Equal(d(3)))
	// no modifica los lotes
	assert.True(t, list[1].RemainingQuantity.Equal(d(5)))
}

func TestAllocateFIFO_StockInsuficiente(t *testing.T) {
	list := []*entity.StockBatch{batch("a", 2, time.Now())}
	_, err := AllocateFIFO(list, d(3))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestAllocateFIFO_CantidadInvalida(t *testing.T) {
	_, err := AllocateFIFO(nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
