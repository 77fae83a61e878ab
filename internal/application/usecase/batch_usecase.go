package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// Executor corre fn en una transacción bajo los locks de keys (ledger.Engine).
type Executor interface {
	Execute(ctx context.Context, keys []string, fn func(repos repository.Stores) error) error
}

// BatchUseCase corrección administrativa de precios de un lote.
type BatchUseCase struct {
	exec  Executor
	reads repository.StockBatchRepository
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(exec Executor, reads repository.StockBatchRepository) *BatchUseCase {
	return &BatchUseCase{exec: exec, reads: reads}
}

// CorrectPricing corrige costo, precio y descuento del lote bajo el lock de su producto.
// Los movimientos ya registrados conservan el costo y precio con que se asentaron.
func (uc *BatchUseCase) CorrectPricing(ctx context.Context, batchID string, in dto.BatchPricingRequest) (*dto.BatchResponse, error) {
	current, err := uc.reads.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}

	var out *entity.StockBatch
	err = uc.exec.Execute(ctx, []string{ledger.ProductKey(current.ProductID)}, func(r repository.Stores) error {
		batch, err := r.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if in.CostPrice != nil {
			batch.CostPrice = *in.CostPrice
		}
		if in.SellingPrice != nil {
			batch.SellingPrice = *in.SellingPrice
		}
		if in.DiscountPercentage != nil {
			batch.DiscountPercentage = *in.DiscountPercentage
		}
		if in.DiscountCode != nil {
			batch.DiscountCode = *in.DiscountCode
		}
		if batch.CostPrice.IsNegative() || batch.SellingPrice.IsNegative() {
			return fmt.Errorf("precios negativos: %w", domain.ErrInvalidInput)
		}
		if !entity.FitsStoreScale(batch.CostPrice) || !entity.FitsStoreScale(batch.SellingPrice) {
			return fmt.Errorf("precio con más de %d decimales: %w", entity.StoreScale, domain.ErrInvalidInput)
		}
		if batch.DiscountPercentage.IsNegative() || batch.DiscountPercentage.GreaterThan(hundred) {
			return fmt.Errorf("descuento fuera de 0..100: %w", domain.ErrInvalidInput)
		}
		batch.UpdatedAt = time.Now().UTC()
		if err := r.Batches.UpdatePricing(ctx, batch); err != nil {
			return err
		}
		out = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToBatchResponse(out), nil
}

// ToBatchResponse mapea un lote a su respuesta.
func ToBatchResponse(b *entity.StockBatch) *dto.BatchResponse {
	if b == nil {
		return nil
	}
	return &dto.BatchResponse{
		ID:                 b.ID,
		ProductID:          b.ProductID,
		InitialQuantity:    b.InitialQuantity,
		RemainingQuantity:  b.RemainingQuantity,
		CostPrice:          b.CostPrice,
		SellingPrice:       b.SellingPrice,
		DiscountPercentage: b.DiscountPercentage,
		DiscountCode:       b.DiscountCode,
		ReceivedDate:       b.ReceivedDate,
		InvoiceID:          b.InvoiceID,
	}
}
