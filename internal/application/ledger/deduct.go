package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Sell descuenta quantity del lote elegido y del producto, y registra un movimiento OUT
// con el costo del lote y el precio indicado.
func (e *Engine) Sell(ctx context.Context, actor Actor, in SellInput) (*MovementResult, error) {
	var res *MovementResult
	err := e.Execute(ctx, []string{ProductKey(in.ProductID)}, func(r repository.Stores) error {
		out, err := e.SellInTx(ctx, r, actor, in)
		res = out
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().
		Str("product_id", in.ProductID).
		Str("batch_id", in.BatchID).
		Str("qty", in.Quantity.String()).
		Str("receipt_id", in.ReceiptID).
		Msg("venta registrada")
	return res, nil
}

// SellInTx ejecuta una venta usando los repositorios proporcionados (misma transacción del caller).
// El caller debe tener el lock del producto (ver Execute).
func (e *Engine) SellInTx(ctx context.Context, r repository.Stores, actor Actor, in SellInput) (*MovementResult, error) {
	if in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}
	if !entity.FitsStoreScale(in.UnitPrice) {
		return nil, fmt.Errorf("precio con más de %d decimales: %w", entity.StoreScale, domain.ErrInvalidInput)
	}
	return e.deduct(ctx, r, actor, deduction{
		productID:     in.ProductID,
		batchID:       in.BatchID,
		qty:           in.Quantity,
		unitPrice:     in.UnitPrice,
		receiptID:     in.ReceiptID,
		movementType:  entity.MovementTypeOut,
		requireActive: true,
	})
}

// Adjust descuenta existencias por corrección de conteo o pérdida (movimiento ADJUSTMENT, precio 0).
func (e *Engine) Adjust(ctx context.Context, actor Actor, in AdjustInput) (*MovementResult, error) {
	if !entity.IsValidAdjustmentReason(in.Reason) {
		return nil, fmt.Errorf("motivo de ajuste %q: %w", in.Reason, domain.ErrInvalidInput)
	}
	var res *MovementResult
	err := e.Execute(ctx, []string{ProductKey(in.ProductID)}, func(r repository.Stores) error {
		out, err := e.deduct(ctx, r, actor, deduction{
			productID:    in.ProductID,
			batchID:      in.BatchID,
			qty:          in.Quantity,
			unitPrice:    decimal.Zero,
			reason:       in.Reason,
			movementType: entity.MovementTypeAdjustment,
		})
		res = out
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().
		Str("product_id", in.ProductID).
		Str("batch_id", in.BatchID).
		Str("qty", in.Quantity.String()).
		Str("reason", in.Reason).
		Msg("ajuste registrado")
	return res, nil
}

type deduction struct {
	productID     string
	batchID       string
	qty           decimal.Decimal
	unitPrice     decimal.Decimal
	receiptID     string
	reason        string
	movementType  entity.MovementType
	requireActive bool
}

// deduct bloquea producto y lote, verifica existencias y aplica lote, producto y movimiento.
func (e *Engine) deduct(ctx context.Context, r repository.Stores, actor Actor, d deduction) (*MovementResult, error) {
	if !d.qty.IsPositive() || !entity.FitsStoreScale(d.qty) {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := r.Products.GetForUpdate(ctx, d.productID)
	if err != nil {
		return nil, err
	}
	if product == nil || (d.requireActive && !product.Active) {
		return nil, domain.ErrInvalidProduct
	}
	batch, err := r.Batches.GetForUpdate(ctx, d.batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil || batch.ProductID != product.ID {
		return nil, domain.ErrInvalidBatch
	}
	if d.qty.GreaterThan(batch.RemainingQuantity) || d.qty.GreaterThan(product.Quantity) {
		return nil, domain.ErrInsufficientStock
	}

	updatedBatch, err := r.Batches.AdjustRemaining(ctx, batch.ID, d.qty.Neg())
	if err != nil {
		return nil, err
	}
	updatedProduct, err := r.Products.AdjustQuantity(ctx, product.ID, d.qty.Neg())
	if err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:         uuid.New().String(),
		ProductID:  product.ID,
		BatchID:    batch.ID,
		Type:       d.movementType,
		Quantity:   d.qty,
		UnitCost:   batch.CostPrice,
		UnitPrice:  d.unitPrice,
		Timestamp:  actor.Now(),
		ReceiptID:  d.receiptID,
		ReasonCode: d.reason,
		CreatedBy:  actor.UserID,
	}
	if err := r.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mov, Batch: updatedBatch, Product: updatedProduct}, nil
}
