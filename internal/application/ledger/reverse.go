package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Return revierte parte de una línea de venta (OUT): devuelve unidades al lote y al producto,
// incrementa returnedQuantity del original y registra un SALES_RETURN con su costo y precio.
// Si la línea pertenece a una venta, el total se reduce en el importe redondeado devuelto.
func (e *Engine) Return(ctx context.Context, actor Actor, in ReturnInput) (*ReversalResult, error) {
	if !in.Quantity.IsPositive() || !entity.FitsStoreScale(in.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	keys, err := e.reversalKeys(ctx, in.OriginalMovementID)
	if err != nil {
		return nil, err
	}

	var res *ReversalResult
	err = e.Execute(ctx, keys, func(r repository.Stores) error {
		orig, err := r.Movements.GetForUpdate(ctx, in.OriginalMovementID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if orig.Type != entity.MovementTypeOut {
			return domain.ErrMovementNotReversible
		}
		// anulada: Reversible() es cero
		if in.Quantity.GreaterThan(orig.Reversible()) {
			return domain.ErrOverReturn
		}

		refund := orig.RefundFor(in.Quantity)
		batch, product, restored, err := e.restore(ctx, r, orig, in.Quantity)
		if err != nil {
			return err
		}
		if err := r.Movements.IncrementReturned(ctx, orig.ID, in.Quantity); err != nil {
			return err
		}
		orig.ReturnedQuantity = orig.ReturnedQuantity.Add(in.Quantity)

		now := actor.Now()
		ret := &entity.StockMovement{
			ID:                 uuid.New().String(),
			ProductID:          orig.ProductID,
			BatchID:            orig.BatchID,
			Type:               entity.MovementTypeSalesReturn,
			Quantity:           in.Quantity,
			UnitCost:           orig.UnitCost,
			UnitPrice:          orig.UnitPrice,
			Timestamp:          now,
			ReceiptID:          orig.ReceiptID,
			OriginalMovementID: orig.ID,
			CreatedBy:          actor.UserID,
		}
		if err := r.Movements.Append(ctx, ret); err != nil {
			return err
		}

		sale, cashBack, err := applyRefund(ctx, r, actor, orig.ReceiptID, refund, "reintegro por devolución")
		if err != nil {
			return err
		}
		res = &ReversalResult{
			Movement: ret, Original: orig, Batch: batch, Product: product, Sale: sale,
			Restored: restored, Refund: refund, CashBack: cashBack,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().
		Str("movement_id", in.OriginalMovementID).
		Str("qty", in.Quantity.String()).
		Str("refund", res.Refund.String()).
		Msg("devolución registrada")
	return res, nil
}

// Void anula completa una línea OUT o ADJUSTMENT: restaura lo no devuelto y marca la línea,
// sin agregar un movimiento nuevo. Los reportes excluyen las líneas anuladas.
func (e *Engine) Void(ctx context.Context, actor Actor, in VoidInput) (*ReversalResult, error) {
	keys, err := e.reversalKeys(ctx, in.MovementID)
	if err != nil {
		return nil, err
	}

	var res *ReversalResult
	err = e.Execute(ctx, keys, func(r repository.Stores) error {
		orig, err := r.Movements.GetForUpdate(ctx, in.MovementID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if orig.IsVoided {
			return domain.ErrMovementVoided
		}
		if !orig.Type.Decreases() {
			return domain.ErrMovementNotReversible
		}
		pending := orig.Reversible()
		if !pending.IsPositive() {
			return domain.ErrMovementNotReversible
		}

		refund := decimal.Zero
		if orig.Type == entity.MovementTypeOut {
			refund = orig.RefundFor(pending)
		}
		batch, product, restored, err := e.restore(ctx, r, orig, pending)
		if err != nil {
			return err
		}
		now := actor.Now()
		if err := r.Movements.MarkVoided(ctx, orig.ID, in.Reason, now); err != nil {
			return err
		}
		orig.IsVoided = true
		orig.VoidReason = in.Reason
		orig.VoidedAt = &now

		var sale *entity.SalesTransaction
		cashBack := decimal.Zero
		if orig.Type == entity.MovementTypeOut {
			sale, cashBack, err = applyRefund(ctx, r, actor, orig.ReceiptID, refund, "reintegro por anulación")
			if err != nil {
				return err
			}
		}
		res = &ReversalResult{
			Movement: orig, Original: orig, Batch: batch, Product: product, Sale: sale,
			Restored: restored, Refund: refund, CashBack: cashBack,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().
		Str("movement_id", in.MovementID).
		Str("restored", res.Restored.String()).
		Str("reason", in.Reason).
		Msg("movimiento anulado")
	return res, nil
}

// reversalKeys lee la línea fuera de la transacción para saber qué producto y recibo bloquear.
func (e *Engine) reversalKeys(ctx context.Context, movementID string) ([]string, error) {
	m, err := e.reads.Movements.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	keys := []string{ProductKey(m.ProductID)}
	if m.ReceiptID != "" {
		keys = append(keys, ReceiptKey(m.ReceiptID))
	}
	return keys, nil
}

// restore devuelve qty al lote (recortado al tamaño original) y la misma cantidad restaurada al producto.
func (e *Engine) restore(ctx context.Context, r repository.Stores, orig *entity.StockMovement, qty decimal.Decimal) (*entity.StockBatch, *entity.Product, decimal.Decimal, error) {
	batch, err := r.Batches.GetForUpdate(ctx, orig.BatchID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	if batch == nil || batch.ProductID != orig.ProductID {
		return nil, nil, decimal.Zero, domain.ErrInvalidBatch
	}
	product, err := r.Products.GetForUpdate(ctx, orig.ProductID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	if product == nil {
		return nil, nil, decimal.Zero, domain.ErrInvalidProduct
	}

	restored := decimal.Min(qty, batch.Restorable())
	if restored.LessThan(qty) {
		e.log.Warn().
			Str("batch_id", batch.ID).
			Str("requested", qty.String()).
			Str("restored", restored.String()).
			Msg("restauración recortada al tamaño original del lote")
	}
	if !restored.IsPositive() {
		return batch, product, decimal.Zero, nil
	}
	if batch, err = r.Batches.AdjustRemaining(ctx, batch.ID, restored); err != nil {
		return nil, nil, decimal.Zero, err
	}
	if product, err = r.Products.AdjustQuantity(ctx, product.ID, restored); err != nil {
		return nil, nil, decimal.Zero, err
	}
	return batch, product, restored, nil
}

// applyRefund reduce el total de la venta del recibo; si lo pagado supera el nuevo total,
// registra un abono negativo por el efectivo reintegrado.
func applyRefund(ctx context.Context, r repository.Stores, actor Actor, receiptID string, value decimal.Decimal, note string) (*entity.SalesTransaction, decimal.Decimal, error) {
	if receiptID == "" || !value.IsPositive() {
		return nil, decimal.Zero, nil
	}
	sale, err := r.Sales.GetForUpdate(ctx, receiptID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if sale == nil {
		return nil, decimal.Zero, nil
	}
	now := actor.Now()
	cashBack := sale.ApplyRefund(value)
	sale.UpdatedAt = now
	if err := r.Sales.UpdateBalance(ctx, sale); err != nil {
		return nil, decimal.Zero, err
	}
	if cashBack.IsPositive() {
		if err := r.Payments.Append(ctx, &entity.CreditPayment{
			ID:        uuid.New().String(),
			ReceiptID: sale.ID,
			Amount:    cashBack.Neg(),
			PaidAt:    now,
			Note:      note,
			CreatedBy: actor.UserID,
		}); err != nil {
			return nil, decimal.Zero, err
		}
	}
	return sale, cashBack, nil
}
