package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Receive registra un lote nuevo: remaining = initial = quantity, producto += quantity y movimiento IN.
// Actualiza los precios de referencia del producto (costo promedio ponderado y precio del lote más reciente).
func (e *Engine) Receive(ctx context.Context, actor Actor, in ReceiveInput) (*ReceiveResult, error) {
	if err := validateReceive(in.Quantity, in.CostPrice, in.SellingPrice, in.DiscountPercentage); err != nil {
		return nil, err
	}
	var res *ReceiveResult
	err := e.Execute(ctx, []string{ProductKey(in.ProductID)}, func(r repository.Stores) error {
		if err := ensureInvoiceUnused(ctx, r, in.InvoiceID); err != nil {
			return err
		}
		out, err := e.receiveInTx(ctx, r, actor, in)
		if err != nil {
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().
		Str("product_id", in.ProductID).
		Str("batch_id", res.Batch.ID).
		Str("qty", in.Quantity.String()).
		Str("invoice_id", in.InvoiceID).
		Msg("recepción registrada")
	return res, nil
}

// ReceiveInvoice recibe todas las líneas de una factura de proveedor en una sola transacción.
func (e *Engine) ReceiveInvoice(ctx context.Context, actor Actor, in ReceiveInvoiceInput) ([]*ReceiveResult, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("factura sin líneas: %w", domain.ErrInvalidInput)
	}
	keys := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		if err := validateReceive(l.Quantity, l.CostPrice, l.SellingPrice, l.DiscountPercentage); err != nil {
			return nil, err
		}
		keys = append(keys, ProductKey(l.ProductID))
	}

	var results []*ReceiveResult
	err := e.Execute(ctx, keys, func(r repository.Stores) error {
		if err := ensureInvoiceUnused(ctx, r, in.InvoiceID); err != nil {
			return err
		}
		results = results[:0]
		for _, l := range in.Lines {
			out, err := e.receiveInTx(ctx, r, actor, ReceiveInput{
				ProductID:          l.ProductID,
				Quantity:           l.Quantity,
				CostPrice:          l.CostPrice,
				SellingPrice:       l.SellingPrice,
				DiscountPercentage: l.DiscountPercentage,
				DiscountCode:       l.DiscountCode,
				ReceivedDate:       in.ReceivedDate,
				InvoiceID:          in.InvoiceID,
			})
			if err != nil {
				return err
			}
			results = append(results, out)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("invoice_id", in.InvoiceID).Int("lines", len(results)).Msg("factura recibida")
	return results, nil
}

func (e *Engine) receiveInTx(ctx context.Context, r repository.Stores, actor Actor, in ReceiveInput) (*ReceiveResult, error) {
	product, err := r.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, domain.ErrInvalidProduct
	}

	now := actor.Now()
	received := in.ReceivedDate
	if received.IsZero() {
		received = now
	}
	batch := &entity.StockBatch{
		ID:                 uuid.New().String(),
		ProductID:          product.ID,
		InitialQuantity:    in.Quantity,
		RemainingQuantity:  in.Quantity,
		CostPrice:          in.CostPrice,
		SellingPrice:       in.SellingPrice,
		DiscountPercentage: in.DiscountPercentage,
		DiscountCode:       in.DiscountCode,
		ReceivedDate:       received,
		InvoiceID:          in.InvoiceID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := r.Batches.Create(ctx, batch); err != nil {
		return nil, err
	}

	// Costo de referencia: promedio ponderado sobre la existencia previa
	avgCost := inventory.CostCalculator(product.Quantity, product.BuyingPrice, in.Quantity, in.CostPrice)
	selling, err := newestSellingPrice(ctx, r, product.ID, in.SellingPrice)
	if err != nil {
		return nil, err
	}
	if err := r.Products.UpdateReferencePrices(ctx, product.ID, avgCost, selling); err != nil {
		return nil, err
	}
	updated, err := r.Products.AdjustQuantity(ctx, product.ID, in.Quantity)
	if err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		BatchID:   batch.ID,
		Type:      entity.MovementTypeIn,
		Quantity:  in.Quantity,
		UnitCost:  in.CostPrice,
		UnitPrice: in.SellingPrice,
		Timestamp: now,
		CreatedBy: actor.UserID,
	}
	if err := r.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}
	return &ReceiveResult{Batch: batch, Movement: mov, Product: updated}, nil
}

func validateReceive(qty, cost, selling, discount decimal.Decimal) error {
	if !qty.IsPositive() || !entity.FitsStoreScale(qty) {
		return domain.ErrInvalidQuantity
	}
	if cost.IsNegative() || selling.IsNegative() {
		return fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}
	if !entity.FitsStoreScale(cost) || !entity.FitsStoreScale(selling) {
		return fmt.Errorf("precio con más de %d decimales: %w", entity.StoreScale, domain.ErrInvalidInput)
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) || !discount.Equal(discount.Truncate(entity.MoneyScale)) {
		return fmt.Errorf("descuento fuera de rango: %w", domain.ErrInvalidInput)
	}
	return nil
}

func ensureInvoiceUnused(ctx context.Context, r repository.Stores, invoiceID string) error {
	if invoiceID == "" {
		return nil
	}
	used, err := r.Batches.ExistsByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrDuplicateInvoice
	}
	return nil
}

// newestSellingPrice precio de venta del lote con fecha de recepción más reciente.
func newestSellingPrice(ctx context.Context, r repository.Stores, productID string, fallback decimal.Decimal) (decimal.Decimal, error) {
	batches, err := r.Batches.ListByProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(batches) == 0 {
		return fallback, nil
	}
	return batches[0].SellingPrice, nil
}
