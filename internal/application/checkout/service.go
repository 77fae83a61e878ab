package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
	"github.com/shopspring/decimal"
)

// Ledger operaciones del motor de existencias que usa el cobro.
type Ledger interface {
	Execute(ctx context.Context, keys []string, fn func(repos repository.Stores) error) error
	SellInTx(ctx context.Context, r repository.Stores, actor ledger.Actor, in ledger.SellInput) (*ledger.MovementResult, error)
}

// Request solicitud de cobro de un carrito.
type Request struct {
	Lines          []Line
	DiscountCode   string
	CustomerName   string
	IsCredit       bool
	UpfrontPayment decimal.Decimal // crédito: abono inicial (0..total)
	Tendered       decimal.Decimal // contado: efectivo recibido (0 = exacto)
}

// ReceiptLine una porción de línea vendida de un lote.
type ReceiptLine struct {
	MovementID  string
	ProductID   string
	ProductName string
	SKU         string
	BatchID     string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	UnitCost    decimal.Decimal
	Total       decimal.Decimal
}

// Receipt resultado del cobro.
type Receipt struct {
	Sale   *entity.SalesTransaction
	Lines  []ReceiptLine
	Change decimal.Decimal
}

// Service cobra carritos. Todo el carrito es una sola transacción: si una línea falla no queda ninguna.
type Service struct {
	ledger Ledger
	log    *logger.Logger
}

// NewService construye el servicio de cobro.
func NewService(l Ledger, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{ledger: l, log: log.Named("checkout")}
}

// Checkout asigna cada línea a lotes en orden FIFO (una línea puede abarcar varios lotes),
// registra los OUT con un mismo recibo e instante y crea la venta con su abono inicial.
func (s *Service) Checkout(ctx context.Context, actor ledger.Actor, req Request) (*Receipt, error) {
	lines, err := normalize(req.Lines)
	if err != nil {
		return nil, err
	}
	if req.IsCredit && req.CustomerName == "" {
		return nil, fmt.Errorf("venta a crédito sin cliente: %w", domain.ErrInvalidInput)
	}

	receiptID := uuid.New().String()
	actor.At = actor.Now()
	keys := []string{ledger.ReceiptKey(receiptID)}
	for _, l := range lines {
		keys = append(keys, ledger.ProductKey(l.ProductID))
	}

	var receipt *Receipt
	err = s.ledger.Execute(ctx, keys, func(r repository.Stores) error {
		receipt = &Receipt{}
		total := decimal.Zero
		for _, l := range lines {
			items, err := s.sellLine(ctx, r, actor, receiptID, req.DiscountCode, l)
			if err != nil {
				return err
			}
			for _, it := range items {
				total = total.Add(it.Total)
			}
			receipt.Lines = append(receipt.Lines, items...)
		}

		paid, change, err := settle(req, total)
		if err != nil {
			return err
		}
		sale := &entity.SalesTransaction{
			ID:           receiptID,
			Date:         actor.At,
			TotalAmount:  total,
			PaidAmount:   paid,
			IsCredit:     req.IsCredit,
			CustomerName: req.CustomerName,
			Status:       entity.StatusFor(paid, total),
			CreatedBy:    actor.UserID,
			CreatedAt:    actor.At,
			UpdatedAt:    actor.At,
		}
		if err := r.Sales.Create(ctx, sale); err != nil {
			return err
		}
		if paid.IsPositive() {
			if err := r.Payments.Append(ctx, &entity.CreditPayment{
				ID:        uuid.New().String(),
				ReceiptID: receiptID,
				Amount:    paid,
				PaidAt:    actor.At,
				Note:      "pago en caja",
				CreatedBy: actor.UserID,
			}); err != nil {
				return err
			}
		}
		receipt.Sale = sale
		receipt.Change = change
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("receipt_id", receiptID).
		Int("lines", len(receipt.Lines)).
		Str("total", receipt.Sale.TotalAmount.String()).
		Str("status", string(receipt.Sale.Status)).
		Msg("venta cobrada")
	return receipt, nil
}

func (s *Service) sellLine(ctx context.Context, r repository.Stores, actor ledger.Actor, receiptID, discountCode string, l Line) ([]ReceiptLine, error) {
	product, err := r.Products.GetForUpdate(ctx, l.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, domain.ErrInvalidProduct
	}
	if l.DiscountPercent.GreaterThan(product.DiscountLimit) {
		return nil, fmt.Errorf("descuento %s%% supera el límite de %s: %w", l.DiscountPercent, product.Name, domain.ErrInvalidInput)
	}

	batches, err := r.Batches.FindActive(ctx, product.ID, repository.BatchOrderFIFO)
	if err != nil {
		return nil, err
	}
	allocs, err := inventory.AllocateFIFO(batches, l.Quantity)
	if err != nil {
		return nil, err
	}

	out := make([]ReceiptLine, 0, len(allocs))
	for _, a := range allocs {
		price := a.Batch.PriceFor(discountCode)
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		if l.DiscountPercent.IsPositive() {
			price = entity.ApplyDiscount(price, l.DiscountPercent)
		}
		res, err := s.ledger.SellInTx(ctx, r, actor, ledger.SellInput{
			ProductID: product.ID,
			BatchID:   a.Batch.ID,
			Quantity:  a.Quantity,
			UnitPrice: price,
			ReceiptID: receiptID,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, ReceiptLine{
			MovementID:  res.Movement.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			BatchID:     a.Batch.ID,
			Quantity:    a.Quantity,
			UnitPrice:   price,
			UnitCost:    res.Movement.UnitCost,
			Total:       entity.LineAmount(a.Quantity, price),
		})
	}
	return out, nil
}

// settle calcula lo pagado y el cambio. Contado: se paga el total. Crédito: el abono inicial.
func settle(req Request, total decimal.Decimal) (paid, change decimal.Decimal, err error) {
	if !req.IsCredit {
		if req.Tendered.IsPositive() && req.Tendered.LessThan(total) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("efectivo insuficiente: %w", domain.ErrInvalidAmount)
		}
		if req.Tendered.IsPositive() {
			change = req.Tendered.Sub(total)
		}
		return total, change, nil
	}
	if req.UpfrontPayment.IsNegative() || !entity.FitsStoreScale(req.UpfrontPayment) {
		return decimal.Zero, decimal.Zero, domain.ErrInvalidAmount
	}
	if req.UpfrontPayment.GreaterThan(total) {
		return decimal.Zero, decimal.Zero, domain.ErrOverPayment
	}
	return req.UpfrontPayment, decimal.Zero, nil
}

// normalize valida las líneas y une las del mismo producto (mismo precio y descuento).
func normalize(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("carrito vacío: %w", domain.ErrInvalidInput)
	}
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if !l.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		if l.DiscountPercent.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		merged := false
		for i := range out {
			if out[i].ProductID == l.ProductID && samePrice(out[i].UnitPrice, l.UnitPrice) && out[i].DiscountPercent.Equal(l.DiscountPercent) {
				out[i].Quantity = out[i].Quantity.Add(l.Quantity)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, l)
		}
	}
	return out, nil
}

func samePrice(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
