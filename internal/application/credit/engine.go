package credit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
	"github.com/shopspring/decimal"
)

// Executor corre fn en una transacción con los locks de keys (implementado por ledger.Engine).
type Executor interface {
	Execute(ctx context.Context, keys []string, fn func(repos repository.Stores) error) error
}

// PaymentInput abono a una venta a crédito.
type PaymentInput struct {
	ReceiptID string
	Amount    decimal.Decimal
	Note      string
}

// PaymentResult venta actualizada y registro del abono.
type PaymentResult struct {
	Sale    *entity.SalesTransaction
	Payment *entity.CreditPayment
}

// Consistency compara lo pagado de una venta con la suma de su registro de abonos.
type Consistency struct {
	ReceiptID  string
	Paid       decimal.Decimal
	Logged     decimal.Decimal
	Consistent bool
}

// VerifyReport resultado de verificar todas las ventas.
type VerifyReport struct {
	Checked      int
	Inconsistent []Consistency
}

// Engine cartera de crédito: abonos serializados por recibo.
type Engine struct {
	exec  Executor
	reads repository.Stores
	log   *logger.Logger
}

// NewEngine construye la cartera.
func NewEngine(exec Executor, reads repository.Stores, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{exec: exec, reads: reads, log: log.Named("credit")}
}

// RecordPayment suma un abono al pagado de la venta, recalcula el estado y lo registra, en una sola transacción.
func (e *Engine) RecordPayment(ctx context.Context, actor ledger.Actor, in PaymentInput) (*PaymentResult, error) {
	if !in.Amount.IsPositive() || !entity.FitsStoreScale(in.Amount) {
		return nil, domain.ErrInvalidAmount
	}
	var res *PaymentResult
	err := e.exec.Execute(ctx, []string{ledger.ReceiptKey(in.ReceiptID)}, func(r repository.Stores) error {
		sale, err := r.Sales.GetForUpdate(ctx, in.ReceiptID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if in.Amount.GreaterThan(sale.RemainingBalance()) {
			return domain.ErrOverPayment
		}

		at := actor.Now()
		applied := sale.ApplyPayment(in.Amount)
		sale.UpdatedAt = at
		if err := r.Sales.UpdateBalance(ctx, sale); err != nil {
			return err
		}
		payment := &entity.CreditPayment{
			ID:        uuid.New().String(),
			ReceiptID: sale.ID,
			Amount:    applied,
			PaidAt:    at,
			Note:      in.Note,
			CreatedBy: actor.UserID,
		}
		if err := r.Payments.Append(ctx, payment); err != nil {
			return err
		}
		res = &PaymentResult{Sale: sale, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().
		Str("receipt_id", in.ReceiptID).
		Str("amount", in.Amount.String()).
		Str("status", string(res.Sale.Status)).
		Msg("abono registrado")
	return res, nil
}

// VerifyConsistency compara PaidAmount con la suma del registro de abonos del recibo.
func (e *Engine) VerifyConsistency(ctx context.Context, receiptID string) (*Consistency, error) {
	sale, err := e.reads.Sales.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	logged, err := e.reads.Payments.SumByReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	return &Consistency{
		ReceiptID:  receiptID,
		Paid:       sale.PaidAmount,
		Logged:     logged,
		Consistent: sale.PaidAmount.Equal(logged),
	}, nil
}

// VerifyAll verifica todas las ventas y devuelve las inconsistentes.
func (e *Engine) VerifyAll(ctx context.Context) (*VerifyReport, error) {
	ids, err := e.reads.Sales.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	report := &VerifyReport{Checked: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := e.VerifyConsistency(ctx, id)
		if err != nil {
			return nil, err
		}
		if !c.Consistent {
			e.log.Warn().
				Str("receipt_id", id).
				Str("paid", c.Paid.String()).
				Str("logged", c.Logged.String()).
				Msg("pagado no coincide con el registro de abonos")
			report.Inconsistent = append(report.Inconsistent, *c)
		}
	}
	return report, nil
}

// Payments devuelve el registro de abonos del recibo en orden cronológico.
func (e *Engine) Payments(ctx context.Context, receiptID string) ([]*entity.CreditPayment, error) {
	sale, err := e.reads.Sales.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return e.reads.Payments.ListByReceipt(ctx, receiptID)
}
