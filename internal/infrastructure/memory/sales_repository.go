package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.SalesTransactionRepository = (*SalesTransactionRepo)(nil)
	_ repository.CreditPaymentRepository    = (*CreditPaymentRepo)(nil)
)

// SalesTransactionRepo implementación en memoria de las ventas.
type SalesTransactionRepo struct {
	s  *Store
	tx *state
}

func (r *SalesTransactionRepo) Create(_ context.Context, t *entity.SalesTransaction) error {
	return r.s.view(r.tx, true, func(st *state) error {
		if _, ok := st.sales[t.ID]; ok {
			return domain.ErrDuplicate
		}
		st.sales[t.ID] = copySale(t)
		return nil
	})
}

func (r *SalesTransactionRepo) GetByID(_ context.Context, id string) (*entity.SalesTransaction, error) {
	var out *entity.SalesTransaction
	err := r.s.view(r.tx, false, func(st *state) error {
		if t, ok := st.sales[id]; ok {
			out = copySale(t)
		}
		return nil
	})
	return out, err
}

func (r *SalesTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesTransaction, error) {
	return r.GetByID(ctx, id)
}

func (r *SalesTransactionRepo) UpdateBalance(_ context.Context, t *entity.SalesTransaction) error {
	return r.s.view(r.tx, true, func(st *state) error {
		cur, ok := st.sales[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.TotalAmount = t.TotalAmount
		cur.PaidAmount = t.PaidAmount
		cur.Status = t.Status
		cur.UpdatedAt = t.UpdatedAt
		return nil
	})
}

// ListUnpaid ventas con saldo pendiente, más antiguas primero.
func (r *SalesTransactionRepo) ListUnpaid(_ context.Context, limit, offset int) ([]*entity.SalesTransaction, error) {
	out, err := r.filter(func(t *entity.SalesTransaction) bool { return t.Status != entity.PaymentStatusPaid })
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return page(out, limit, offset), err
}

// ListByDateRange ventas en [from, to], más recientes primero.
func (r *SalesTransactionRepo) ListByDateRange(_ context.Context, from, to time.Time, limit, offset int) ([]*entity.SalesTransaction, error) {
	out, err := r.filter(func(t *entity.SalesTransaction) bool { return inRange(t.Date, &from, &to) })
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, limit, offset), err
}

func (r *SalesTransactionRepo) ListIDs(_ context.Context) ([]string, error) {
	out, err := r.filter(func(*entity.SalesTransaction) bool { return true })
	ids := make([]string, 0, len(out))
	for _, t := range out {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return ids, err
}

func (r *SalesTransactionRepo) filter(match func(*entity.SalesTransaction) bool) ([]*entity.SalesTransaction, error) {
	var out []*entity.SalesTransaction
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, t := range st.sales {
			if match(t) {
				out = append(out, copySale(t))
			}
		}
		return nil
	})
	return out, err
}

// CreditPaymentRepo implementación en memoria del registro de abonos.
type CreditPaymentRepo struct {
	s  *Store
	tx *state
}

func (r *CreditPaymentRepo) Append(_ context.Context, p *entity.CreditPayment) error {
	return r.s.view(r.tx, true, func(st *state) error {
		if _, ok := st.sales[p.ReceiptID]; !ok {
			return domain.ErrNotFound
		}
		cp := *p
		st.payments = append(st.payments, &cp)
		return nil
	})
}

func (r *CreditPaymentRepo) ListByReceipt(_ context.Context, receiptID string) ([]*entity.CreditPayment, error) {
	var out []*entity.CreditPayment
	err := r.s.view(r.tx, false, func(st *state) error {
		for _, p := range st.payments {
			if p.ReceiptID == receiptID {
				cp := *p
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r *CreditPaymentRepo) SumByReceipt(ctx context.Context, receiptID string) (decimal.Decimal, error) {
	list, err := r.ListByReceipt(ctx, receiptID)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range list {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}
