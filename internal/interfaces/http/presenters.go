package http

import (
	"github.com/jhoicas/Inventario-pos/internal/application/checkout"
	"github.com/jhoicas/Inventario-pos/internal/application/credit"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	if m == nil {
		return dto.MovementResponse{}
	}
	return dto.MovementResponse{
		ID:                 m.ID,
		ProductID:          m.ProductID,
		BatchID:            m.BatchID,
		Type:               string(m.Type),
		Quantity:           m.Quantity,
		UnitCost:           m.UnitCost,
		UnitPrice:          m.UnitPrice,
		Timestamp:          m.Timestamp,
		ReceiptID:          m.ReceiptID,
		ReasonCode:         m.ReasonCode,
		OriginalMovementID: m.OriginalMovementID,
		ReturnedQuantity:   m.ReturnedQuantity,
		IsVoided:           m.IsVoided,
		VoidReason:         m.VoidReason,
		VoidedAt:           m.VoidedAt,
		CreatedBy:          m.CreatedBy,
	}
}

func toMovementList(ms []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func batchValue(b *entity.StockBatch) dto.BatchResponse {
	if r := usecase.ToBatchResponse(b); r != nil {
		return *r
	}
	return dto.BatchResponse{}
}

func productValue(p *entity.Product) dto.ProductResponse {
	if r := usecase.ToProductResponse(p); r != nil {
		return *r
	}
	return dto.ProductResponse{}
}

func toTransactionResponse(t *entity.SalesTransaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:               t.ID,
		Date:             t.Date,
		TotalAmount:      t.TotalAmount,
		PaidAmount:       t.PaidAmount,
		RemainingBalance: t.RemainingBalance(),
		IsCredit:         t.IsCredit,
		CustomerName:     t.CustomerName,
		Status:           string(t.Status),
		CreatedBy:        t.CreatedBy,
	}
}

func toTransactionList(ts []*entity.SalesTransaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toPaymentResponse(p *entity.CreditPayment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:        p.ID,
		ReceiptID: p.ReceiptID,
		Amount:    p.Amount,
		PaidAt:    p.PaidAt,
		Note:      p.Note,
		CreatedBy: p.CreatedBy,
	}
}

func toLedgerResult(m *entity.StockMovement, b *entity.StockBatch, p *entity.Product) dto.LedgerResultResponse {
	return dto.LedgerResultResponse{
		Movement: toMovementResponse(m),
		Batch:    batchValue(b),
		Product:  productValue(p),
	}
}

func toReversalResponse(r *ledger.ReversalResult) dto.ReversalResponse {
	out := dto.ReversalResponse{
		Movement: toMovementResponse(r.Movement),
		Original: toMovementResponse(r.Original),
		Batch:    batchValue(r.Batch),
		Product:  productValue(r.Product),
		Restored: r.Restored,
		Refund:   r.Refund,
		CashBack: r.CashBack,
	}
	if r.Sale != nil {
		sale := toTransactionResponse(r.Sale)
		out.Sale = &sale
	}
	return out
}

func toReconcileResponse(r *ledger.ReconcileReport) dto.ReconcileResponse {
	out := dto.ReconcileResponse{Checked: r.Checked, Drifts: make([]dto.DriftResponse, 0, len(r.Drifts))}
	for _, d := range r.Drifts {
		out.Drifts = append(out.Drifts, dto.DriftResponse{
			ProductID: d.ProductID,
			Cached:    d.Cached,
			Actual:    d.Actual,
			Repaired:  d.Repaired,
		})
	}
	return out
}

func toCheckoutResponse(r *checkout.Receipt) dto.CheckoutResponse {
	out := dto.CheckoutResponse{
		Sale:   toTransactionResponse(r.Sale),
		Lines:  make([]dto.ReceiptLineResponse, 0, len(r.Lines)),
		Change: r.Change,
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, dto.ReceiptLineResponse{
			MovementID:  l.MovementID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			SKU:         l.SKU,
			BatchID:     l.BatchID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		})
	}
	return out
}

func toConsistencyResponse(c *credit.Consistency) dto.ConsistencyResponse {
	return dto.ConsistencyResponse{
		ReceiptID:  c.ReceiptID,
		PaidAmount: c.Paid,
		LogTotal:   c.Logged,
		Consistent: c.Consistent,
	}
}

func toReceiptDetailResponse(d *reports.ReceiptDetail) dto.ReceiptDetailResponse {
	out := dto.ReceiptDetailResponse{
		ReceiptID: d.ReceiptID,
		Items:     make([]dto.ReceiptItemResponse, 0, len(d.Items)),
		Returns:   toMovementList(d.Returns),
		Total:     d.Total,
	}
	if d.Sale != nil {
		sale := toTransactionResponse(d.Sale)
		out.Sale = &sale
	}
	for _, it := range d.Items {
		out.Items = append(out.Items, dto.ReceiptItemResponse{
			MovementID:  it.MovementID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			BatchID:     it.BatchID,
			Quantity:    it.Quantity,
			Returned:    it.Returned,
			Net:         it.Net,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
			Voided:      it.Voided,
			VoidReason:  it.VoidReason,
		})
	}
	return out
}

func toMarginReportResponse(r *reports.MarginReport) dto.MarginReportResponse {
	out := dto.MarginReportResponse{
		From:      r.From,
		To:        r.To,
		Lines:     r.Lines,
		UnitsSold: r.UnitsSold,
		Revenue:   r.Revenue,
		Cost:      r.Cost,
		Profit:    r.Profit,
		MarginPct: r.MarginPct,
		Products:  make([]dto.ProductMarginResponse, 0, len(r.Products)),
	}
	for _, p := range r.Products {
		out.Products = append(out.Products, dto.ProductMarginResponse{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			SKU:         p.SKU,
			UnitsSold:   p.UnitsSold,
			Revenue:     p.Revenue,
			Cost:        p.Cost,
			Profit:      p.Profit,
			MarginPct:   p.MarginPct,
		})
	}
	return out
}

func toStockCardResponse(entries []reports.StockCardEntry) []dto.StockCardEntryResponse {
	out := make([]dto.StockCardEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.StockCardEntryResponse{MovementResponse: toMovementResponse(e.Movement), Delta: e.Delta})
	}
	return out
}
