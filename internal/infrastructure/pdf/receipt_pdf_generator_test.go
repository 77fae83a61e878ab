package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_SeparadorDeMiles(t *testing.T) {
	g := NewReceiptPDFGenerator("")
	assert.Equal(t, "$1.500.000", g.Money(decimal.NewFromInt(1500000)))
	assert.Equal(t, "$0", g.Money(decimal.Zero))
}

func TestGenerateReceiptPDF(t *testing.T) {
	g := NewReceiptPDFGenerator("Tienda Don Pepe")
	sale := &entity.SalesTransaction{
		ID: "r-1", Date: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(450), PaidAmount: decimal.NewFromInt(200),
		IsCredit: true, CustomerName: "Doña Marta", Status: entity.PaymentStatusPartiallyPaid,
	}
	detail := &reports.ReceiptDetail{
		ReceiptID: "r-1",
		Sale:      sale,
		Total:     decimal.NewFromInt(450),
		Items: []reports.ReceiptItem{
			{ProductName: "Arroz", Quantity: decimal.NewFromInt(4), Returned: decimal.NewFromInt(1),
				Net: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(150), LineTotal: decimal.NewFromInt(450)},
			{ProductName: "Leche", Quantity: decimal.NewFromInt(2), Net: decimal.Zero, Voided: true,
				VoidReason: "error", UnitPrice: decimal.NewFromInt(80), LineTotal: decimal.Zero},
		},
	}
	payments := []*entity.CreditPayment{{ID: "c1", ReceiptID: "r-1", Amount: decimal.NewFromInt(200), PaidAt: sale.Date, Note: "abono inicial"}}

	doc, err := g.GenerateReceiptPDF(context.Background(), detail, payments)
	require.NoError(t, err)
	require.Greater(t, len(doc), 4)
	assert.Equal(t, "%PDF", string(doc[:4]))

	_, err = g.GenerateReceiptPDF(context.Background(), nil, nil)
	assert.Error(t, err)
}
