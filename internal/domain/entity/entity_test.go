package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestStatusFor(t *testing.T) {
	assert.Equal(t, PaymentStatusPaid, StatusFor(dec("100"), dec("100")))
	assert.Equal(t, PaymentStatusUnpaid, StatusFor(dec("0"), dec("100")))
	assert.Equal(t, PaymentStatusPartiallyPaid, StatusFor(dec("40"), dec("100")))
	// total cero totalmente devuelto: pagado 0 == total 0
	assert.Equal(t, PaymentStatusPaid, StatusFor(dec("0"), dec("0")))
}

func TestSalesTransaction_ApplyPayment_RecortaAlTotal(t *testing.T) {
	tx := &SalesTransaction{TotalAmount: dec("1000"), PaidAmount: dec("400")}
	applied := tx.ApplyPayment(dec("700"))
	assert.True(t, applied.Equal(dec("600")))
	assert.True(t, tx.PaidAmount.Equal(dec("1000")))
	assert.Equal(t, PaymentStatusPaid, tx.Status)
}

func TestSalesTransaction_ApplyRefund_DevuelveEfectivo(t *testing.T) {
	tx := &SalesTransaction{TotalAmount: dec("1000"), PaidAmount: dec("1000")}
	cash := tx.ApplyRefund(dec("300"))
	assert.True(t, cash.Equal(dec("300")))
	assert.True(t, tx.TotalAmount.Equal(dec("700")))
	assert.True(t, tx.PaidAmount.Equal(dec("700")))
	assert.Equal(t, PaymentStatusPaid, tx.Status)
}

func TestSalesTransaction_ApplyRefund_CreditoSinEfectivo(t *testing.T) {
	tx := &SalesTransaction{TotalAmount: dec("1000"), PaidAmount: dec("200")}
	cash := tx.ApplyRefund(dec("300"))
	assert.True(t, cash.IsZero())
	assert.True(t, tx.RemainingBalance().Equal(dec("500")))
	assert.Equal(t, PaymentStatusPartiallyPaid, tx.Status)
}

func TestStockBatch_PriceFor(t *testing.T) {
	b := &StockBatch{SellingPrice: dec("200"), DiscountPercentage: dec("10"), DiscountCode: "PROMO"}
	assert.True(t, b.PriceFor("PROMO").Equal(dec("180")))
	assert.True(t, b.PriceFor("OTRO").Equal(dec("200")))
	assert.True(t, b.PriceFor("").Equal(dec("200")))
}

func TestStockMovement_Reversible(t *testing.T) {
	m := &StockMovement{Type: MovementTypeOut, Quantity: dec("10"), ReturnedQuantity: dec("4")}
	assert.True(t, m.Reversible().Equal(dec("6")))
	m.IsVoided = true
	assert.True(t, m.Reversible().IsZero())
	assert.True(t, m.NetQuantity().IsZero())
}

func TestMovementType_IsValid(t *testing.T) {
	assert.True(t, MovementTypeSalesReturn.IsValid())
	assert.False(t, MovementType("TRANSFER").IsValid())
	assert.True(t, MovementTypeAdjustment.Decreases())
	assert.False(t, MovementTypeIn.Decreases())
}

func TestStockMovement_RefundFor_SumaElImporteCobrado(t *testing.T) {
	m := &StockMovement{Type: MovementTypeOut, Quantity: dec("3"), UnitPrice: dec("3.333")}
	assert.Equal(t, "10", m.NetAmount().String())

	var refunded decimal.Decimal
	for i := 0; i < 3; i++ {
		refunded = refunded.Add(m.RefundFor(dec("1")))
		m.ReturnedQuantity = m.ReturnedQuantity.Add(dec("1"))
	}
	assert.Equal(t, "10", refunded.String())
	assert.True(t, m.NetAmount().IsZero())
}

func TestFitsStoreScale(t *testing.T) {
	assert.True(t, FitsStoreScale(dec("1.2345")))
	assert.True(t, FitsStoreScale(dec("1.50000")))
	assert.False(t, FitsStoreScale(dec("0.00004")))
	assert.Equal(t, "6.67", LineAmount(dec("2"), dec("3.333")).String())
}
