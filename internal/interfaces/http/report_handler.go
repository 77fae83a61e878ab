package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var defaultLowStockThreshold = decimal.NewFromInt(5)

// ReceiptRenderer genera la representación imprimible de un recibo.
type ReceiptRenderer interface {
	GenerateReceiptPDF(ctx context.Context, detail *reports.ReceiptDetail, payments []*entity.CreditPayment) ([]byte, error)
}

// paymentLog registro de abonos de un recibo.
type paymentLog interface {
	Payments(ctx context.Context, receiptID string) ([]*entity.CreditPayment, error)
}

// ReportHandler proyecciones de solo lectura (protegido).
type ReportHandler struct {
	reports  *reports.Service
	payments paymentLog
	pdf      ReceiptRenderer
}

// NewReportHandler construye el handler. pdf puede ser nil (la ruta PDF responde 404).
func NewReportHandler(rep *reports.Service, payments paymentLog, pdf ReceiptRenderer) *ReportHandler {
	return &ReportHandler{reports: rep, payments: payments, pdf: pdf}
}

// LowStock godoc
// @Summary      Productos con existencias bajas
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  string  false  "Umbral (decimal)"  default(5)
// @Success      200  {array}   dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	var q dto.LowStockRequest
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	threshold := defaultLowStockThreshold
	if q.Threshold != "" {
		v, err := decimal.NewFromString(q.Threshold)
		if err != nil {
			return badRequest("INVALID_THRESHOLD", "threshold debe ser un número")
		}
		threshold = v
	}
	list, err := h.reports.LowStockProducts(c.UserContext(), threshold)
	if err != nil {
		return err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, productValue(p))
	}
	return c.JSON(out)
}

// Sales godoc
// @Summary      Historial de ventas del período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD (por defecto inicio de mes)"
// @Param        end_date    query  string  false  "YYYY-MM-DD (por defecto hoy)"
// @Param        limit       query  int     false  "Límite"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {array}   dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	var q struct {
		dto.PageRequest
		dto.PeriodRequest
	}
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	from, to, err := q.PeriodRequest.Parse(time.Now())
	if err != nil {
		return badRequest("INVALID_PERIOD", err.Error())
	}
	list, err := h.reports.SalesHistory(c.UserContext(), from, to, reports.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return err
	}
	return c.JSON(toTransactionList(list))
}

// Unpaid godoc
// @Summary      Ventas con saldo pendiente
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}  dto.TransactionResponse
// @Router       /api/reports/unpaid [get]
func (h *ReportHandler) Unpaid(c *fiber.Ctx) error {
	var q dto.PageRequest
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	list, err := h.reports.UnpaidTransactions(c.UserContext(), reports.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return err
	}
	return c.JSON(toTransactionList(list))
}

// Margin godoc
// @Summary      Resumen de margen bruto del período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.MarginReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/margin [get]
func (h *ReportHandler) Margin(c *fiber.Ctx) error {
	var q dto.PeriodRequest
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	from, to, err := q.Parse(time.Now())
	if err != nil {
		return badRequest("INVALID_PERIOD", err.Error())
	}
	report, err := h.reports.MarginSummary(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(toMarginReportResponse(report))
}

// ReceiptItems godoc
// @Summary      Líneas de un recibo con devoluciones y anulaciones
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        receipt_id  path  string  true  "Recibo"
// @Success      200  {object}  dto.ReceiptDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/receipts/{receipt_id}/items [get]
func (h *ReportHandler) ReceiptItems(c *fiber.Ctx) error {
	detail, err := h.reports.TransactionItems(c.UserContext(), c.Params("receipt_id"))
	if err != nil {
		return err
	}
	return c.JSON(toReceiptDetailResponse(detail))
}

// ReceiptPDF godoc
// @Summary      Recibo en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        receipt_id  path  string  true  "Recibo"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/receipts/{receipt_id}/pdf [get]
func (h *ReportHandler) ReceiptPDF(c *fiber.Ctx) error {
	if h.pdf == nil {
		return fiber.ErrNotFound
	}
	ctx := c.UserContext()
	receiptID := c.Params("receipt_id")
	detail, err := h.reports.TransactionItems(ctx, receiptID)
	if err != nil {
		return err
	}
	var payments []*entity.CreditPayment
	if detail.Sale != nil && h.payments != nil {
		payments, err = h.payments.Payments(ctx, receiptID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	doc, err := h.pdf.GenerateReceiptPDF(ctx, detail, payments)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="recibo-`+receiptID+`.pdf"`)
	return c.Send(doc)
}

// StockCard godoc
// @Summary      Tarjeta de existencias del producto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID del producto"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {array}   dto.StockCardEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/products/{id}/stock-card [get]
func (h *ReportHandler) StockCard(c *fiber.Ctx) error {
	var q dto.StockCardRequest
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	from, to, err := optionalRange(q.StartDate, q.EndDate)
	if err != nil {
		return err
	}
	entries, err := h.reports.StockCard(c.UserContext(), c.Params("id"), from, to, reports.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return err
	}
	return c.JSON(toStockCardResponse(entries))
}

// optionalRange fechas opcionales; end es inclusivo hasta el final del día.
func optionalRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		t, err := dto.ParseDate(start)
		if err != nil {
			return nil, nil, badRequest("INVALID_DATE", err.Error())
		}
		from = &t
	}
	if end != "" {
		t, err := dto.ParseDate(end)
		if err != nil {
			return nil, nil, badRequest("INVALID_DATE", err.Error())
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	return from, to, nil
}
