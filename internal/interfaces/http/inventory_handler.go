package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// ReconcileQueue encola conciliaciones en segundo plano.
type ReconcileQueue interface {
	EnqueueReconcile(ctx context.Context, repair bool) (string, error)
}

// InventoryHandler maneja las operaciones del libro de existencias (protegido).
type InventoryHandler struct {
	ledger  *ledger.Engine
	reports *reports.Service
	queue   ReconcileQueue
}

// NewInventoryHandler construye el handler. queue puede ser nil (sin Redis).
func NewInventoryHandler(l *ledger.Engine, rep *reports.Service, queue ReconcileQueue) *InventoryHandler {
	return &InventoryHandler{ledger: l, reports: rep, queue: queue}
}

// Receive godoc
// @Summary      Recibir mercancía (crea un lote)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "Lote recibido"
// @Success      201   {object}  dto.LedgerResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	received, err := parseReceivedDate(in.ReceivedDate)
	if err != nil {
		return err
	}
	res, err := h.ledger.Receive(c.UserContext(), actor(c), ledger.ReceiveInput{
		ProductID:          in.ProductID,
		Quantity:           in.Quantity,
		CostPrice:          in.CostPrice,
		SellingPrice:       in.SellingPrice,
		DiscountPercentage: in.DiscountPercentage,
		DiscountCode:       in.DiscountCode,
		ReceivedDate:       received,
		InvoiceID:          in.InvoiceID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerResult(res.Movement, res.Batch, res.Product))
}

// ReceiveInvoice godoc
// @Summary      Recibir una factura de proveedor (varias líneas, todo o nada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveInvoiceRequest  true  "Factura"
// @Success      201   {array}   dto.LedgerResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/invoices [post]
func (h *InventoryHandler) ReceiveInvoice(c *fiber.Ctx) error {
	var in dto.ReceiveInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	received, err := parseReceivedDate(in.ReceivedDate)
	if err != nil {
		return err
	}
	lines := make([]ledger.InvoiceLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, ledger.InvoiceLine{
			ProductID:          l.ProductID,
			Quantity:           l.Quantity,
			CostPrice:          l.CostPrice,
			SellingPrice:       l.SellingPrice,
			DiscountPercentage: l.DiscountPercentage,
			DiscountCode:       l.DiscountCode,
		})
	}
	results, err := h.ledger.ReceiveInvoice(c.UserContext(), actor(c), ledger.ReceiveInvoiceInput{
		InvoiceID:    in.InvoiceID,
		ReceivedDate: received,
		Lines:        lines,
	})
	if err != nil {
		return err
	}
	out := make([]dto.LedgerResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toLedgerResult(r.Movement, r.Batch, r.Product))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Sell godoc
// @Summary      Vender de un lote elegido
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SellRequest  true  "Venta"
// @Success      201   {object}  dto.LedgerResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) Sell(c *fiber.Ctx) error {
	var in dto.SellRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.ledger.Sell(c.UserContext(), actor(c), ledger.SellInput{
		ProductID: in.ProductID,
		BatchID:   in.BatchID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		ReceiptID: in.ReceiptID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerResult(res.Movement, res.Batch, res.Product))
}

// Adjust godoc
// @Summary      Ajustar existencias (CORRECTION o LOST)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "Ajuste"
// @Success      201   {object}  dto.LedgerResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.ledger.Adjust(c.UserContext(), actor(c), ledger.AdjustInput{
		ProductID: in.ProductID,
		BatchID:   in.BatchID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerResult(res.Movement, res.Batch, res.Product))
}

// Return godoc
// @Summary      Devolución parcial o total de una línea de venta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnRequest  true  "Devolución"
// @Success      201   {object}  dto.ReversalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/returns [post]
func (h *InventoryHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.ledger.Return(c.UserContext(), actor(c), ledger.ReturnInput{
		OriginalMovementID: in.MovementID,
		Quantity:           in.Quantity,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toReversalResponse(res))
}

// Void godoc
// @Summary      Anular un movimiento
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.VoidRequest  true  "Motivo"
// @Success      200   {object}  dto.ReversalResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/void [post]
func (h *InventoryHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.ledger.Void(c.UserContext(), actor(c), ledger.VoidInput{MovementID: c.Params("id"), Reason: in.Reason})
	if err != nil {
		return err
	}
	return c.JSON(toReversalResponse(res))
}

// Movements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        receipt_id  query  string  false  "Recibo"
// @Param        product_id  query  string  false  "Producto"
// @Param        type        query  string  false  "IN | OUT | ADJUSTMENT | SALES_RETURN | VOID"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	from, to, err := q.PeriodRequest.Parse(time.Now())
	if err != nil {
		return badRequest("INVALID_PERIOD", err.Error())
	}
	filter := reports.MovementFilter{
		ProductID: q.ProductID,
		ReceiptID: q.ReceiptID,
		Type:      entity.MovementType(q.Type),
	}
	if q.StartDate != "" || q.EndDate != "" || (filter.ProductID == "" && filter.Type == "") {
		filter.From, filter.To = &from, &to
	}
	list, err := h.reports.Movements(c.UserContext(), filter, reports.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return err
	}
	return c.JSON(toMovementList(list))
}

// Reconcile godoc
// @Summary      Conciliar cantidad en caché contra la suma de lotes
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        async  query  bool  false  "Encolar en el worker en lugar de ejecutar en línea"
// @Param        body   body   dto.ReconcileRequest  false  "repair=true corrige las diferencias"
// @Success      200   {object}  dto.ReconcileResponse
// @Success      202   {object}  map[string]string
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	if c.QueryBool("async", false) {
		if h.queue == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "cola de trabajos no configurada")
		}
		id, err := h.queue.EnqueueReconcile(c.UserContext(), in.Repair)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": id})
	}
	report, err := h.ledger.Reconcile(c.UserContext(), in.Repair)
	if err != nil {
		return err
	}
	return c.JSON(toReconcileResponse(report))
}

func parseReceivedDate(s string) (time.Time, error) {
	t, err := dto.ParseDate(s)
	if err != nil {
		return time.Time{}, badRequest("INVALID_DATE", err.Error())
	}
	return t, nil
}
