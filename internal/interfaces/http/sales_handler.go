package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/application/checkout"
	"github.com/jhoicas/Inventario-pos/internal/application/credit"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
)

// SalesHandler cobro de carritos y cartera de crédito (protegido).
type SalesHandler struct {
	checkout *checkout.Service
	credit   *credit.Engine
}

// NewSalesHandler construye el handler.
func NewSalesHandler(co *checkout.Service, cr *credit.Engine) *SalesHandler {
	return &SalesHandler{checkout: co, credit: cr}
}

// Checkout godoc
// @Summary      Cobrar un carrito
// @Description  Asigna cada línea a lotes FIFO y registra la venta en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Carrito"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/checkout [post]
func (h *SalesHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	req := checkout.Request{
		Lines:          make([]checkout.Line, 0, len(in.Lines)),
		DiscountCode:   in.DiscountCode,
		CustomerName:   in.CustomerName,
		IsCredit:       in.IsCredit,
		UpfrontPayment: in.UpfrontPayment,
		Tendered:       in.Tendered,
	}
	for _, l := range in.Lines {
		req.Lines = append(req.Lines, checkout.Line{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
		})
	}
	receipt, err := h.checkout.Checkout(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toCheckoutResponse(receipt))
}

// RecordPayment godoc
// @Summary      Registrar un abono a una venta a crédito
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        receipt_id  path  string  true  "Recibo"
// @Param        body        body  dto.PaymentRequest  true  "Abono"
// @Success      201   {object}  dto.RecordPaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit/{receipt_id}/payments [post]
func (h *SalesHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.credit.RecordPayment(c.UserContext(), actor(c), credit.PaymentInput{
		ReceiptID: c.Params("receipt_id"),
		Amount:    in.Amount,
		Note:      in.Note,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordPaymentResponse{
		Payment: toPaymentResponse(res.Payment),
		Sale:    toTransactionResponse(res.Sale),
	})
}

// Payments godoc
// @Summary      Registro de abonos de una venta
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        receipt_id  path  string  true  "Recibo"
// @Success      200  {array}   dto.PaymentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit/{receipt_id}/payments [get]
func (h *SalesHandler) Payments(c *fiber.Ctx) error {
	list, err := h.credit.Payments(c.UserContext(), c.Params("receipt_id"))
	if err != nil {
		return err
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Verificar que lo pagado coincide con la suma de abonos
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        receipt_id  path  string  true  "Recibo"
// @Success      200  {object}  dto.ConsistencyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit/{receipt_id}/verify [get]
func (h *SalesHandler) Verify(c *fiber.Ctx) error {
	res, err := h.credit.VerifyConsistency(c.UserContext(), c.Params("receipt_id"))
	if err != nil {
		return err
	}
	return c.JSON(toConsistencyResponse(res))
}
