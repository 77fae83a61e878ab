package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP de productos y sus lotes (protegido).
type ProductHandler struct {
	uc      *usecase.ProductUseCase
	batches *usecase.BatchUseCase
	reports *reports.Service
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, batches *usecase.BatchUseCase, rep *reports.Service) *ProductHandler {
	return &ProductHandler{uc: uc, batches: batches, reports: rep}
}

// Create godoc
// @Summary      Crear producto
// @Description  La cantidad inicia en 0; solo cambia al recibir mercancía.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit             query  int     false  "Límite"   default(20)
// @Param        offset            query  int     false  "Offset"   default(0)
// @Param        category_id       query  string  false  "Filtrar por categoría"
// @Param        include_inactive  query  bool    false  "Incluir desactivados"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var in dto.ProductListRequest
	if err := parseQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  No modifica la cantidad ni el costo; esos solo cambian por el libro de existencias.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desactivar producto (borrado lógico)
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Batches godoc
// @Summary      Lotes del producto, más reciente primero
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/batches [get]
func (h *ProductHandler) Batches(c *fiber.Ctx) error {
	list, err := h.reports.ProductBatches(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, batchValue(b))
	}
	return c.JSON(out)
}

// CorrectBatchPricing godoc
// @Summary      Corrección administrativa de precios de un lote
// @Description  No altera cantidades ni movimientos ya registrados.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.BatchPricingRequest  true  "Precios a corregir"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/pricing [put]
func (h *ProductHandler) CorrectBatchPricing(c *fiber.Ctx) error {
	var in dto.BatchPricingRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.batches.CorrectPricing(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
