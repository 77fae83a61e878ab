package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

var validate = validator.New()

// requestError error de forma de la petición (cuerpo, query o validación).
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, message string) error {
	return &requestError{code: code, message: message}
}

// parseBody decodifica el cuerpo JSON y aplica las reglas `validate`.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return badRequest("INVALID_BODY", "cuerpo inválido")
	}
	return validateStruct(out)
}

// parseQuery decodifica los parámetros de query y aplica las reglas `validate`.
func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return badRequest("INVALID_QUERY", "parámetros de consulta inválidos")
	}
	return validateStruct(out)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return badRequest("VALIDATION", err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Namespace()+": "+fe.Tag())
	}
	return badRequest("VALIDATION", strings.Join(msgs, "; "))
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorTable orden importa: el primer errors.Is que coincide gana.
var errorTable = []errorMapping{
	{domain.ErrTransactionConflict, fiber.StatusServiceUnavailable, "TRANSACTION_CONFLICT"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidAmount, fiber.StatusBadRequest, "INVALID_AMOUNT"},
	{domain.ErrInvalidBatch, fiber.StatusBadRequest, "INVALID_BATCH"},
	{domain.ErrInvalidProduct, fiber.StatusBadRequest, "INVALID_PRODUCT"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrOverReturn, fiber.StatusConflict, "OVER_RETURN"},
	{domain.ErrOverPayment, fiber.StatusConflict, "OVER_PAYMENT"},
	{domain.ErrDuplicateInvoice, fiber.StatusConflict, "DUPLICATE_INVOICE"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrMovementVoided, fiber.StatusConflict, "MOVEMENT_VOIDED"},
	{domain.ErrMovementNotReversible, fiber.StatusConflict, "MOVEMENT_NOT_REVERSIBLE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// ErrorHandler traduce errores de dominio a dto.ErrorResponse con su código HTTP.
// Los errores no reconocidos se registran y responden 500 sin detalle interno.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("http")
	return func(c *fiber.Ctx, err error) error {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: reqErr.code, Message: reqErr.message})
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", "_")), Message: fe.Message})
		}
		for _, m := range errorTable {
			if errors.Is(err, m.target) {
				if m.status == fiber.StatusServiceUnavailable {
					c.Set(fiber.HeaderRetryAfter, "1")
				}
				return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
			}
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
	}
}
