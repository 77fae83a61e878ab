package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del libro de existencias y de la cartera de crédito.
var (
	ErrInvalidQuantity       = errors.New("la cantidad debe ser mayor que cero")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInvalidBatch          = errors.New("lote inexistente o de otro producto")
	ErrInvalidProduct        = errors.New("producto inexistente o inactivo")
	ErrOverReturn            = errors.New("la devolución supera la cantidad reversible")
	ErrOverPayment           = errors.New("el abono supera el saldo pendiente")
	ErrInvalidAmount         = errors.New("el monto debe ser mayor que cero")
	ErrDuplicateInvoice      = errors.New("la factura de proveedor ya fue recibida")
	ErrTransactionConflict   = errors.New("conflicto de escritura concurrente, reintente")
	ErrMovementVoided        = errors.New("el movimiento ya fue anulado")
	ErrMovementNotReversible = errors.New("el movimiento no admite reversión")
)
