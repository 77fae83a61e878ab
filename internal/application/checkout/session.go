package checkout

import (
	"sync"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/shopspring/decimal"
)

// Line línea del carrito. UnitPrice nil = precio del lote (con su descuento si aplica).
type Line struct {
	ProductID       string
	Quantity        decimal.Decimal
	UnitPrice       *decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Session carrito en memoria de una caja. Seguro para uso concurrente.
type Session struct {
	mu           sync.Mutex
	lines        []Line
	discountCode string
	customerName string
	isCredit     bool
	upfront      decimal.Decimal
	tendered     decimal.Decimal
}

// NewSession crea un carrito vacío.
func NewSession() *Session {
	return &Session{}
}

// Add agrega unidades de un producto; si ya está en el carrito suma la cantidad.
func (s *Session) Add(productID string, qty decimal.Decimal) error {
	if productID == "" {
		return domain.ErrInvalidInput
	}
	if !qty.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = s.lines[i].Quantity.Add(qty)
			return nil
		}
	}
	s.lines = append(s.lines, Line{ProductID: productID, Quantity: qty})
	return nil
}

// SetQuantity fija la cantidad de una línea; cero la elimina.
func (s *Session) SetQuantity(productID string, qty decimal.Decimal) error {
	if qty.IsNegative() {
		return domain.ErrInvalidQuantity
	}
	if qty.IsZero() {
		return s.Remove(productID)
	}
	return s.update(productID, func(l *Line) { l.Quantity = qty })
}

// SetPrice fija un precio manual para la línea.
func (s *Session) SetPrice(productID string, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.ErrInvalidInput
	}
	return s.update(productID, func(l *Line) { l.UnitPrice = &price })
}

// SetLineDiscount porcentaje de descuento de la línea (validado contra el producto al cobrar).
func (s *Session) SetLineDiscount(productID string, percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidInput
	}
	return s.update(productID, func(l *Line) { l.DiscountPercent = percent })
}

// Remove quita la línea del producto.
func (s *Session) Remove(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// SetDiscountCode código de descuento que activa el descuento de los lotes que lo tengan.
func (s *Session) SetDiscountCode(code string) {
	s.mu.Lock()
	s.discountCode = code
	s.mu.Unlock()
}

// SetCustomer datos de la venta: cliente, crédito y abono inicial.
func (s *Session) SetCustomer(name string, credit bool, upfront decimal.Decimal) {
	s.mu.Lock()
	s.customerName = name
	s.isCredit = credit
	s.upfront = upfront
	s.mu.Unlock()
}

// SetTendered efectivo recibido en una venta de contado.
func (s *Session) SetTendered(amount decimal.Decimal) {
	s.mu.Lock()
	s.tendered = amount
	s.mu.Unlock()
}

// Lines copia de las líneas actuales.
func (s *Session) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Request construye la solicitud de cobro con el estado actual del carrito.
func (s *Session) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return Request{
		Lines:          lines,
		DiscountCode:   s.discountCode,
		CustomerName:   s.customerName,
		IsCredit:       s.isCredit,
		UpfrontPayment: s.upfront,
		Tendered:       s.tendered,
	}
}

// Clear vacía el carrito (después de un cobro exitoso).
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.discountCode = ""
	s.customerName = ""
	s.isCredit = false
	s.upfront = decimal.Zero
	s.tendered = decimal.Zero
}

func (s *Session) update(productID string, fn func(*Line)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			fn(&s.lines[i])
			return nil
		}
	}
	return domain.ErrNotFound
}
