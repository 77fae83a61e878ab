package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

var hundred = decimal.NewFromInt(100)

// Service proyecciones de solo lectura sobre el libro de existencias y las ventas.
// Los movimientos anulados nunca suman en ningún reporte.
type Service struct {
	reads repository.Stores
	log   *logger.Logger
}

// NewService construye el servicio de reportes.
func NewService(reads repository.Stores, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{reads: reads, log: log.Named("reports")}
}

// Page paginación de los listados.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// LowStockProducts productos activos con cantidad <= threshold.
func (s *Service) LowStockProducts(ctx context.Context, threshold decimal.Decimal) ([]*entity.Product, error) {
	if threshold.IsNegative() {
		return nil, fmt.Errorf("umbral negativo: %w", domain.ErrInvalidInput)
	}
	return s.reads.Products.ListLowStock(ctx, threshold)
}

// SalesHistory ventas del período, más reciente primero.
func (s *Service) SalesHistory(ctx context.Context, from, to time.Time, page Page) ([]*entity.SalesTransaction, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	page = page.normalize()
	return s.reads.Sales.ListByDateRange(ctx, from, to, page.Limit, page.Offset)
}

// UnpaidTransactions ventas con saldo pendiente, más antigua primero.
func (s *Service) UnpaidTransactions(ctx context.Context, page Page) ([]*entity.SalesTransaction, error) {
	page = page.normalize()
	return s.reads.Sales.ListUnpaid(ctx, page.Limit, page.Offset)
}

// ReceiptItem línea de venta de un recibo con sus devoluciones y anulación.
type ReceiptItem struct {
	MovementID  string
	ProductID   string
	ProductName string
	SKU         string
	BatchID     string
	Quantity    decimal.Decimal
	Returned    decimal.Decimal
	Net         decimal.Decimal
	UnitPrice   decimal.Decimal
	UnitCost    decimal.Decimal
	LineTotal   decimal.Decimal // Net * UnitPrice redondeado a 2 decimales
	Voided      bool
	VoidReason  string
}

// ReceiptDetail detalle de un recibo. Sale es nil si las líneas no tienen venta registrada.
type ReceiptDetail struct {
	ReceiptID string
	Sale      *entity.SalesTransaction
	Items     []ReceiptItem
	Returns   []*entity.StockMovement
	Total     decimal.Decimal // suma de LineTotal
}

// TransactionItems líneas de un recibo: cantidad neta, devuelta, anulada y total por línea.
func (s *Service) TransactionItems(ctx context.Context, receiptID string) (*ReceiptDetail, error) {
	sale, err := s.reads.Sales.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	movements, err := s.reads.Movements.QueryByReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if sale == nil && len(movements) == 0 {
		return nil, domain.ErrNotFound
	}

	names := newProductNames(s.reads.Products)
	detail := &ReceiptDetail{ReceiptID: receiptID, Sale: sale, Total: decimal.Zero}
	for _, m := range movements {
		switch m.Type {
		case entity.MovementTypeOut:
			p, err := names.get(ctx, m.ProductID)
			if err != nil {
				return nil, err
			}
			net := m.NetQuantity()
			item := ReceiptItem{
				MovementID: m.ID,
				ProductID:  m.ProductID,
				BatchID:    m.BatchID,
				Quantity:   m.Quantity,
				Returned:   m.ReturnedQuantity,
				Net:        net,
				UnitPrice:  m.UnitPrice,
				UnitCost:   m.UnitCost,
				LineTotal:  m.NetAmount(),
				Voided:     m.IsVoided,
				VoidReason: m.VoidReason,
			}
			if p != nil {
				item.ProductName, item.SKU = p.Name, p.SKU
			}
			detail.Items = append(detail.Items, item)
			detail.Total = detail.Total.Add(item.LineTotal)
		case entity.MovementTypeSalesReturn:
			if !m.IsVoided {
				detail.Returns = append(detail.Returns, m)
			}
		}
	}
	return detail, nil
}

// ProductMargin margen bruto de un producto en el período.
type ProductMargin struct {
	ProductID   string
	ProductName string
	SKU         string
	UnitsSold   decimal.Decimal
	Revenue     decimal.Decimal
	Cost        decimal.Decimal
	Profit      decimal.Decimal // Revenue - Cost
	MarginPct   decimal.Decimal // Profit / Revenue * 100
}

// MarginReport resumen de rentabilidad del período.
type MarginReport struct {
	From      time.Time
	To        time.Time
	Lines     int
	UnitsSold decimal.Decimal
	Revenue   decimal.Decimal
	Cost      decimal.Decimal
	Profit    decimal.Decimal
	MarginPct decimal.Decimal
	Products  []ProductMargin // mayor utilidad primero
}

// MarginSummary ingresos, costo y utilidad de las líneas OUT no anuladas del período,
// netas de devoluciones.
func (s *Service) MarginSummary(ctx context.Context, from, to time.Time) (*MarginReport, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	movements, err := s.reads.Movements.QueryByType(ctx, entity.MovementTypeOut, &from, &to, 0, 0)
	if err != nil {
		return nil, err
	}

	report := &MarginReport{
		From: from, To: to,
		UnitsSold: decimal.Zero, Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero, MarginPct: decimal.Zero,
	}
	byProduct := make(map[string]*ProductMargin)
	for _, m := range movements {
		net := m.NetQuantity()
		if !net.IsPositive() {
			continue
		}
		pm, ok := byProduct[m.ProductID]
		if !ok {
			pm = &ProductMargin{ProductID: m.ProductID, UnitsSold: decimal.Zero, Revenue: decimal.Zero, Cost: decimal.Zero}
			byProduct[m.ProductID] = pm
		}
		revenue := m.NetAmount()
		cost := net.Mul(m.UnitCost)
		pm.UnitsSold = pm.UnitsSold.Add(net)
		pm.Revenue = pm.Revenue.Add(revenue)
		pm.Cost = pm.Cost.Add(cost)

		report.Lines++
		report.UnitsSold = report.UnitsSold.Add(net)
		report.Revenue = report.Revenue.Add(revenue)
		report.Cost = report.Cost.Add(cost)
	}
	report.Profit = report.Revenue.Sub(report.Cost)
	report.MarginPct = marginPct(report.Profit, report.Revenue)

	names := newProductNames(s.reads.Products)
	for _, pm := range byProduct {
		p, err := names.get(ctx, pm.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			pm.ProductName, pm.SKU = p.Name, p.SKU
		}
		pm.Profit = pm.Revenue.Sub(pm.Cost)
		pm.MarginPct = marginPct(pm.Profit, pm.Revenue)
		report.Products = append(report.Products, *pm)
	}
	sort.Slice(report.Products, func(i, j int) bool {
		a, b := report.Products[i], report.Products[j]
		if !a.Profit.Equal(b.Profit) {
			return a.Profit.GreaterThan(b.Profit)
		}
		return a.ProductID < b.ProductID
	})
	return report, nil
}

// StockCardEntry un movimiento de la tarjeta de existencias con su efecto firmado.
type StockCardEntry struct {
	Movement *entity.StockMovement
	Delta    decimal.Decimal // positivo entra, negativo sale
}

// StockCard historial de movimientos no anulados del producto, en orden cronológico.
func (s *Service) StockCard(ctx context.Context, productID string, from, to *time.Time, page Page) ([]StockCardEntry, error) {
	p, err := s.reads.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if from != nil && to != nil {
		if err := checkRange(*from, *to); err != nil {
			return nil, err
		}
	}
	page = page.normalize()
	movements, err := s.reads.Movements.QueryByProduct(ctx, productID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	entries := make([]StockCardEntry, 0, len(movements))
	for _, m := range movements {
		if m.IsVoided {
			continue
		}
		delta := m.Quantity
		if m.Type.Decreases() {
			delta = delta.Neg()
		}
		entries = append(entries, StockCardEntry{Movement: m, Delta: delta})
	}
	return entries, nil
}

// MovementFilter filtros del listado de movimientos. Se usa el primero presente:
// ReceiptID, ProductID, Type y, si no hay ninguno, el rango From..To.
type MovementFilter struct {
	ProductID string
	ReceiptID string
	Type      entity.MovementType
	From      *time.Time
	To        *time.Time
}

// Movements consulta el libro de movimientos, anulados incluidos.
func (s *Service) Movements(ctx context.Context, f MovementFilter, page Page) ([]*entity.StockMovement, error) {
	if f.From != nil && f.To != nil {
		if err := checkRange(*f.From, *f.To); err != nil {
			return nil, err
		}
	}
	page = page.normalize()
	switch {
	case f.ReceiptID != "":
		return s.reads.Movements.QueryByReceipt(ctx, f.ReceiptID)
	case f.ProductID != "":
		return s.reads.Movements.QueryByProduct(ctx, f.ProductID, f.From, f.To, page.Limit, page.Offset)
	case f.Type != "":
		if !f.Type.IsValid() {
			return nil, fmt.Errorf("tipo de movimiento %q: %w", f.Type, domain.ErrInvalidInput)
		}
		return s.reads.Movements.QueryByType(ctx, f.Type, f.From, f.To, page.Limit, page.Offset)
	case f.From != nil && f.To != nil:
		return s.reads.Movements.QueryByDateRange(ctx, *f.From, *f.To, page.Limit, page.Offset)
	}
	return nil, fmt.Errorf("se requiere receipt_id, product_id, type o rango de fechas: %w", domain.ErrInvalidInput)
}

// ProductBatches todos los lotes del producto, más reciente primero.
func (s *Service) ProductBatches(ctx context.Context, productID string) ([]*entity.StockBatch, error) {
	p, err := s.reads.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return s.reads.Batches.ListByProduct(ctx, productID)
}

func checkRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return fmt.Errorf("rango de fechas inválido: %w", domain.ErrInvalidInput)
	}
	return nil
}

func marginPct(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred).Round(2)
}

// productNames cachea las lecturas de producto de un mismo reporte.
type productNames struct {
	repo  repository.ProductRepository
	cache map[string]*entity.Product
}

func newProductNames(repo repository.ProductRepository) *productNames {
	return &productNames{repo: repo, cache: make(map[string]*entity.Product)}
}

func (n *productNames) get(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := n.cache[id]; ok {
		return p, nil
	}
	p, err := n.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n.cache[id] = p
	return p, nil
}
