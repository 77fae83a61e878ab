// Package pdf genera el comprobante de venta (recibo) en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la tienda  │  N° Recibo + Fecha           │
//	│  CLIENTE / CAJERO                                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total / Pagado / Saldo / Estado                    │
//	│  ABONOS (ventas a crédito)                                   │
//	│  FOOTER: QR con el N° de recibo                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptPDFGenerator genera recibos con Maroto v2.
type ReceiptPDFGenerator struct {
	storeName string
	printer   *message.Printer
}

// NewReceiptPDFGenerator construye el generador. Los montos se formatean en español (separador de miles ".").
func NewReceiptPDFGenerator(storeName string) *ReceiptPDFGenerator {
	if storeName == "" {
		storeName = "Inventario POS"
	}
	return &ReceiptPDFGenerator{storeName: storeName, printer: message.NewPrinter(language.Spanish)}
}

// GenerateReceiptPDF genera el PDF del recibo y devuelve sus bytes.
func (g *ReceiptPDFGenerator) GenerateReceiptPDF(
	_ context.Context,
	detail *reports.ReceiptDetail,
	payments []*entity.CreditPayment,
) ([]byte, error) {
	if detail == nil {
		return nil, fmt.Errorf("pdf: recibo vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Recibo "+detail.ReceiptID, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(detail))
	m.AddRows(partyRow(detail.Sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(detail.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(detail))
	if len(payments) > 0 {
		m.AddRows(g.paymentRows(payments)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(detail.ReceiptID))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *ReceiptPDFGenerator) headerRow(detail *reports.ReceiptDetail) core.Row {
	fecha := "-"
	if detail.Sale != nil {
		fecha = detail.Sale.Date.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("RECIBO DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(detail.ReceiptID, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func partyRow(sale *entity.SalesTransaction) core.Row {
	customer, cashier, kind := "Consumidor final", "-", "CONTADO"
	if sale != nil {
		customer = nonEmpty(sale.CustomerName, customer)
		cashier = nonEmpty(sale.CreatedBy, cashier)
		if sale.IsCredit {
			kind = "CRÉDITO"
		}
	}
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Cliente: %s   |   Cajero: %s   |   Venta: %s", customer, cashier, kind),
				props.Text{Size: 8, Top: 3, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

// itemRows una fila por línea; las anuladas y devueltas se anotan bajo el producto.
func (g *ReceiptPDFGenerator) itemRows(items []reports.ReceiptItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := nonEmpty(it.ProductName, it.ProductID)
		note := ""
		switch {
		case it.Voided:
			note = "ANULADA: " + it.VoidReason
		case it.Returned.IsPositive():
			note = "Devuelto: " + g.quantity(it.Returned)
		}
		desc := text.New(name, props.Text{Size: 8, Top: 1, Left: 1})
		descCol := col.New(5).Add(desc)
		if note != "" {
			descCol = col.New(5).Add(desc, text.New(note, props.Text{Size: 6.5, Top: 5, Left: 1, Color: colorRed}))
		}
		rows = append(rows, row.New(9).Add(
			col.New(2).Add(text.New(g.quantity(it.Net), props.Text{Size: 8, Align: align.Center, Top: 1})),
			descCol,
			col.New(2).Add(text.New(g.Money(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.Money(it.LineTotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func (g *ReceiptPDFGenerator) totalsRow(detail *reports.ReceiptDetail) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}

	total, paid, balance, status := detail.Total, detail.Total, decimal.Zero, string(entity.PaymentStatusPaid)
	if s := detail.Sale; s != nil {
		total, paid, balance, status = s.TotalAmount, s.PaidAmount, s.RemainingBalance(), string(s.Status)
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("TOTAL:", 0),
			label("Pagado:", 6),
			label("Saldo:", 12),
			label("Estado:", 18),
		),
		col.New(3).Add(
			text.New(g.Money(total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Color: colorPrimary}),
			value(g.Money(paid), 6),
			value(g.Money(balance), 12),
			value(status, 18),
		),
	)
}

func (g *ReceiptPDFGenerator) paymentRows(payments []*entity.CreditPayment) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("ABONOS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
		)),
	}
	for _, p := range payments {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(p.PaidAt.Format("02/01/2006 15:04"), props.Text{Size: 7.5, Color: colorGray})),
			col.New(5).Add(text.New(p.Note, props.Text{Size: 7.5, Color: colorGray})),
			col.New(3).Add(text.New(g.Money(p.Amount), props.Text{Size: 7.5, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

func footerRow(receiptID string) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(receiptID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Conserve este recibo para cambios y devoluciones.", props.Text{
				Size: 8, Top: 8, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// Money formatea un monto sin decimales con separador de miles del idioma. Ej: 1500000 → "$1.500.000".
func (g *ReceiptPDFGenerator) Money(v decimal.Decimal) string {
	return g.printer.Sprintf("$%d", v.Round(0).IntPart())
}

func (g *ReceiptPDFGenerator) quantity(v decimal.Decimal) string {
	if v.Equal(v.Truncate(0)) {
		return g.printer.Sprintf("%d", v.IntPart())
	}
	return v.StringFixed(2)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
