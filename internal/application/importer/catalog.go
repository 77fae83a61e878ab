// Package importer carga un catálogo CSV (categorías, productos y existencias iniciales).
// El stock inicial entra como recepción por el libro de existencias, nunca escribiendo
// la cantidad del producto directamente.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Columnas esperadas en la cabecera (en cualquier orden).
const (
	colSKU      = "sku"
	colName     = "name"
	colCategory = "category"
	colCost     = "cost_price"
	colPrice    = "selling_price"
	colQuantity = "quantity"
)

var requiredColumns = []string{colSKU, colName, colCost, colPrice, colQuantity}

// Receiver recepción de mercancía (implementado por ledger.Engine).
type Receiver interface {
	Receive(ctx context.Context, actor ledger.Actor, in ledger.ReceiveInput) (*ledger.ReceiveResult, error)
	ReceiveInvoice(ctx context.Context, actor ledger.Actor, in ledger.ReceiveInvoiceInput) ([]*ledger.ReceiveResult, error)
}

// Options formato del archivo.
type Options struct {
	Latin1    bool // el archivo viene en ISO-8859-1 (exportaciones de Excel en español)
	Separator rune // 0 = ','
	InvoiceID string // si se indica, todo el stock entra como una sola factura al final
}

// Summary resultado de la importación.
type Summary struct {
	Rows       int
	Categories int
	Products   int
	Received   int
	Skipped    []string // "línea N: motivo"
}

// CatalogImporter crea categorías y productos faltantes y recibe el stock inicial.
type CatalogImporter struct {
	products   *usecase.ProductUseCase
	categories *usecase.CategoryUseCase
	reads      repository.Stores
	ledger     Receiver
}

// NewCatalogImporter construye el importador.
func NewCatalogImporter(products *usecase.ProductUseCase, categories *usecase.CategoryUseCase, reads repository.Stores, l Receiver) *CatalogImporter {
	return &CatalogImporter{products: products, categories: categories, reads: reads, ledger: l}
}

// Import procesa el CSV fila por fila. Una fila inválida se omite y se reporta; un error
// de infraestructura detiene la importación.
func (im *CatalogImporter) Import(ctx context.Context, actor ledger.Actor, r io.Reader, opts Options) (*Summary, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	if opts.Separator != 0 {
		cr.Comma = opts.Separator
	}

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	sum := &Summary{}
	var invoiceLines []ledger.InvoiceLine
	categoryIDs := make(map[string]string)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("línea %d: %w", line, err)
		}
		sum.Rows++
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		row, reason := parseRow(field)
		if reason != "" {
			sum.Skipped = append(sum.Skipped, fmt.Sprintf("línea %d: %s", line, reason))
			continue
		}

		categoryID := ""
		if name := field(colCategory); name != "" {
			categoryID, err = im.ensureCategory(ctx, name, categoryIDs, sum)
			if err != nil {
				return sum, fmt.Errorf("línea %d: %w", line, err)
			}
		}
		productID, err := im.ensureProduct(ctx, row, categoryID, sum)
		if err != nil {
			return sum, fmt.Errorf("línea %d: %w", line, err)
		}
		if !row.quantity.IsPositive() {
			continue
		}
		if opts.InvoiceID != "" {
			invoiceLines = append(invoiceLines, ledger.InvoiceLine{
				ProductID:    productID,
				Quantity:     row.quantity,
				CostPrice:    row.cost,
				SellingPrice: row.price,
			})
			continue
		}
		if _, err := im.ledger.Receive(ctx, actor, ledger.ReceiveInput{
			ProductID:    productID,
			Quantity:     row.quantity,
			CostPrice:    row.cost,
			SellingPrice: row.price,
		}); err != nil {
			return sum, fmt.Errorf("línea %d: recibir %s: %w", line, row.sku, err)
		}
		sum.Received++
	}

	if len(invoiceLines) > 0 {
		results, err := im.ledger.ReceiveInvoice(ctx, actor, ledger.ReceiveInvoiceInput{
			InvoiceID: opts.InvoiceID,
			Lines:     invoiceLines,
		})
		if err != nil {
			return sum, fmt.Errorf("factura %s: %w", opts.InvoiceID, err)
		}
		sum.Received += len(results)
	}
	return sum, nil
}

type catalogRow struct {
	sku, name             string
	cost, price, quantity decimal.Decimal
}

func parseRow(field func(string) string) (catalogRow, string) {
	row := catalogRow{sku: field(colSKU), name: field(colName)}
	if row.sku == "" || row.name == "" {
		return row, "sku y name son obligatorios"
	}
	var err error
	if row.cost, err = parseDecimal(field(colCost)); err != nil {
		return row, "cost_price inválido"
	}
	if row.price, err = parseDecimal(field(colPrice)); err != nil {
		return row, "selling_price inválido"
	}
	if row.quantity, err = parseDecimal(field(colQuantity)); err != nil {
		return row, "quantity inválido"
	}
	if row.cost.IsNegative() || row.price.IsNegative() || row.quantity.IsNegative() {
		return row, "valores negativos"
	}
	return row, ""
}

// parseDecimal acepta coma decimal ("1500,50") además de punto. Vacío = 0.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func (im *CatalogImporter) ensureCategory(ctx context.Context, name string, cache map[string]string, sum *Summary) (string, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}
	existing, err := im.reads.Categories.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		cache[key] = existing.ID
		return existing.ID, nil
	}
	created, err := im.categories.Create(ctx, dto.CreateCategoryRequest{Name: name})
	if err != nil {
		return "", err
	}
	sum.Categories++
	cache[key] = created.ID
	return created.ID, nil
}

func (im *CatalogImporter) ensureProduct(ctx context.Context, row catalogRow, categoryID string, sum *Summary) (string, error) {
	existing, err := im.reads.Products.GetBySKU(ctx, row.sku)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	created, err := im.products.Create(ctx, dto.CreateProductRequest{
		SKU:          row.sku,
		Name:         row.name,
		CategoryID:   categoryID,
		SellingPrice: row.price,
	})
	if err != nil {
		return "", err
	}
	sum.Products++
	return created.ID, nil
}
