package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/lock"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

var seedActor = ledger.Actor{UserID: "seed"}

func newImporter(t *testing.T) (*CatalogImporter, repository.Stores) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Stores()
	engine := ledger.NewEngine(store, repos, lock.NewKeyedMutex(time.Second), logger.Nop(), ledger.Config{})
	im := NewCatalogImporter(
		usecase.NewProductUseCase(repos.Products, repos.Categories),
		usecase.NewCategoryUseCase(repos.Categories),
		repos, engine,
	)
	return im, repos
}

func TestImport_Latin1ConPuntoYComa(t *testing.T) {
	im, repos := newImporter(t)
	csv := "sku;name;category;cost_price;selling_price;quantity\n" +
		"AZ-1;Azúcar morena;Víveres;2500,50;3200;12\n" +
		"AR-1;Arroz;Víveres;1800;2400;0\n" +
		";Sin sku;Víveres;1;1;1\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(csv)
	require.NoError(t, err)

	sum, err := im.Import(context.Background(), seedActor, strings.NewReader(latin1), Options{Latin1: true, Separator: ';'})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 1, sum.Categories)
	assert.Equal(t, 2, sum.Products)
	assert.Equal(t, 1, sum.Received)
	require.Len(t, sum.Skipped, 1)
	assert.Contains(t, sum.Skipped[0], "línea 4")

	p, err := repos.Products.GetBySKU(context.Background(), "AZ-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Azúcar morena", p.Name)
	assert.True(t, p.Quantity.Equal(decimal.NewFromInt(12)))

	batches, err := repos.Batches.ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "2500.5", batches[0].CostPrice.String())

	c, err := repos.Categories.GetByName(context.Background(), "Víveres")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, c.ID, p.CategoryID)
}

func TestImport_ReimportarSumaStockSinDuplicarProducto(t *testing.T) {
	im, repos := newImporter(t)
	csv := "sku,name,cost_price,selling_price,quantity\nL-1,Leche,50,80,5\n"

	for i := 0; i < 2; i++ {
		_, err := im.Import(context.Background(), seedActor, strings.NewReader(csv), Options{})
		require.NoError(t, err)
	}
	p, err := repos.Products.GetBySKU(context.Background(), "L-1")
	require.NoError(t, err)
	assert.True(t, p.Quantity.Equal(decimal.NewFromInt(10)))
}

func TestImport_FacturaUnicaYNoRepetible(t *testing.T) {
	im, repos := newImporter(t)
	csv := "sku,name,cost_price,selling_price,quantity\nL-1,Leche,50,80,5\nP-1,Pan,10,15,20\n"

	sum, err := im.Import(context.Background(), seedActor, strings.NewReader(csv), Options{InvoiceID: "FAC-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Received)

	p, err := repos.Products.GetBySKU(context.Background(), "P-1")
	require.NoError(t, err)
	assert.True(t, p.Quantity.Equal(decimal.NewFromInt(20)))

	_, err = im.Import(context.Background(), seedActor, strings.NewReader(csv), Options{InvoiceID: "FAC-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoice)
}

func TestImport_FaltaColumna(t *testing.T) {
	im, _ := newImporter(t)
	_, err := im.Import(context.Background(), seedActor, strings.NewReader("sku,name\nA,B\n"), Options{})
	assert.ErrorContains(t, err, "cost_price")
}
