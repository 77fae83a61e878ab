package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, COALESCE(category_id, ''), buying_price, selling_price, discount_limit, quantity, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.BuyingPrice, &p.SellingPrice,
		&p.DiscountLimit, &p.Quantity, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, category_id, buying_price, selling_price, discount_limit, quantity, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, nullIfEmpty(product.CategoryID), product.BuyingPrice,
		product.SellingPrice, product.DiscountLimit, product.Quantity, product.Active,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if _, ok := foreignKeyConstraint(err); ok {
			return fmt.Errorf("categoría inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `id = $1`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by sku", `sku = $1`, sku)
}

// GetForUpdate obtiene el producto y bloquea la fila para update (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product for update", `id = $1 FOR UPDATE`, id)
}

// Update actualiza un producto existente. No escribe quantity (se maneja vía el libro de existencias).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, category_id = $4, buying_price = $5, selling_price = $6,
			discount_limit = $7, active = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, nullIfEmpty(product.CategoryID), product.BuyingPrice,
		product.SellingPrice, product.DiscountLimit, product.Active, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateReferencePrices actualiza costo promedio y precio de referencia (usado por el motor al recibir).
func (r *ProductRepo) UpdateReferencePrices(ctx context.Context, id string, buying, selling decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET buying_price = $2, selling_price = $3, updated_at = $4 WHERE id = $1`,
		id, buying, selling, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update product prices: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidProduct
	}
	return nil
}

// AdjustQuantity aplica el delta en un solo UPDATE condicionado a no quedar negativo.
func (r *ProductRepo) AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) (*entity.Product, error) {
	query := `
		UPDATE products SET quantity = quantity + $2, updated_at = $3
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, delta, time.Now().UTC()))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adjust product quantity: %w", err)
	}
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrInvalidProduct
	}
	return nil, domain.ErrInsufficientStock
}

// SetQuantity solo para la reparación de la conciliación.
func (r *ProductRepo) SetQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET quantity = $2, updated_at = $3 WHERE id = $1`, id, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set product quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidProduct
	}
	return nil
}

// SetActive activa o desactiva (eliminación lógica) el producto.
func (r *ProductRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET active = $2, updated_at = $3 WHERE id = $1`, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos por nombre con filtros y paginación.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE ($1 OR active) AND ($2 = '' OR category_id = $2)
		ORDER BY name, id LIMIT $3 OFFSET $4`
	return r.list(ctx, "list products", query, filter.IncludeInactive, filter.CategoryID, limitArg(filter.Limit), filter.Offset)
}

// ListIDs todos los IDs de producto (conciliación).
func (r *ProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan product ids: %w", err)
	}
	return ids, nil
}

// ListLowStock productos activos con cantidad <= threshold, menor cantidad primero.
func (r *ProductRepo) ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE active AND quantity <= $1
		ORDER BY quantity, name`
	return r.list(ctx, "list low stock", query, threshold)
}

func (r *ProductRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
