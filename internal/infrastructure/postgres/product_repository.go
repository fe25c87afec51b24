package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, barcode, name, description, category, cost_usd, cost_local,
	margin_percent, sale_price, stock_quantity, min_stock_alert, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q   Querier
	now func() time.Time
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q, now: time.Now}
}

// Create persiste un nuevo producto y asigna su ID.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (sku, barcode, name, description, category, cost_usd, cost_local,
			margin_percent, sale_price, stock_quantity, min_stock_alert, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		nullable(p.SKU), nullable(p.Barcode), p.Name, p.Description, p.Category,
		p.CostUSD, p.CostLocal, p.MarginPercent, p.SalePrice,
		p.StockQuantity, p.MinStockAlert, p.IsActive, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	).Scan(&p.ID)
	if err != nil {
		return mapError("insert product", err)
	}
	return nil
}

// Update reemplaza todos los campos editables del producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, barcode = $3, name = $4, description = $5, category = $6,
			cost_usd = $7, cost_local = $8, margin_percent = $9, sale_price = $10,
			stock_quantity = $11, min_stock_alert = $12, is_active = $13, updated_at = $14
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, nullable(p.SKU), nullable(p.Barcode), p.Name, p.Description, p.Category,
		p.CostUSD, p.CostLocal, p.MarginPercent, p.SalePrice,
		p.StockQuantity, p.MinStockAlert, p.IsActive, p.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.one(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if sku == "" {
		return nil, nil
	}
	return r.one(ctx, "get product by sku", `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.one(ctx, "get product by barcode", `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)
}

func (r *ProductRepo) one(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return p, nil
}

// List devuelve los productos que cumplen el filtro, ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Active != nil {
		where = append(where, "is_active = "+arg(*filter.Active))
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if filter.NameContains != "" {
		where = append(where, "LOWER(name) LIKE "+arg("%"+strings.ToLower(filter.NameContains)+"%"))
	}
	switch filter.Stock {
	case repository.StockLow:
		where = append(where, "stock_quantity > 0 AND stock_quantity <= min_stock_alert")
	case repository.StockOut:
		where = append(where, "stock_quantity <= 0")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list products", err)
	}
	return list, nil
}

// UpdateStock fija el stock; domain.ErrNotFound si el producto no existe.
func (r *ProductRepo) UpdateStock(ctx context.Context, id int64, quantity int) error {
	return r.exec(ctx, "update stock",
		`UPDATE products SET stock_quantity = $2, updated_at = $3 WHERE id = $1`, id, quantity, r.now().UTC())
}

// SetActive alta/baja lógica.
func (r *ProductRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, "set active",
		`UPDATE products SET is_active = $2, updated_at = $3 WHERE id = $1`, id, active, r.now().UTC())
}

// Delete borra el producto. Falla si alguna venta lo referencia (FK).
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete product", `DELETE FROM products WHERE id = $1`, id)
}

func (r *ProductRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapError(op, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Categories categorías distintas no vacías, en orden alfabético.
func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category ASC`)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError("list categories", err)
	}
	return out, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p            entity.Product
		sku, barcode *string
	)
	err := row.Scan(&p.ID, &sku, &barcode, &p.Name, &p.Description, &p.Category,
		&p.CostUSD, &p.CostLocal, &p.MarginPercent, &p.SalePrice,
		&p.StockQuantity, &p.MinStockAlert, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.SKU = deref(sku)
	p.Barcode = deref(barcode)
	return &p, nil
}
