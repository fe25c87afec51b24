package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"gorm.io/gorm"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre SQLite (usable con la DB o una tx).
type ProductRepo struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProductRepository construye el adaptador. Pasar la DB o la tx de gorm.
func NewProductRepository(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db, now: time.Now}
}

// Create persiste un nuevo producto y asigna su ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	m := toProductModel(product)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return mapError("insert product", err)
	}
	product.ID = m.ID
	return nil
}

// Update reemplaza todos los campos editables del producto.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	m := toProductModel(product)
	res := r.db.WithContext(ctx).Model(m).Select("*").Omit("id", "created_at").Updates(m)
	if res.Error != nil {
		return mapError("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.first(ctx, "get product", "id = ?", id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if sku == "" {
		return nil, nil
	}
	return r.first(ctx, "get product by sku", "sku = ?", sku)
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.first(ctx, "get product by barcode", "barcode = ?", barcode)
}

func (r *ProductRepo) first(ctx context.Context, op, cond string, arg any) (*entity.Product, error) {
	var m productModel
	err := r.db.WithContext(ctx).Where(cond, arg).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return m.toEntity(), nil
}

// List devuelve los productos que cumplen el filtro, ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	q := r.db.WithContext(ctx).Model(&productModel{})
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.NameContains != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.NameContains)+"%")
	}
	switch filter.Stock {
	case repository.StockLow:
		q = q.Where("stock_quantity > 0 AND stock_quantity <= min_stock_alert")
	case repository.StockOut:
		q = q.Where("stock_quantity <= 0")
	}

	var rows []productModel
	if err := q.Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, mapError("list products", err)
	}
	out := make([]*entity.Product, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out, nil
}

// UpdateStock fija el stock; domain.ErrNotFound si el producto no existe.
func (r *ProductRepo) UpdateStock(ctx context.Context, id int64, quantity int) error {
	return r.updateColumns(ctx, "update stock", id, map[string]any{"stock_quantity": quantity})
}

// SetActive alta/baja lógica.
func (r *ProductRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return r.updateColumns(ctx, "set active", id, map[string]any{"is_active": active})
}

func (r *ProductRepo) updateColumns(ctx context.Context, op string, id int64, cols map[string]any) error {
	cols["updated_at"] = r.now().UTC()
	res := r.db.WithContext(ctx).Model(&productModel{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return mapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el producto. Falla si alguna venta lo referencia (FK).
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&productModel{}, id)
	if res.Error != nil {
		return mapError("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Categories categorías distintas no vacías, en orden alfabético.
func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&productModel{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &out).Error
	if err != nil {
		return nil, mapError("list categories", err)
	}
	return out, nil
}
