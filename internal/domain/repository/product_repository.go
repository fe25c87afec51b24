package repository

import (
	"context"

	"github.com/jhoicas/vento-pos/internal/domain/entity"
)

// StockFilter filtra productos por nivel de stock.
type StockFilter int

const (
	StockAny StockFilter = iota
	StockLow             // 0 < stock <= min_stock_alert
	StockOut             // stock <= 0
)

// ProductFilter criterios de búsqueda para el catálogo. Los campos vacíos no filtran.
type ProductFilter struct {
	Active       *bool
	Category     string
	NameContains string // búsqueda parcial sin distinguir mayúsculas
	Stock        StockFilter
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get* devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// UpdateStock fija la cantidad en stock; devuelve domain.ErrNotFound si el producto no existe.
	UpdateStock(ctx context.Context, id int64, quantity int) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}
