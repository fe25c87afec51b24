package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El precio de venta no se
// recibe: se deriva de CostUSD, la tasa vigente y el margen.
type CreateProductRequest struct {
	SKU           string           `json:"sku" validate:"omitempty,max=100"`
	Barcode       string           `json:"barcode" validate:"omitempty,max=100"`
	Name          string           `json:"name" validate:"required,min=1,max=200"`
	Description   string           `json:"description" validate:"max=1000"`
	Category      string           `json:"category" validate:"max=100"`
	CostUSD       decimal.Decimal  `json:"cost_usd" validate:"dgte0"`
	MarginPercent *decimal.Decimal `json:"margin_percent" validate:"omitempty,dgte0"`
	StockQuantity int              `json:"stock_quantity" validate:"gte=0"`
	MinStockAlert *int             `json:"min_stock_alert" validate:"omitempty,gte=0"`
}

// UpdateProductRequest entrada para actualizar un producto; los campos nil no cambian.
type UpdateProductRequest struct {
	SKU           *string          `json:"sku" validate:"omitempty,max=100"`
	Barcode       *string          `json:"barcode" validate:"omitempty,max=100"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" validate:"omitempty,max=1000"`
	Category      *string          `json:"category" validate:"omitempty,max=100"`
	CostUSD       *decimal.Decimal `json:"cost_usd" validate:"omitempty,dgte0"`
	MarginPercent *decimal.Decimal `json:"margin_percent" validate:"omitempty,dgte0"`
	MinStockAlert *int             `json:"min_stock_alert" validate:"omitempty,gte=0"`
	IsActive      *bool            `json:"is_active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	CostUSD       decimal.Decimal `json:"cost_usd"`
	CostLocal     decimal.Decimal `json:"cost_local"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockAlert int             `json:"min_stock_alert"`
	StockStatus   string          `json:"stock_status"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CatalogCounts contadores del catálogo para el tablero.
type CatalogCounts struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}
