package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/shopspring/decimal"
)

// Valores por defecto del catálogo.
const (
	DefaultMarginPercent = 30
	DefaultMinStockAlert = 5
)

// Estado de stock de un producto (para listados y reportes).
const (
	StockStatusOK  = "ok"
	StockStatusLow = "low"
	StockStatusOut = "out"
)

var hundred = decimal.NewFromInt(100)

// Product representa un producto del catálogo con su stock.
// SalePrice es siempre derivado: CostLocal = CostUSD × tasa, SalePrice = CostLocal × (1 + Margin/100).
type Product struct {
	ID            int64
	SKU           string // opcional, único
	Barcode       string // opcional, único
	Name          string
	Description   string
	Category      string
	CostUSD       decimal.Decimal
	CostLocal     decimal.Decimal
	MarginPercent decimal.Decimal
	SalePrice     decimal.Decimal
	StockQuantity int
	MinStockAlert int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProduct crea un producto activo con margen y alerta de stock por defecto.
func NewProduct(name string, costUSD decimal.Decimal, stock int) *Product {
	return &Product{
		Name:          name,
		CostUSD:       costUSD,
		MarginPercent: decimal.NewFromInt(DefaultMarginPercent),
		StockQuantity: stock,
		MinStockAlert: DefaultMinStockAlert,
		IsActive:      true,
	}
}

// ApplyExchangeRate recalcula CostLocal y SalePrice con la tasa indicada.
func (p *Product) ApplyExchangeRate(rate decimal.Decimal) {
	p.CostLocal = p.CostUSD.Mul(rate)
	p.SalePrice = p.CostLocal.Mul(decimal.NewFromInt(1).Add(p.MarginPercent.Div(hundred))).Round(2)
}

// ProfitAmount ganancia unitaria en moneda local.
func (p *Product) ProfitAmount() decimal.Decimal {
	return p.SalePrice.Sub(p.CostLocal)
}

// IsLowStock: 0 < stock <= alerta mínima.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity > 0 && p.StockQuantity <= p.MinStockAlert
}

// IsOutOfStock: stock agotado.
func (p *Product) IsOutOfStock() bool {
	return p.StockQuantity <= 0
}

// StockStatus devuelve "out", "low" u "ok".
func (p *Product) StockStatus() string {
	switch {
	case p.IsOutOfStock():
		return StockStatusOut
	case p.IsLowStock():
		return StockStatusLow
	default:
		return StockStatusOK
	}
}

// Validate verifica los invariantes del producto antes de persistirlo.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.NewValidationError("name", "el nombre es requerido")
	}
	if p.CostUSD.IsNegative() {
		return domain.NewValidationError("cost_usd", "el costo USD no puede ser negativo")
	}
	if p.MarginPercent.IsNegative() {
		return domain.NewValidationError("margin_percent", "el margen no puede ser negativo")
	}
	if p.StockQuantity < 0 {
		return domain.NewValidationError("stock_quantity", "el stock no puede ser negativo")
	}
	if p.MinStockAlert < 0 {
		return domain.NewValidationError("min_stock_alert", "la alerta de stock no puede ser negativa")
	}
	return nil
}
