package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRequest rango de fechas [From, To) para reportes; Limit acota los rankings.
type ReportRequest struct {
	From  time.Time `json:"from" validate:"required"`
	To    time.Time `json:"to" validate:"required,gtfield=From"`
	Limit int       `json:"limit" validate:"gte=0,max=500"`
}

// SalesSummary resumen del período. Solo las ventas completadas suman ingresos.
type SalesSummary struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	CompletedCount int             `json:"completed_count"`
	CancelledCount int             `json:"cancelled_count"`
	RefundedCount  int             `json:"refunded_count"`
	UnitsSold      int             `json:"units_sold"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Revenue        decimal.Decimal `json:"revenue"`
	RevenueUSD     decimal.Decimal `json:"revenue_usd"`
	AverageTicket  decimal.Decimal `json:"average_ticket"`
	ByPayment      []PaymentTotal  `json:"by_payment"`
}

// PaymentTotal ingresos por método de pago.
type PaymentTotal struct {
	PaymentMethod string          `json:"payment_method"`
	Count         int             `json:"count"`
	Total         decimal.Decimal `json:"total"`
}

// TopProduct producto en el ranking por unidades vendidas.
type TopProduct struct {
	Rank        int             `json:"rank"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DailyTotal ventas completadas de un día (fecha local).
type DailyTotal struct {
	Date      string          `json:"date"` // YYYY-MM-DD
	SaleCount int             `json:"sale_count"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ProductSales ventas de un producto en el período.
type ProductSales struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	SaleCount   int             `json:"sale_count"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SalesReport agrupa todo lo que se exporta a CSV/XLSX/PDF.
type SalesReport struct {
	Summary     SalesSummary   `json:"summary"`
	TopProducts []TopProduct   `json:"top_products"`
	Daily       []DailyTotal   `json:"daily"`
	Sales       []SaleResponse `json:"sales"`
}

// ExchangeRateResponse tasa vigente y su variación respecto a la anterior.
type ExchangeRateResponse struct {
	Rate          decimal.Decimal `json:"rate"`
	Source        string          `json:"source"`
	CreatedAt     time.Time       `json:"created_at"`
	Previous      decimal.Decimal `json:"previous"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Trend         string          `json:"trend"` // up, down, stable
	Repriced      int             `json:"repriced"`
}

// UpdateRateRequest nueva tasa manual o de una fuente conocida.
type UpdateRateRequest struct {
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source" validate:"omitempty,oneof=manual bcv dolartoday binance"`
}
