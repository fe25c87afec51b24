package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest datos del cliente y pago para cerrar la venta del carrito.
type CheckoutRequest struct {
	PaymentMethod    string `json:"payment_method" validate:"omitempty,oneof=cash card transfer mobile mixed credit"`
	CustomerName     string `json:"customer_name" validate:"max=200"`
	CustomerPhone    string `json:"customer_phone" validate:"max=50"`
	CustomerDocument string `json:"customer_document" validate:"max=50"`
	Notes            string `json:"notes" validate:"max=1000"`
	CashierName      string `json:"cashier_name" validate:"max=100"`
}

// CheckoutResult resultado del checkout para la capa de presentación.
// Err conserva el error tipado; Kind y Message lo resumen.
type CheckoutResult struct {
	Success       bool            `json:"success"`
	SaleID        int64           `json:"sale_id,omitempty"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Kind          string          `json:"error_kind,omitempty"`
	Message       string          `json:"message,omitempty"`
	Err           error           `json:"-"`
}

// SaleItemResponse línea de una venta.
type SaleItemResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta con sus items.
type SaleResponse struct {
	ID               int64              `json:"id"`
	ExternalID       string             `json:"external_id"`
	ReceiptNumber    string             `json:"receipt_number"`
	SaleDate         time.Time          `json:"sale_date"`
	Items            []SaleItemResponse `json:"items"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	TaxPercent       decimal.Decimal    `json:"tax_percent"`
	TaxAmount        decimal.Decimal    `json:"tax_amount"`
	DiscountAmount   decimal.Decimal    `json:"discount_amount"`
	Total            decimal.Decimal    `json:"total"`
	TotalUSD         decimal.Decimal    `json:"total_usd"`
	ExchangeRate     decimal.Decimal    `json:"exchange_rate"`
	CurrencyCode     string             `json:"currency_code"`
	PaymentMethod    string             `json:"payment_method"`
	CustomerName     string             `json:"customer_name"`
	CustomerPhone    string             `json:"customer_phone"`
	CustomerDocument string             `json:"customer_document"`
	Status           string             `json:"status"`
	Notes            string             `json:"notes"`
	CashierName      string             `json:"cashier_name"`
}
