package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem copia inmutable de una línea del carrito al momento de la venta.
type SaleItem struct {
	ID          int64
	SaleID      int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
	CreatedAt   time.Time
}
