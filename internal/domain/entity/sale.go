package entity

import (
	"time"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/shopspring/decimal"
)

// Constantes de venta.
const (
	DefaultTaxPercent   = 16
	MaxQuantityPerLine  = 9999
	DefaultCurrencyCode = "VES"
)

// MinSaleAmount total mínimo aceptado para persistir una venta.
var MinSaleAmount = decimal.RequireFromString("0.01")

// Totals agrupa los montos derivados de un conjunto de líneas.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals calcula subtotal, impuesto y total = max(0, subtotal + impuesto − descuento).
// Lo usan tanto el carrito como la venta para que ambos coincidan siempre.
func ComputeTotals(lineSubtotals []decimal.Decimal, taxPercent, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, s := range lineSubtotals {
		subtotal = subtotal.Add(s)
	}
	tax := subtotal.Mul(taxPercent).Div(hundred).Round(2)
	total := subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{Subtotal: subtotal, Tax: tax, Discount: discount, Total: total}
}

// Sale venta finalizada. Solo se crea desde el checkout; los totales se recalculan siempre desde Items.
type Sale struct {
	ID               int64
	ExternalID       string // uuid estable para exportaciones y recibos
	ReceiptNumber    string // REC-YYYYMMDD-NNNN
	SaleDate         time.Time
	Items            []SaleItem
	Subtotal         decimal.Decimal
	TaxPercent       decimal.Decimal
	TaxAmount        decimal.Decimal
	DiscountAmount   decimal.Decimal
	Total            decimal.Decimal
	ExchangeRate     decimal.Decimal
	CurrencyCode     string
	PaymentMethod    PaymentMethod
	CustomerName     string
	CustomerPhone    string
	CustomerDocument string
	Status           SaleStatus
	Notes            string
	CashierName      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CalculateTotals recalcula los montos a partir de los items (nunca se confía en los del caller).
func (s *Sale) CalculateTotals() {
	subtotals := make([]decimal.Decimal, 0, len(s.Items))
	for i := range s.Items {
		s.Items[i].Subtotal = s.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(s.Items[i].Quantity)))
		subtotals = append(subtotals, s.Items[i].Subtotal)
	}
	t := ComputeTotals(subtotals, s.TaxPercent, s.DiscountAmount)
	s.Subtotal = t.Subtotal
	s.TaxAmount = t.Tax
	s.Total = t.Total
}

// Validate: al menos un item y total >= MinSaleAmount.
func (s *Sale) Validate() error {
	if len(s.Items) == 0 {
		return domain.NewValidationError("items", "la venta debe tener al menos un item")
	}
	for _, it := range s.Items {
		if it.Quantity <= 0 {
			return domain.NewValidationError("items.quantity", "la cantidad debe ser mayor a cero")
		}
	}
	if s.Total.LessThan(MinSaleAmount) {
		return domain.NewValidationError("total", "el total de la venta es inválido")
	}
	return nil
}

// CanBeCancelled: solo desde Pending o Completed.
func (s *Sale) CanBeCancelled() bool { return s.Status.CanTransitionTo(SaleStatusCancelled) }

// CanBeRefunded: solo desde Completed.
func (s *Sale) CanBeRefunded() bool { return s.Status.CanTransitionTo(SaleStatusRefunded) }

// TotalQuantity unidades vendidas en la venta.
func (s *Sale) TotalQuantity() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// TotalInUSD convierte el total con la tasa guardada en la venta.
func (s *Sale) TotalInUSD() decimal.Decimal {
	if !s.ExchangeRate.IsPositive() {
		return decimal.Zero
	}
	return s.Total.Div(s.ExchangeRate).Round(2)
}
