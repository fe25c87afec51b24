package pos

import (
	"fmt"
	"sync"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Line línea del carrito. MaxStock es el stock conocido al momento de agregar
// el producto; el checkout lo revalida contra el almacén.
type Line struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	MaxStock    int
	Subtotal    decimal.Decimal
}

func (l *Line) recalc() {
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart venta en curso, solo en memoria. Cada línea tiene un producto distinto
// y 1 <= Quantity <= min(MaxStock, entity.MaxQuantityPerLine).
type Cart struct {
	mu         sync.Mutex
	lines      []Line
	taxPercent decimal.Decimal
	discount   decimal.Decimal
	events     *Notifier
}

// NewCart crea un carrito vacío con el IVA por defecto (16%).
func NewCart() *Cart {
	return &Cart{
		taxPercent: decimal.NewFromInt(entity.DefaultTaxPercent),
		discount:   decimal.Zero,
		events:     NewNotifier(),
	}
}

// Events notificador del carrito; el checkout publica por aquí los productos no encontrados.
func (c *Cart) Events() *Notifier { return c.events }

// Subscribe atajo de Events().Subscribe.
func (c *Cart) Subscribe(buffer int) (<-chan Event, func()) {
	return c.events.Subscribe(buffer)
}

// AddLine agrega un producto o suma cantidad a su línea existente.
// Cantidad <= 0 se trata como 1. Una línea nueva se limita a min(qty, stock, 9999);
// si la línea ya existe y la suma supera el stock o el máximo, falla sin modificarla.
func (c *Cart) AddLine(productID int64, name string, unitPrice decimal.Decimal, availableStock, qty int) error {
	if unitPrice.IsNegative() {
		return domain.NewValidationError("unit_price", "el precio no puede ser negativo")
	}
	if qty <= 0 {
		qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if availableStock <= 0 {
		return c.stockFailure(-1, productID, name, availableStock, qty)
	}

	if i := c.indexOf(productID); i >= 0 {
		line := &c.lines[i]
		combined := line.Quantity + qty
		if combined > availableStock || combined > entity.MaxQuantityPerLine {
			return c.stockFailure(i, productID, name, min(availableStock, entity.MaxQuantityPerLine), combined)
		}
		line.Quantity = combined
		line.MaxStock = availableStock
		line.recalc()
		c.changed(i)
		return nil
	}

	line := Line{
		ProductID:   productID,
		ProductName: name,
		UnitPrice:   unitPrice,
		Quantity:    min(qty, availableStock, entity.MaxQuantityPerLine),
		MaxStock:    availableStock,
	}
	line.recalc()
	c.lines = append(c.lines, line)
	c.changed(len(c.lines) - 1)
	return nil
}

// RemoveLine quita la línea en la posición indicada.
func (c *Cart) RemoveLine(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(index); err != nil {
		return err
	}
	c.removeAt(index)
	return nil
}

// SetQuantity fija la cantidad de una línea: <= 0 la elimina, más que MaxStock
// falla sin cambios y más de 9999 se limita a 9999.
func (c *Cart) SetQuantity(index, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setQuantity(index, qty)
}

// IncreaseQuantity suma delta unidades a la línea.
func (c *Cart) IncreaseQuantity(index, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(index); err != nil {
		return err
	}
	return c.setQuantity(index, c.lines[index].Quantity+delta)
}

// DecreaseQuantity resta delta unidades; si llega a cero elimina la línea.
func (c *Cart) DecreaseQuantity(index, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(index); err != nil {
		return err
	}
	return c.setQuantity(index, c.lines[index].Quantity-delta)
}

// RefreshStock actualiza el stock conocido de la línea del producto (si existe).
func (c *Cart) RefreshStock(productID int64, availableStock int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		c.lines[i].MaxStock = availableStock
	}
}

// Clear vacía el carrito. Impuesto y descuento se conservan.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
	c.changed(-1)
}

// SetTaxPercent cambia el porcentaje de impuesto (no negativo).
func (c *Cart) SetTaxPercent(p decimal.Decimal) error {
	if p.IsNegative() {
		return domain.NewValidationError("tax_percent", "el impuesto no puede ser negativo")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taxPercent = p
	c.changed(-1)
	return nil
}

// SetDiscountAmount cambia el descuento absoluto (no negativo).
func (c *Cart) SetDiscountAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return domain.NewValidationError("discount_amount", "el descuento no puede ser negativo")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discount = d
	c.changed(-1)
	return nil
}

// TaxPercent porcentaje de impuesto vigente.
func (c *Cart) TaxPercent() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.taxPercent
}

// DiscountAmount descuento vigente.
func (c *Cart) DiscountAmount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discount
}

// Lines copia de las líneas en orden de inserción.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line devuelve la línea en la posición indicada.
func (c *Cart) Line(index int) (Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(index); err != nil {
		return Line{}, err
	}
	return c.lines[index], nil
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool { return c.Len() == 0 }

// Contains indica si el producto ya está en el carrito.
func (c *Cart) Contains(productID int64) bool { return c.IndexOf(productID) >= 0 }

// IndexOf posición de la línea del producto o -1.
func (c *Cart) IndexOf(productID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(productID)
}

// QuantityOf cantidad del producto en el carrito (0 si no está).
func (c *Cart) QuantityOf(productID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// TotalQuantity unidades totales en el carrito.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Totals calcula subtotal, impuesto y total con la misma fórmula que la venta.
func (c *Cart) Totals() entity.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals()
}

func (c *Cart) Subtotal() decimal.Decimal  { return c.Totals().Subtotal }
func (c *Cart) TaxAmount() decimal.Decimal { return c.Totals().Tax }
func (c *Cart) Total() decimal.Decimal     { return c.Totals().Total }

func (c *Cart) totals() entity.Totals {
	subtotals := make([]decimal.Decimal, 0, len(c.lines))
	for _, l := range c.lines {
		subtotals = append(subtotals, l.Subtotal)
	}
	return entity.ComputeTotals(subtotals, c.taxPercent, c.discount)
}

func (c *Cart) setQuantity(index, qty int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	if qty <= 0 {
		c.removeAt(index)
		return nil
	}
	line := &c.lines[index]
	if qty > line.MaxStock {
		return c.stockFailure(index, line.ProductID, line.ProductName, line.MaxStock, qty)
	}
	if qty > entity.MaxQuantityPerLine {
		qty = entity.MaxQuantityPerLine
	}
	line.Quantity = qty
	line.recalc()
	c.changed(index)
	return nil
}

func (c *Cart) removeAt(index int) {
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	c.changed(index)
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) checkIndex(index int) error {
	if index < 0 || index >= len(c.lines) {
		return domain.NewValidationError("index", fmt.Sprintf("línea %d fuera de rango", index))
	}
	return nil
}

func (c *Cart) changed(index int) {
	c.events.Publish(Event{Kind: EventCartChanged, Index: index})
}

func (c *Cart) stockFailure(index int, productID int64, name string, available, requested int) error {
	err := &domain.StockError{ProductID: productID, ProductName: name, Available: available, Requested: requested}
	c.events.Publish(Event{
		Kind:      EventStockInsufficient,
		Index:     index,
		ProductID: productID,
		Available: available,
		Requested: requested,
		Message:   err.Error(),
	})
	return err
}
