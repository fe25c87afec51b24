package pos_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/pos"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCart_AddLine_NuevaLineaSeLimitaAlStock(t *testing.T) {
	c := pos.NewCart()

	require.NoError(t, c.AddLine(1, "Harina", price("10.00"), 5, 8))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity, "la línea nueva se limita al stock disponible")
	assert.Equal(t, 5, lines[0].MaxStock)
	assert.True(t, price("50.00").Equal(lines[0].Subtotal))
}

func TestCart_AddLine_CantidadNoPositivaEsUno(t *testing.T) {
	c := pos.NewCart()

	require.NoError(t, c.AddLine(1, "Arroz", price("2.50"), 10, 0))
	require.NoError(t, c.AddLine(2, "Café", price("4.00"), 10, -3))

	assert.Equal(t, 1, c.QuantityOf(1))
	assert.Equal(t, 1, c.QuantityOf(2))
}

func TestCart_AddLine_SinStockFalla(t *testing.T) {
	c := pos.NewCart()

	err := c.AddLine(1, "Azúcar", price("3.00"), 0, 1)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, c.IsEmpty())
}

func TestCart_AddLine_ProductoRepetidoSumaCantidad(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "Leche", price("1.20"), 10, 3))

	require.NoError(t, c.AddLine(1, "Leche", price("1.20"), 10, 4))

	assert.Equal(t, 1, c.Len(), "un producto nunca ocupa dos líneas")
	assert.Equal(t, 7, c.QuantityOf(1))
}

func TestCart_AddLine_ProductoRepetidoConservaPrecioOriginal(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "Arroz", price("10.00"), 10, 1))

	require.NoError(t, c.AddLine(1, "Arroz", price("12.50"), 10, 1))

	line, err := c.Line(0)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, price("10.00").Equal(line.UnitPrice), "el precio es el del primer escaneo")
	assert.True(t, price("20.00").Equal(line.Subtotal))
	assert.True(t, price("20.00").Equal(c.Subtotal()))
}

func TestCart_AddLine_SumaQueExcedeStockNoModificaLinea(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "Aceite", price("5.00"), 5, 4))

	err := c.AddLine(1, "Aceite", price("5.00"), 5, 2)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 5, se.Available)
	assert.Equal(t, 6, se.Requested)
	assert.Equal(t, 4, c.QuantityOf(1), "la línea queda intacta")
}

func TestCart_AddLine_PrecioNegativoEsValidacion(t *testing.T) {
	c := pos.NewCart()

	err := c.AddLine(1, "X", price("-1"), 5, 1)

	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCart_SetQuantity(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "Pan", price("0.50"), 20, 2))

	t.Run("dentro del stock", func(t *testing.T) {
		require.NoError(t, c.SetQuantity(0, 12))
		assert.Equal(t, 12, c.QuantityOf(1))
	})

	t.Run("sobre el stock falla sin cambios", func(t *testing.T) {
		err := c.SetQuantity(0, 21)
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
		assert.Equal(t, 12, c.QuantityOf(1))
	})

	t.Run("indice fuera de rango", func(t *testing.T) {
		err := c.SetQuantity(3, 1)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("cero elimina la linea", func(t *testing.T) {
		require.NoError(t, c.SetQuantity(0, 0))
		assert.True(t, c.IsEmpty())
	})
}

func TestCart_SetQuantity_LimitaAlMaximoPorLinea(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "Tornillo", price("0.01"), 50000, 1))

	require.NoError(t, c.SetQuantity(0, 20000))

	assert.Equal(t, 9999, c.QuantityOf(1))
}

func TestCart_IncreaseDecrease(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "Jugo", price("2.00"), 5, 2))

	require.NoError(t, c.IncreaseQuantity(0, 2))
	assert.Equal(t, 4, c.QuantityOf(1))

	assert.Error(t, c.IncreaseQuantity(0, 2), "6 supera el stock de 5")
	assert.Equal(t, 4, c.QuantityOf(1))

	require.NoError(t, c.DecreaseQuantity(0, 4))
	assert.False(t, c.Contains(1), "llegar a cero elimina la línea")
}

func TestCart_RemoveLineYClear(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "A", price("1"), 5, 1))
	require.NoError(t, c.AddLine(2, "B", price("1"), 5, 1))
	require.NoError(t, c.AddLine(3, "C", price("1"), 5, 1))

	require.NoError(t, c.RemoveLine(1))
	assert.Equal(t, 1, c.IndexOf(3), "las líneas conservan el orden de inserción")
	assert.False(t, c.Contains(2))

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
}

func TestCart_Totales_TresPorDiezConIVA(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "Queso", price("10.00"), 5, 3))

	tot := c.Totals()

	assert.True(t, price("30.00").Equal(tot.Subtotal))
	assert.True(t, price("4.80").Equal(tot.Tax))
	assert.True(t, price("34.80").Equal(tot.Total), "total = %s", tot.Total)
}

func TestCart_Totales_DescuentoNoProduceNegativo(t *testing.T) {
	c := pos.NewCart()
	require.NoError(t, c.AddLine(1, "Chicle", price("1.00"), 5, 1))
	require.NoError(t, c.SetDiscountAmount(price("100")))

	assert.True(t, c.Total().IsZero())
}

func TestCart_ImpuestoYDescuentoNegativosSonValidacion(t *testing.T) {
	c := pos.NewCart()

	assert.True(t, errors.Is(c.SetTaxPercent(price("-1")), domain.ErrValidation))
	assert.True(t, errors.Is(c.SetDiscountAmount(price("-0.01")), domain.ErrValidation))
	assert.True(t, price("16").Equal(c.TaxPercent()), "el IVA por defecto no cambia")
}

func TestCart_Eventos(t *testing.T) {
	c := pos.NewCart()
	ch, cancel := c.Subscribe(8)
	defer cancel()

	require.NoError(t, c.AddLine(7, "Galleta", price("1.00"), 1, 1))
	require.Error(t, c.AddLine(7, "Galleta", price("1.00"), 1, 1))

	ev := <-ch
	assert.Equal(t, pos.EventCartChanged, ev.Kind)
	assert.Equal(t, 0, ev.Index)

	ev = <-ch
	assert.Equal(t, pos.EventStockInsufficient, ev.Kind)
	assert.Equal(t, int64(7), ev.ProductID)
	assert.Equal(t, 1, ev.Available)
	assert.Equal(t, 2, ev.Requested)
}

func TestNotifier_SuscriptorLentoNoBloquea(t *testing.T) {
	n := pos.NewNotifier()
	_, cancel := n.Subscribe(1)
	defer cancel()

	n.Publish(pos.Event{Kind: pos.EventCartChanged})
	n.Publish(pos.Event{Kind: pos.EventCartChanged})
	n.Publish(pos.Event{Kind: pos.EventCartChanged})

	assert.Equal(t, uint64(2), n.Dropped())
}

func TestNotifier_CancelCierraCanal(t *testing.T) {
	n := pos.NewNotifier()
	ch, cancel := n.Subscribe(0)

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	n.Publish(pos.Event{Kind: pos.EventCartChanged})
	assert.Zero(t, n.Dropped())
}
