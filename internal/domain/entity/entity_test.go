package entity_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProduct_ApplyExchangeRate(t *testing.T) {
	p := entity.NewProduct("Harina", dec("1.20"), 10)

	p.ApplyExchangeRate(dec("36.50"))

	assert.True(t, dec("43.80").Equal(p.CostLocal), "costo local = %s", p.CostLocal)
	// 43.80 × 1.30 = 56.94
	assert.True(t, dec("56.94").Equal(p.SalePrice), "precio = %s", p.SalePrice)
	assert.True(t, dec("13.14").Equal(p.ProfitAmount()))
}

func TestProduct_PrecioRedondeadoADosDecimales(t *testing.T) {
	p := entity.NewProduct("Caramelo", dec("0.033"), 10)
	p.MarginPercent = dec("25")

	p.ApplyExchangeRate(dec("37.1234"))

	assert.Equal(t, int32(-2), p.SalePrice.Exponent(), "precio %s", p.SalePrice)
}

func TestProduct_StockStatus(t *testing.T) {
	p := entity.NewProduct("Leche", dec("1"), 0)
	assert.Equal(t, entity.StockStatusOut, p.StockStatus())

	p.StockQuantity = entity.DefaultMinStockAlert
	assert.Equal(t, entity.StockStatusLow, p.StockStatus())

	p.StockQuantity = entity.DefaultMinStockAlert + 1
	assert.Equal(t, entity.StockStatusOK, p.StockStatus())
}

func TestProduct_Validate(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(p *entity.Product)
		field string
	}{
		{"nombre vacío", func(p *entity.Product) { p.Name = "  " }, "name"},
		{"costo negativo", func(p *entity.Product) { p.CostUSD = dec("-1") }, "cost_usd"},
		{"margen negativo", func(p *entity.Product) { p.MarginPercent = dec("-5") }, "margin_percent"},
		{"stock negativo", func(p *entity.Product) { p.StockQuantity = -1 }, "stock_quantity"},
		{"alerta negativa", func(p *entity.Product) { p.MinStockAlert = -1 }, "min_stock_alert"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := entity.NewProduct("Café", dec("3"), 1)
			tc.mut(p)

			err := p.Validate()

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.NoError(t, entity.NewProduct("Café", dec("3"), 1).Validate())
}

func TestComputeTotals(t *testing.T) {
	tot := entity.ComputeTotals([]decimal.Decimal{dec("30.00")}, dec("16"), decimal.Zero)
	assert.True(t, dec("30").Equal(tot.Subtotal))
	assert.True(t, dec("4.80").Equal(tot.Tax))
	assert.True(t, dec("34.80").Equal(tot.Total))

	tot = entity.ComputeTotals([]decimal.Decimal{dec("1.00")}, dec("16"), dec("50"))
	assert.True(t, tot.Total.IsZero(), "el descuento nunca deja el total negativo")
}

func TestSale_CalculateTotalsIgnoraMontosDelCaller(t *testing.T) {
	s := &entity.Sale{
		Items: []entity.SaleItem{
			{UnitPrice: dec("2.50"), Quantity: 4, Subtotal: dec("1")},
			{UnitPrice: dec("0.99"), Quantity: 1},
		},
		TaxPercent:     dec("16"),
		DiscountAmount: dec("0.49"),
		Total:          dec("1000"),
	}

	s.CalculateTotals()

	assert.True(t, dec("10").Equal(s.Items[0].Subtotal))
	assert.True(t, dec("10.99").Equal(s.Subtotal))
	assert.True(t, dec("1.76").Equal(s.TaxAmount))
	assert.True(t, dec("12.26").Equal(s.Total), "total = %s", s.Total)
	assert.Equal(t, 5, s.TotalQuantity())
}

func TestSale_TotalInUSD(t *testing.T) {
	s := &entity.Sale{Total: dec("73.00"), ExchangeRate: dec("36.50")}
	assert.True(t, dec("2").Equal(s.TotalInUSD()))

	s.ExchangeRate = decimal.Zero
	assert.True(t, s.TotalInUSD().IsZero())
}

func TestSaleStatus_MaquinaDeEstados(t *testing.T) {
	all := []entity.SaleStatus{
		entity.SaleStatusPending, entity.SaleStatusCompleted, entity.SaleStatusCancelled,
		entity.SaleStatusRefunded, entity.SaleStatusPartialRefund,
	}
	allowed := map[entity.SaleStatus][]entity.SaleStatus{
		entity.SaleStatusPending:   {entity.SaleStatusCompleted, entity.SaleStatusCancelled},
		entity.SaleStatusCompleted: {entity.SaleStatusCancelled, entity.SaleStatusRefunded},
	}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s → %s", from, to)
		}
	}
	assert.True(t, entity.SaleStatusCancelled.IsTerminal())
	assert.True(t, entity.SaleStatusRefunded.IsTerminal())
	assert.False(t, entity.SaleStatusCompleted.IsTerminal())
}

func TestParseSaleStatusYPaymentMethod(t *testing.T) {
	st, err := entity.ParseSaleStatus(" Completed ")
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, st)

	_, err = entity.ParseSaleStatus("perdida")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	m, err := entity.ParsePaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCash, m)

	m, err = entity.ParsePaymentMethod("MOBILE")
	require.NoError(t, err)
	assert.Equal(t, "Pago móvil", m.DisplayName())

	_, err = entity.ParsePaymentMethod("trueque")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestExchangeRate_Rango(t *testing.T) {
	assert.True(t, entity.IsValidRate(dec("0.01")))
	assert.True(t, entity.IsValidRate(dec("1000000")))
	assert.False(t, entity.IsValidRate(dec("0.009")))
	assert.False(t, entity.IsValidRate(dec("1000000.01")))

	assert.True(t, entity.IsValidRateSource(entity.RateSourceBCV))
	assert.False(t, entity.IsValidRateSource("twitter"))
}
