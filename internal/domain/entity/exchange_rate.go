package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fuentes de actualización de la tasa.
const (
	RateSourceManual     = "manual"
	RateSourceBCV        = "bcv"
	RateSourceDolarToday = "dolartoday"
	RateSourceBinance    = "binance"
)

// Rango permitido y tasa inicial (moneda local por USD).
var (
	MinExchangeRate     = decimal.RequireFromString("0.01")
	MaxExchangeRate     = decimal.NewFromInt(1_000_000)
	DefaultExchangeRate = decimal.RequireFromString("36.50")
)

// ExchangeRate registro histórico de una tasa USD → moneda local.
type ExchangeRate struct {
	ID        int64
	Rate      decimal.Decimal
	Source    string
	CreatedAt time.Time
}

// IsValidRate verifica que la tasa esté dentro del rango permitido.
func IsValidRate(rate decimal.Decimal) bool {
	return rate.GreaterThanOrEqual(MinExchangeRate) && rate.LessThanOrEqual(MaxExchangeRate)
}

// IsValidRateSource acepta solo las fuentes conocidas.
func IsValidRateSource(source string) bool {
	switch source {
	case RateSourceManual, RateSourceBCV, RateSourceDolarToday, RateSourceBinance:
		return true
	}
	return false
}
