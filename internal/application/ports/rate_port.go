package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateProvider define el puerto para obtener la tasa de cambio vigente (moneda local por USD).
// El catálogo la usa para derivar precios y el checkout para fijarla en la venta.
// Siguiendo el principio de inversión de dependencias (DIP), la aplicación
// solo conoce este contrato, no cómo se guarda el historial de tasas.
type RateProvider interface {
	CurrentRate(ctx context.Context) (decimal.Decimal, error)
}

// StaticRate tasa fija; útil cuando no hay historial o en pruebas.
type StaticRate decimal.Decimal

// CurrentRate devuelve siempre la misma tasa.
func (r StaticRate) CurrentRate(context.Context) (decimal.Decimal, error) {
	return decimal.Decimal(r), nil
}
