package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/vento-pos/internal/application/catalog"
	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/application/ports"
	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"github.com/jhoicas/vento-pos/pkg/logger"
	"github.com/jhoicas/vento-pos/pkg/validate"
	"github.com/shopspring/decimal"
)

// Tendencias de la tasa respecto al registro anterior.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

var (
	hundred         = decimal.NewFromInt(100)
	stableThreshold = decimal.RequireFromString("0.01")
)

var _ ports.RateProvider = (*UseCase)(nil)

// UseCase tasa de cambio USD → moneda local: historial, conversión y
// recálculo de precios del catálogo cuando la tasa cambia.
type UseCase struct {
	rates    repository.ExchangeRateRepository
	products repository.ProductRepository
	fallback decimal.Decimal
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. fallback es la tasa usada mientras no haya historial.
func NewUseCase(rates repository.ExchangeRateRepository, products repository.ProductRepository, fallback decimal.Decimal, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	if !entity.IsValidRate(fallback) {
		fallback = entity.DefaultExchangeRate
	}
	return &UseCase{
		rates:    rates,
		products: products,
		fallback: fallback,
		log:      log.Component("currency"),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// CurrentRate tasa vigente: la última registrada o la de configuración.
func (uc *UseCase) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	latest, err := uc.rates.Latest(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if latest == nil {
		return uc.fallback, nil
	}
	return latest.Rate, nil
}

// Current tasa vigente con su variación respecto a la anterior.
func (uc *UseCase) Current(ctx context.Context) (*dto.ExchangeRateResponse, error) {
	hist, err := uc.rates.History(ctx, 2)
	if err != nil {
		return nil, err
	}
	switch len(hist) {
	case 0:
		return &dto.ExchangeRateResponse{
			Rate:          uc.fallback,
			Source:        "default",
			Previous:      uc.fallback,
			ChangePercent: decimal.Zero,
			Trend:         TrendStable,
		}, nil
	case 1:
		return toResponse(hist[0], uc.fallback), nil
	default:
		return toResponse(hist[0], hist[1].Rate), nil
	}
}

// UpdateRate registra una nueva tasa y recalcula el precio de venta de todo el catálogo.
// Si el recálculo falla la tasa ya quedó guardada; el error lo indica.
func (uc *UseCase) UpdateRate(ctx context.Context, in dto.UpdateRateRequest) (*dto.ExchangeRateResponse, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if !entity.IsValidRate(in.Rate) {
		return nil, domain.NewValidationError("rate",
			fmt.Sprintf("la tasa debe estar entre %s y %s", entity.MinExchangeRate, entity.MaxExchangeRate))
	}
	source := in.Source
	if source == "" {
		source = entity.RateSourceManual
	}

	previous, err := uc.CurrentRate(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	rec := &entity.ExchangeRate{Rate: in.Rate, Source: source, CreatedAt: now}
	if err := uc.rates.Save(ctx, rec); err != nil {
		return nil, err
	}
	out := toResponse(rec, previous)

	n, err := catalog.Reprice(ctx, uc.products, in.Rate, now)
	out.Repriced = n
	if err != nil {
		uc.log.Error().Err(err).Int("repriced", n).Msg("tasa guardada pero falló el recálculo de precios")
		return out, fmt.Errorf("recalcular precios: %w", err)
	}

	uc.log.Info().
		Str("previous", previous.StringFixed(2)).
		Str("rate", in.Rate.StringFixed(2)).
		Str("change_percent", out.ChangePercent.StringFixed(2)).
		Str("source", source).
		Int("repriced", n).
		Msg("tasa actualizada")
	return out, nil
}

// ConvertToLocal monto en USD a moneda local con la tasa vigente.
func (uc *UseCase) ConvertToLocal(ctx context.Context, usd decimal.Decimal) (decimal.Decimal, error) {
	rate, err := uc.CurrentRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return usd.Mul(rate).Round(2), nil
}

// ConvertToUSD monto en moneda local a USD con la tasa vigente.
func (uc *UseCase) ConvertToUSD(ctx context.Context, local decimal.Decimal) (decimal.Decimal, error) {
	rate, err := uc.CurrentRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !rate.IsPositive() {
		return decimal.Zero, nil
	}
	return local.Div(rate).Round(2), nil
}

// History últimas limit tasas (la más reciente primero), cada una con su variación.
func (uc *UseCase) History(ctx context.Context, limit int) ([]dto.ExchangeRateResponse, error) {
	if limit < 0 {
		return nil, domain.NewValidationError("limit", "no puede ser negativo")
	}
	fetch := limit
	if fetch > 0 {
		fetch++ // uno más para calcular la variación del último
	}
	hist, err := uc.rates.History(ctx, fetch)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExchangeRateResponse, 0, len(hist))
	for i, r := range hist {
		if limit > 0 && i == limit {
			break
		}
		prev := r.Rate
		if i+1 < len(hist) {
			prev = hist[i+1].Rate
		}
		out = append(out, *toResponse(r, prev))
	}
	return out, nil
}

// CleanHistory borra las tasas con más de days días. La tasa vigente nunca se borra.
func (uc *UseCase) CleanHistory(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, domain.NewValidationError("days", "debe ser mayor a cero")
	}
	cutoff := uc.now().AddDate(0, 0, -days)
	latest, err := uc.rates.Latest(ctx)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}
	if latest.CreatedAt.Before(cutoff) {
		cutoff = latest.CreatedAt
	}
	n, err := uc.rates.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info().Int64("deleted", n).Int("days", days).Msg("historial de tasas depurado")
	}
	return n, nil
}

func toResponse(r *entity.ExchangeRate, previous decimal.Decimal) *dto.ExchangeRateResponse {
	change := decimal.Zero
	if previous.IsPositive() {
		change = r.Rate.Sub(previous).Div(previous).Mul(hundred).Round(2)
	}
	return &dto.ExchangeRateResponse{
		Rate:          r.Rate,
		Source:        r.Source,
		CreatedAt:     r.CreatedAt,
		Previous:      previous,
		ChangePercent: change,
		Trend:         trendOf(change),
	}
}

func trendOf(change decimal.Decimal) string {
	switch {
	case change.Abs().LessThan(stableThreshold):
		return TrendStable
	case change.IsPositive():
		return TrendUp
	default:
		return TrendDown
	}
}
