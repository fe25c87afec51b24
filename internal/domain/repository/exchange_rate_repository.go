package repository

import (
	"context"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain/entity"
)

// ExchangeRateRepository puerto para el historial de tasas de cambio.
type ExchangeRateRepository interface {
	Save(ctx context.Context, rate *entity.ExchangeRate) error
	// Latest devuelve la tasa más reciente o (nil, nil) si aún no hay registros.
	Latest(ctx context.Context) (*entity.ExchangeRate, error)
	History(ctx context.Context, limit int) ([]*entity.ExchangeRate, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
