package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"gorm.io/gorm"
)

var _ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)

// ExchangeRateRepo historial de tasas sobre SQLite.
type ExchangeRateRepo struct {
	db *gorm.DB
}

// NewExchangeRateRepository construye el adaptador.
func NewExchangeRateRepository(db *gorm.DB) *ExchangeRateRepo {
	return &ExchangeRateRepo{db: db}
}

// Save inserta una tasa y asigna su ID.
func (r *ExchangeRateRepo) Save(ctx context.Context, rate *entity.ExchangeRate) error {
	m := &exchangeRateModel{Rate: rate.Rate, Source: rate.Source, CreatedAt: rate.CreatedAt.UTC()}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return mapError("insert exchange rate", err)
	}
	rate.ID = m.ID
	return nil
}

// Latest tasa más reciente o (nil, nil).
func (r *ExchangeRateRepo) Latest(ctx context.Context) (*entity.ExchangeRate, error) {
	var m exchangeRateModel
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapError("latest exchange rate", err)
	}
	return toExchangeRate(&m), nil
}

// History últimas limit tasas, de la más reciente a la más antigua.
func (r *ExchangeRateRepo) History(ctx context.Context, limit int) ([]*entity.ExchangeRate, error) {
	var rows []exchangeRateModel
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, mapError("exchange rate history", err)
	}
	out := make([]*entity.ExchangeRate, 0, len(rows))
	for i := range rows {
		out = append(out, toExchangeRate(&rows[i]))
	}
	return out, nil
}

// DeleteOlderThan borra las tasas anteriores a before; devuelve cuántas borró.
func (r *ExchangeRateRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before.UTC()).Delete(&exchangeRateModel{})
	if res.Error != nil {
		return 0, mapError("delete exchange rates", res.Error)
	}
	return res.RowsAffected, nil
}

func toExchangeRate(m *exchangeRateModel) *entity.ExchangeRate {
	return &entity.ExchangeRate{ID: m.ID, Rate: m.Rate, Source: m.Source, CreatedAt: m.CreatedAt}
}
