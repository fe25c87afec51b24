package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
)

var _ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)

// ExchangeRateRepo historial de tasas sobre PostgreSQL.
type ExchangeRateRepo struct {
	q Querier
}

// NewExchangeRateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExchangeRateRepository(q Querier) *ExchangeRateRepo {
	return &ExchangeRateRepo{q: q}
}

// Save inserta una tasa y asigna su ID.
func (r *ExchangeRateRepo) Save(ctx context.Context, rate *entity.ExchangeRate) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO exchange_rates (rate, source, created_at) VALUES ($1, $2, $3) RETURNING id`,
		rate.Rate, rate.Source, rate.CreatedAt.UTC(),
	).Scan(&rate.ID)
	return mapError("insert exchange rate", err)
}

// Latest tasa más reciente o (nil, nil).
func (r *ExchangeRateRepo) Latest(ctx context.Context) (*entity.ExchangeRate, error) {
	var e entity.ExchangeRate
	err := r.q.QueryRow(ctx,
		`SELECT id, rate, source, created_at FROM exchange_rates ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&e.ID, &e.Rate, &e.Source, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("latest exchange rate", err)
	}
	return &e, nil
}

// History últimas limit tasas (todas si limit <= 0), de la más reciente a la más antigua.
func (r *ExchangeRateRepo) History(ctx context.Context, limit int) ([]*entity.ExchangeRate, error) {
	query := `SELECT id, rate, source, created_at FROM exchange_rates ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("exchange rate history", err)
	}
	defer rows.Close()
	var out []*entity.ExchangeRate
	for rows.Next() {
		var e entity.ExchangeRate
		if err := rows.Scan(&e.ID, &e.Rate, &e.Source, &e.CreatedAt); err != nil {
			return nil, mapError("scan exchange rate", err)
		}
		out = append(out, &e)
	}
	return out, mapError("exchange rate history", rows.Err())
}

// DeleteOlderThan borra las tasas anteriores a before; devuelve cuántas borró.
func (r *ExchangeRateRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM exchange_rates WHERE created_at < $1`, before.UTC())
	if err != nil {
		return 0, mapError("delete exchange rates", err)
	}
	return cmd.RowsAffected(), nil
}
