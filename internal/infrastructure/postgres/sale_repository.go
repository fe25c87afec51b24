package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, external_id::text, receipt_number, sale_date, subtotal, tax_percent, tax_amount,
	discount_amount, total, exchange_rate, currency_code, payment_method, customer_name,
	customer_phone, customer_document, status, notes, cashier_name, created_at, updated_at`

// beginner lo implementan *pgxpool.Pool y pgx.Tx (en una tx abre un savepoint).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera e items en una sola transacción (o savepoint si ya hay una).
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	b, ok := r.q.(beginner)
	if !ok {
		return r.insert(ctx, r.q, sale)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return mapError("begin insert sale", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := r.insert(ctx, tx, sale); err != nil {
		return err
	}
	return mapError("commit insert sale", tx.Commit(ctx))
}

func (r *SaleRepo) insert(ctx context.Context, q Querier, s *entity.Sale) error {
	err := q.QueryRow(ctx, `
		INSERT INTO sales (external_id, receipt_number, sale_date, subtotal, tax_percent, tax_amount,
			discount_amount, total, exchange_rate, currency_code, payment_method, customer_name,
			customer_phone, customer_document, status, notes, cashier_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`,
		s.ExternalID, s.ReceiptNumber, s.SaleDate.UTC(), s.Subtotal, s.TaxPercent, s.TaxAmount,
		s.DiscountAmount, s.Total, s.ExchangeRate, s.CurrencyCode, s.PaymentMethod.String(), s.CustomerName,
		s.CustomerPhone, s.CustomerDocument, s.Status.String(), s.Notes, s.CashierName,
		s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	).Scan(&s.ID)
	if err != nil {
		return mapError("insert sale", err)
	}
	for i := range s.Items {
		it := &s.Items[i]
		it.SaleID = s.ID
		err := q.QueryRow(ctx, `
			INSERT INTO sale_items (sale_id, product_id, product_name, unit_price, quantity, subtotal, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			s.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, it.Subtotal, it.CreatedAt.UTC(),
		).Scan(&it.ID)
		if err != nil {
			return mapError("insert sale item", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus items.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get sale", err)
	}
	if err := r.loadItems(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// List ventas que cumplen el filtro, de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.From != nil {
		where = append(where, "sale_date >= "+arg(filter.From.UTC()))
	}
	if filter.To != nil {
		where = append(where, "sale_date < "+arg(filter.To.UTC()))
	}
	if filter.Status != nil {
		where = append(where, "status = "+arg(filter.Status.String()))
	}
	if filter.PaymentMethod != nil {
		where = append(where, "payment_method = "+arg(filter.PaymentMethod.String()))
	}
	if c := strings.TrimSpace(filter.Customer); c != "" {
		p := arg("%" + strings.ToLower(c) + "%")
		where = append(where, fmt.Sprintf("(LOWER(customer_name) LIKE %s OR LOWER(customer_phone) LIKE %s OR LOWER(customer_document) LIKE %s)", p, p, p))
	}

	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sale_date DESC, id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list sales", err)
	}
	var out []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, mapError("scan sale", err)
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError("list sales", err)
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems carga los items de todas las ventas con una sola consulta.
func (r *SaleRepo) loadItems(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(sales))
	byID := make(map[int64]*entity.Sale, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
		byID[s.ID] = s
		s.Items = []entity.SaleItem{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, unit_price, quantity, subtotal, created_at
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY id ASC`, ids)
	if err != nil {
		return mapError("list sale items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.UnitPrice, &it.Quantity, &it.Subtotal, &it.CreatedAt); err != nil {
			return mapError("scan sale item", err)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	return mapError("list sale items", rows.Err())
}

// UpdateStatus cambia estado y updated_at; notes nil conserva las notas.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id int64, status entity.SaleStatus, notes *string, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales SET status = $2, updated_at = $3, notes = COALESCE($4, notes) WHERE id = $1`,
		id, status.String(), updatedAt.UTC(), notes)
	if err != nil {
		return mapError("update sale status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountItemsByProduct cuántos items de venta referencian el producto.
func (r *SaleRepo) CountItemsByProduct(ctx context.Context, productID int64) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sale_items WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, mapError("count sale items", err)
	}
	return n, nil
}

// LatestReceiptNumber número de recibo de la última venta insertada.
func (r *SaleRepo) LatestReceiptNumber(ctx context.Context) (string, error) {
	var num string
	err := r.q.QueryRow(ctx, `SELECT receipt_number FROM sales ORDER BY id DESC LIMIT 1`).Scan(&num)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", mapError("latest receipt", err)
	}
	return num, nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s              entity.Sale
		method, status string
	)
	err := row.Scan(&s.ID, &s.ExternalID, &s.ReceiptNumber, &s.SaleDate, &s.Subtotal, &s.TaxPercent,
		&s.TaxAmount, &s.DiscountAmount, &s.Total, &s.ExchangeRate, &s.CurrencyCode, &method,
		&s.CustomerName, &s.CustomerPhone, &s.CustomerDocument, &status, &s.Notes, &s.CashierName,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if s.PaymentMethod, err = entity.ParsePaymentMethod(method); err != nil {
		return nil, err
	}
	if s.Status, err = entity.ParseSaleStatus(status); err != nil {
		return nil, err
	}
	return &s, nil
}
