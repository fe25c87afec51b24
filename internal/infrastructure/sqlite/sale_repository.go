package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"gorm.io/gorm"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre SQLite.
type SaleRepo struct {
	db *gorm.DB
}

// NewSaleRepository construye el adaptador. Pasar la DB o la tx de gorm.
func NewSaleRepository(db *gorm.DB) *SaleRepo {
	return &SaleRepo{db: db}
}

// Create inserta cabecera e items (gorm crea la asociación en la misma operación).
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	m := toSaleModel(sale)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return mapError("insert sale", err)
	}
	sale.ID = m.ID
	for i := range sale.Items {
		sale.Items[i].ID = m.Items[i].ID
		sale.Items[i].SaleID = m.ID
	}
	return nil
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("sale_items.id ASC")
}

// GetByID obtiene la venta con sus items.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	var m saleModel
	err := r.db.WithContext(ctx).Preload("Items", preloadItems).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapError("get sale", err)
	}
	return m.toEntity()
}

// List ventas que cumplen el filtro, de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	q := r.db.WithContext(ctx).Model(&saleModel{}).Preload("Items", preloadItems)
	if filter.From != nil {
		q = q.Where("sale_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("sale_date < ?", filter.To.UTC())
	}
	if filter.Status != nil {
		q = q.Where("status = ?", filter.Status.String())
	}
	if filter.PaymentMethod != nil {
		q = q.Where("payment_method = ?", filter.PaymentMethod.String())
	}
	if c := strings.TrimSpace(filter.Customer); c != "" {
		like := "%" + strings.ToLower(c) + "%"
		q = q.Where("LOWER(customer_name) LIKE ? OR LOWER(customer_phone) LIKE ? OR LOWER(customer_document) LIKE ?", like, like, like)
	}

	var rows []saleModel
	if err := q.Order("sale_date DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, mapError("list sales", err)
	}
	out := make([]*entity.Sale, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// UpdateStatus cambia estado y updated_at; notes nil conserva las notas.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id int64, status entity.SaleStatus, notes *string, updatedAt time.Time) error {
	cols := map[string]any{
		"status":     status.String(),
		"updated_at": updatedAt.UTC(),
	}
	if notes != nil {
		cols["notes"] = *notes
	}
	res := r.db.WithContext(ctx).Model(&saleModel{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return mapError("update sale status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountItemsByProduct cuántos items de venta referencian el producto.
func (r *SaleRepo) CountItemsByProduct(ctx context.Context, productID int64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&saleItemModel{}).Where("product_id = ?", productID).Count(&n).Error; err != nil {
		return 0, mapError("count sale items", err)
	}
	return n, nil
}

// LatestReceiptNumber número de recibo de la última venta insertada.
func (r *SaleRepo) LatestReceiptNumber(ctx context.Context) (string, error) {
	var nums []string
	err := r.db.WithContext(ctx).Model(&saleModel{}).Order("id DESC").Limit(1).Pluck("receipt_number", &nums).Error
	if err != nil {
		return "", mapError("latest receipt", err)
	}
	if len(nums) == 0 {
		return "", nil
	}
	return nums[0], nil
}
