package repository

import (
	"context"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain/entity"
)

// SaleFilter criterios de consulta del libro de ventas. Los campos nil/vacíos no filtran.
type SaleFilter struct {
	From          *time.Time
	To            *time.Time
	Status        *entity.SaleStatus
	PaymentMethod *entity.PaymentMethod
	Customer      string // nombre, teléfono o documento (parcial, sin distinguir mayúsculas)
}

// SaleRepository define el puerto de persistencia para Sale y sus items.
type SaleRepository interface {
	// Create inserta cabecera e items; asigna ID a la venta y a cada item.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve la venta con sus items o (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	// UpdateStatus cambia el estado; notes nil conserva las notas actuales.
	UpdateStatus(ctx context.Context, id int64, status entity.SaleStatus, notes *string, updatedAt time.Time) error
	CountItemsByProduct(ctx context.Context, productID int64) (int64, error)
	// LatestReceiptNumber número de recibo de la última venta guardada ("" si no hay ventas).
	LatestReceiptNumber(ctx context.Context) (string, error)
}
