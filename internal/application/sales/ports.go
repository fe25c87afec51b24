package sales

import (
	"context"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la deducción de stock y el registro de la venta se confirmen juntos.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		products repository.ProductRepository,
		sales repository.SaleRepository,
	) error) error
}

// ReceiptNumberer genera números de recibo legibles (REC-YYYYMMDD-NNNN).
type ReceiptNumberer interface {
	Next(at time.Time) string
}
