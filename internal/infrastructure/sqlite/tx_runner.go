package sqlite

import (
	"context"

	"github.com/jhoicas/vento-pos/internal/application/sales"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"gorm.io/gorm"
)

var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SQLite.
type TxRunner struct {
	db *gorm.DB
}

// NewTxRunner construye el runner con la DB.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunSale abre una transacción, ejecuta fn con repos de productos y ventas atados
// a ella y hace Commit si fn devuelve nil (Rollback en otro caso).
func (r *TxRunner) RunSale(ctx context.Context, fn func(products repository.ProductRepository, sales repository.SaleRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewProductRepository(tx), NewSaleRepository(tx))
	})
}

// Atomic: el Rollback de SQLite deshace todas las escrituras de fn.
func (r *TxRunner) Atomic() bool { return true }
