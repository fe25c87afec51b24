package sales

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
)

// Ledger libro de ventas: persiste ventas finalizadas y sus cambios de estado.
// No conoce el inventario; restaurar stock es trabajo del checkout.
type Ledger struct {
	repo     repository.SaleRepository
	receipts ReceiptNumberer
	now      func() time.Time
}

// NewLedger construye el libro sobre un repositorio (de la DB o de una tx).
func NewLedger(repo repository.SaleRepository, receipts ReceiptNumberer, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{repo: repo, receipts: receipts, now: now}
}

// Save recalcula totales desde los items y valida antes de asignar ID, número
// de recibo, ExternalID y fechas. Estado por defecto: Completed.
func (l *Ledger) Save(ctx context.Context, sale *entity.Sale) error {
	sale.CalculateTotals()
	if err := sale.Validate(); err != nil {
		return err
	}

	now := l.now()
	if sale.ExternalID == "" {
		sale.ExternalID = uuid.NewString()
	}
	if sale.ReceiptNumber == "" {
		sale.ReceiptNumber = l.receipts.Next(now)
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = now
	}
	if sale.Status == 0 {
		sale.Status = entity.SaleStatusCompleted
	}
	if sale.PaymentMethod == 0 {
		sale.PaymentMethod = entity.PaymentCash
	}
	if sale.CurrencyCode == "" {
		sale.CurrencyCode = entity.DefaultCurrencyCode
	}
	sale.CreatedAt = now
	sale.UpdatedAt = now
	for i := range sale.Items {
		sale.Items[i].CreatedAt = now
	}
	return l.repo.Create(ctx, sale)
}

// FindByID devuelve la venta con sus items o (nil, nil) si no existe.
func (l *Ledger) FindByID(ctx context.Context, id int64) (*entity.Sale, error) {
	return l.repo.GetByID(ctx, id)
}

func (l *Ledger) FindAll(ctx context.Context) ([]*entity.Sale, error) {
	return l.repo.List(ctx, repository.SaleFilter{})
}

// FindByDateRange ventas con from <= fecha < to.
func (l *Ledger) FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Sale, error) {
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "el fin del rango debe ser posterior al inicio")
	}
	return l.repo.List(ctx, repository.SaleFilter{From: &from, To: &to})
}

func (l *Ledger) FindByStatus(ctx context.Context, status entity.SaleStatus) ([]*entity.Sale, error) {
	return l.repo.List(ctx, repository.SaleFilter{Status: &status})
}

func (l *Ledger) FindByPaymentMethod(ctx context.Context, method entity.PaymentMethod) ([]*entity.Sale, error) {
	return l.repo.List(ctx, repository.SaleFilter{PaymentMethod: &method})
}

// SearchByCustomer busca por nombre, teléfono o documento (parcial).
func (l *Ledger) SearchByCustomer(ctx context.Context, term string) ([]*entity.Sale, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return l.FindAll(ctx)
	}
	return l.repo.List(ctx, repository.SaleFilter{Customer: term})
}

// CountByStatus cantidad de ventas por estado.
func (l *Ledger) CountByStatus(ctx context.Context) (map[entity.SaleStatus]int, error) {
	all, err := l.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[entity.SaleStatus]int)
	for _, s := range all {
		out[s.Status]++
	}
	return out, nil
}

// CountItemsByProduct items de venta que referencian el producto.
func (l *Ledger) CountItemsByProduct(ctx context.Context, productID int64) (int64, error) {
	return l.repo.CountItemsByProduct(ctx, productID)
}

// Cancel pasa la venta a Cancelled (desde Pending o Completed). No toca el stock.
func (l *Ledger) Cancel(ctx context.Context, id int64, reason string) error {
	return l.transition(ctx, id, entity.SaleStatusCancelled, "cancelar", reason)
}

// Refund pasa la venta a Refunded (solo desde Completed). No toca el stock.
func (l *Ledger) Refund(ctx context.Context, id int64, reason string) error {
	return l.transition(ctx, id, entity.SaleStatusRefunded, "reembolsar", reason)
}

func (l *Ledger) transition(ctx context.Context, id int64, next entity.SaleStatus, action, reason string) error {
	sale, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}
	if !sale.Status.CanTransitionTo(next) {
		return &domain.StateError{From: sale.Status.DisplayName(), Action: action}
	}
	var notes *string
	if reason = strings.TrimSpace(reason); reason != "" {
		notes = &reason
	}
	return l.repo.UpdateStatus(ctx, id, next, notes, l.now())
}
