package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/application/ports"
	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/pos"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"github.com/jhoicas/vento-pos/pkg/logger"
	"github.com/jhoicas/vento-pos/pkg/validate"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// atomicRunner lo implementan los TxRunner cuyo Rollback ya deshace todas las
// escrituras hechas dentro de fn; con ellos no hace falta compensar a mano.
type atomicRunner interface {
	Atomic() bool
}

// Options valores opcionales del checkout.
type Options struct {
	CurrencyCode string
	CashierName  string
	Now          func() time.Time
}

// CheckoutUseCase coordina carrito, catálogo y libro de ventas. Toda operación
// que escribe stock se serializa con mu.
type CheckoutUseCase struct {
	mu       sync.Mutex
	tx       TxRunner
	products repository.ProductRepository
	sales    repository.SaleRepository
	cart     *pos.Cart
	receipts ReceiptNumberer
	rates    ports.RateProvider
	currency string
	cashier  string
	now      func() time.Time
	log      *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso. products y sales se usan fuera de
// transacción (lecturas y cambio de estado); las escrituras del checkout van por tx.
func NewCheckoutUseCase(
	tx TxRunner,
	products repository.ProductRepository,
	sales repository.SaleRepository,
	cart *pos.Cart,
	receipts ReceiptNumberer,
	rates ports.RateProvider,
	log *logger.Logger,
	opts Options,
) *CheckoutUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CurrencyCode == "" {
		opts.CurrencyCode = entity.DefaultCurrencyCode
	}
	return &CheckoutUseCase{
		tx:       tx,
		products: products,
		sales:    sales,
		cart:     cart,
		receipts: receipts,
		rates:    rates,
		currency: opts.CurrencyCode,
		cashier:  opts.CashierName,
		now:      opts.Now,
		log:      log.Component("checkout"),
	}
}

// Cart carrito que atiende este caso de uso.
func (uc *CheckoutUseCase) Cart() *pos.Cart { return uc.cart }

// Ledger libro de ventas fuera de transacción (consultas).
func (uc *CheckoutUseCase) Ledger() *Ledger {
	return NewLedger(uc.sales, uc.receipts, uc.now)
}

// AddProduct agrega al carrito el producto con su precio y stock actuales.
func (uc *CheckoutUseCase) AddProduct(ctx context.Context, productID int64, qty int) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return uc.notFound(productID, "")
	}
	return uc.addToCart(p, qty)
}

// AddProductByBarcode busca por código de barras (o SKU si no hay coincidencia) y lo agrega.
func (uc *CheckoutUseCase) AddProductByBarcode(ctx context.Context, code string, qty int) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.NewValidationError("barcode", "el código es requerido")
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	p, err := uc.products.GetByBarcode(ctx, code)
	if err != nil {
		return err
	}
	if p == nil {
		if p, err = uc.products.GetBySKU(ctx, code); err != nil {
			return err
		}
	}
	if p == nil {
		return uc.notFound(0, code)
	}
	return uc.addToCart(p, qty)
}

// UpdateQuantity cambia la cantidad de una línea validando contra el stock actual.
func (uc *CheckoutUseCase) UpdateQuantity(ctx context.Context, index, qty int) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	line, err := uc.cart.Line(index)
	if err != nil {
		return err
	}
	if qty > 0 {
		p, err := uc.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return uc.notFound(line.ProductID, "")
		}
		uc.cart.RefreshStock(p.ID, p.StockQuantity)
	}
	return uc.cart.SetQuantity(index, qty)
}

func (uc *CheckoutUseCase) addToCart(p *entity.Product, qty int) error {
	if !p.IsActive {
		return domain.NewValidationError("product", fmt.Sprintf("el producto %q está inactivo", p.Name))
	}
	return uc.cart.AddLine(p.ID, p.Name, p.SalePrice, p.StockQuantity, qty)
}

func (uc *CheckoutUseCase) notFound(productID int64, lookup string) error {
	msg := fmt.Sprintf("producto %d no encontrado", productID)
	if lookup != "" {
		msg = fmt.Sprintf("producto %q no encontrado", lookup)
	}
	uc.cart.Events().Publish(pos.Event{
		Kind:      pos.EventProductNotFound,
		Index:     -1,
		ProductID: productID,
		Lookup:    lookup,
		Message:   msg,
	})
	return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
}

// Checkout convierte el carrito en una venta: revalida stock contra el catálogo,
// descuenta stock línea por línea, registra la venta y vacía el carrito.
// Ante cualquier falla el stock queda como estaba y el carrito no se toca.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, in dto.CheckoutRequest) dto.CheckoutResult {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	sale, err := uc.checkout(ctx, in)
	if err != nil {
		uc.log.Warn().Err(err).Str("kind", string(domain.KindOf(err))).Msg("checkout fallido")
		return dto.CheckoutResult{
			Success: false,
			Err:     err,
			Kind:    string(domain.KindOf(err)),
			Message: err.Error(),
		}
	}
	uc.log.Info().
		Int64("sale_id", sale.ID).
		Str("receipt", sale.ReceiptNumber).
		Str("total", sale.Total.StringFixed(2)).
		Int("items", len(sale.Items)).
		Msg("venta registrada")
	return dto.CheckoutResult{
		Success:       true,
		SaleID:        sale.ID,
		ReceiptNumber: sale.ReceiptNumber,
		Total:         sale.Total,
	}
}

func (uc *CheckoutUseCase) checkout(ctx context.Context, in dto.CheckoutRequest) (*entity.Sale, error) {
	lines := uc.cart.Lines()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	method, err := entity.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	rate, err := uc.rates.CurrentRate(ctx)
	if err != nil {
		return nil, err
	}
	taxPercent := uc.cart.TaxPercent()
	discount := uc.cart.DiscountAmount()

	var sale *entity.Sale
	err = uc.tx.RunSale(ctx, func(products repository.ProductRepository, sales repository.SaleRepository) error {
		before, err := revalidate(ctx, products, lines)
		if err != nil {
			return err
		}

		s := uc.buildSale(lines, taxPercent, discount, rate, method, in)

		for i, l := range lines {
			if err := products.UpdateStock(ctx, l.ProductID, before[i]-l.Quantity); err != nil {
				cause := &domain.StockError{
					ProductID:   l.ProductID,
					ProductName: l.ProductName,
					Available:   before[i],
					Requested:   l.Quantity,
					Cause:       err,
				}
				return uc.restore(ctx, products, lines[:i], before, cause)
			}
		}

		if err := NewLedger(sales, uc.receipts, uc.now).Save(ctx, s); err != nil {
			return uc.restore(ctx, products, lines, before, err)
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cart.Clear()
	return sale, nil
}

// revalidate compara cada línea con el stock actual y devuelve ese stock.
func revalidate(ctx context.Context, products repository.ProductRepository, lines []pos.Line) ([]int, error) {
	before := make([]int, len(lines))
	for i, l := range lines {
		p, err := products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %d (%s)", domain.ErrNotFound, l.ProductID, l.ProductName)
		}
		if l.Quantity > p.StockQuantity {
			return nil, &domain.StockError{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Available:   p.StockQuantity,
				Requested:   l.Quantity,
			}
		}
		before[i] = p.StockQuantity
	}
	return before, nil
}

// restore devuelve a su valor previo el stock de las líneas ya escritas
// (descontadas en el checkout, repuestas en una cancelación).
// Las fallas de la restauración se suman al error original, nunca se descartan.
func (uc *CheckoutUseCase) restore(ctx context.Context, products repository.ProductRepository, applied []pos.Line, before []int, cause error) error {
	if r, ok := uc.tx.(atomicRunner); ok && r.Atomic() {
		return cause
	}
	err := cause
	for i := len(applied) - 1; i >= 0; i-- {
		l := applied[i]
		if rerr := products.UpdateStock(ctx, l.ProductID, before[i]); rerr != nil {
			uc.log.Error().Err(rerr).Int64("product_id", l.ProductID).Int("stock", before[i]).Msg("no se pudo restaurar el stock")
			err = multierr.Append(err, fmt.Errorf("restaurar stock del producto %d: %w", l.ProductID, rerr))
		}
	}
	return err
}

func (uc *CheckoutUseCase) buildSale(
	lines []pos.Line,
	taxPercent, discount, rate decimal.Decimal,
	method entity.PaymentMethod,
	in dto.CheckoutRequest,
) *entity.Sale {
	cashier := in.CashierName
	if cashier == "" {
		cashier = uc.cashier
	}
	s := &entity.Sale{
		Items:            make([]entity.SaleItem, 0, len(lines)),
		TaxPercent:       taxPercent,
		DiscountAmount:   discount,
		ExchangeRate:     rate,
		CurrencyCode:     uc.currency,
		PaymentMethod:    method,
		CustomerName:     strings.TrimSpace(in.CustomerName),
		CustomerPhone:    strings.TrimSpace(in.CustomerPhone),
		CustomerDocument: strings.TrimSpace(in.CustomerDocument),
		Status:           entity.SaleStatusCompleted,
		Notes:            in.Notes,
		CashierName:      cashier,
	}
	for _, l := range lines {
		s.Items = append(s.Items, entity.SaleItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		})
	}
	s.CalculateTotals()
	return s
}

// CancelSale cancela una venta (desde Pending o Completed) devolviendo su stock.
func (uc *CheckoutUseCase) CancelSale(ctx context.Context, id int64, reason string) error {
	return uc.reverse(ctx, id, entity.SaleStatusCancelled, reason)
}

// RefundSale reembolsa una venta completada devolviendo su stock.
func (uc *CheckoutUseCase) RefundSale(ctx context.Context, id int64, reason string) error {
	return uc.reverse(ctx, id, entity.SaleStatusRefunded, reason)
}

// reverse restaura el stock de cada item y después pide al libro el cambio de estado.
// Si el cambio de estado falla, el stock restaurado no se revierte: se informa el error.
func (uc *CheckoutUseCase) reverse(ctx context.Context, id int64, next entity.SaleStatus, reason string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ledger := uc.Ledger()
	err := uc.tx.RunSale(ctx, func(products repository.ProductRepository, sales repository.SaleRepository) error {
		sale, err := sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("%w: venta %d", domain.ErrNotFound, id)
		}
		if !sale.Status.CanTransitionTo(next) {
			return &domain.StateError{From: sale.Status.DisplayName(), Action: actionName(next)}
		}
		// Se corta en la primera falla y se deshace lo ya restaurado: la venta
		// sigue en su estado y un reintento no repone stock dos veces.
		applied := make([]pos.Line, 0, len(sale.Items))
		before := make([]int, 0, len(sale.Items))
		for _, it := range sale.Items {
			p, err := products.GetByID(ctx, it.ProductID)
			if err == nil && p == nil {
				err = fmt.Errorf("%w: producto %d", domain.ErrNotFound, it.ProductID)
			}
			if err == nil {
				err = products.UpdateStock(ctx, it.ProductID, p.StockQuantity+it.Quantity)
			}
			if err != nil {
				return uc.restore(ctx, products, applied, before, err)
			}
			applied = append(applied, pos.Line{ProductID: it.ProductID, ProductName: it.ProductName, Quantity: it.Quantity})
			before = append(before, p.StockQuantity)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if next == entity.SaleStatusRefunded {
		err = ledger.Refund(ctx, id, reason)
	} else {
		err = ledger.Cancel(ctx, id, reason)
	}
	if err != nil {
		uc.log.Error().Err(err).Int64("sale_id", id).Str("status", next.String()).
			Msg("stock restaurado pero la venta no cambió de estado")
		if errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return domain.PersistenceError("update sale status", err)
	}
	uc.log.Info().Int64("sale_id", id).Str("status", next.String()).Msg("venta revertida")
	return nil
}

func actionName(s entity.SaleStatus) string {
	if s == entity.SaleStatusRefunded {
		return "reembolsar"
	}
	return "cancelar"
}

// DirectRunner ejecuta fn sin transacción sobre repositorios fijos. Con él la
// consistencia depende de la compensación explícita del checkout y de la
// cancelación; si la compensación misma falla el stock puede quedar desfasado.
type DirectRunner struct {
	Products repository.ProductRepository
	Sales    repository.SaleRepository
}

// RunSale llama fn con los repositorios configurados.
func (r DirectRunner) RunSale(_ context.Context, fn func(repository.ProductRepository, repository.SaleRepository) error) error {
	return fn(r.Products, r.Sales)
}
