package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/application/ports"
	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"github.com/jhoicas/vento-pos/pkg/logger"
	"github.com/jhoicas/vento-pos/pkg/validate"
	"github.com/shopspring/decimal"
)

// SaleReferences consulta si un producto aparece en ventas (guarda del borrado físico).
type SaleReferences interface {
	CountItemsByProduct(ctx context.Context, productID int64) (int64, error)
}

// UseCase casos de uso del catálogo. El precio de venta siempre se deriva con la tasa vigente.
type UseCase struct {
	repo  repository.ProductRepository
	sales SaleReferences
	rates ports.RateProvider
	log   *logger.Logger
	now   func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.ProductRepository, sales SaleReferences, rates ports.RateProvider, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{repo: repo, sales: sales, rates: rates, log: log.Component("catalog"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Save inserta (ID 0) o actualiza el producto. Recalcula el precio con la tasa
// vigente, valida y verifica unicidad de SKU y código de barras. Devuelve el ID.
func (uc *UseCase) Save(ctx context.Context, p *entity.Product) (int64, error) {
	rate, err := uc.rates.CurrentRate(ctx)
	if err != nil {
		return 0, err
	}
	p.SKU = strings.TrimSpace(p.SKU)
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.ApplyExchangeRate(rate)
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if err := uc.checkUnique(ctx, p); err != nil {
		return 0, err
	}

	now := uc.now()
	p.UpdatedAt = now
	if p.ID == 0 {
		p.CreatedAt = now
		if err := uc.repo.Create(ctx, p); err != nil {
			return 0, err
		}
		uc.log.Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("producto creado")
		return p.ID, nil
	}
	if err := uc.repo.Update(ctx, p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (uc *UseCase) checkUnique(ctx context.Context, p *entity.Product) error {
	if p.SKU != "" {
		other, err := uc.repo.GetBySKU(ctx, p.SKU)
		if err != nil {
			return err
		}
		if other != nil && other.ID != p.ID {
			return domain.ErrDuplicate
		}
	}
	if p.Barcode != "" {
		other, err := uc.repo.GetByBarcode(ctx, p.Barcode)
		if err != nil {
			return err
		}
		if other != nil && other.ID != p.ID {
			return domain.ErrDuplicate
		}
	}
	return nil
}

// Create crea un producto desde el DTO.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p := entity.NewProduct(in.Name, in.CostUSD, in.StockQuantity)
	p.SKU = in.SKU
	p.Barcode = in.Barcode
	p.Description = in.Description
	p.Category = in.Category
	if in.MarginPercent != nil {
		p.MarginPercent = *in.MarginPercent
	}
	if in.MinStockAlert != nil {
		p.MinStockAlert = *in.MinStockAlert
	}
	if _, err := uc.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// Update actualiza un producto desde el DTO. El stock no se modifica aquí.
func (uc *UseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		p.SKU = *in.SKU
	}
	if in.Barcode != nil {
		p.Barcode = *in.Barcode
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.CostUSD != nil {
		p.CostUSD = *in.CostUSD
	}
	if in.MarginPercent != nil {
		p.MarginPercent = *in.MarginPercent
	}
	if in.MinStockAlert != nil {
		p.MinStockAlert = *in.MinStockAlert
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if _, err := uc.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// FindByID devuelve el producto o (nil, nil) si no existe.
func (uc *UseCase) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	return uc.repo.GetByID(ctx, id)
}

// FindBySKU devuelve el producto o (nil, nil) si no existe.
func (uc *UseCase) FindBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return uc.repo.GetBySKU(ctx, strings.TrimSpace(sku))
}

// FindByBarcode devuelve el producto o (nil, nil) si no existe.
func (uc *UseCase) FindByBarcode(ctx context.Context, code string) (*entity.Product, error) {
	return uc.repo.GetByBarcode(ctx, strings.TrimSpace(code))
}

// UpdateStock fija la cantidad en stock; domain.ErrNotFound si el producto no existe.
func (uc *UseCase) UpdateStock(ctx context.Context, id int64, quantity int) error {
	if quantity < 0 {
		return domain.NewValidationError("stock_quantity", "el stock no puede ser negativo")
	}
	return uc.repo.UpdateStock(ctx, id, quantity)
}

// AdjustStock suma delta al stock actual (puede ser negativo); el resultado nunca baja de 0.
func (uc *UseCase) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return 0, err
	}
	next := max(p.StockQuantity+delta, 0)
	if err := uc.repo.UpdateStock(ctx, id, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (uc *UseCase) FindAll(ctx context.Context) ([]*entity.Product, error) {
	return uc.repo.List(ctx, repository.ProductFilter{})
}

func (uc *UseCase) FindActive(ctx context.Context) ([]*entity.Product, error) {
	active := true
	return uc.repo.List(ctx, repository.ProductFilter{Active: &active})
}

// FindLowStock productos con 0 < stock <= alerta mínima.
func (uc *UseCase) FindLowStock(ctx context.Context) ([]*entity.Product, error) {
	return uc.repo.List(ctx, repository.ProductFilter{Stock: repository.StockLow})
}

// FindOutOfStock productos con stock <= 0.
func (uc *UseCase) FindOutOfStock(ctx context.Context) ([]*entity.Product, error) {
	return uc.repo.List(ctx, repository.ProductFilter{Stock: repository.StockOut})
}

func (uc *UseCase) FindByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	return uc.repo.List(ctx, repository.ProductFilter{Category: category})
}

// SearchByName búsqueda parcial sin distinguir mayúsculas.
func (uc *UseCase) SearchByName(ctx context.Context, term string) ([]*entity.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return uc.FindAll(ctx)
	}
	return uc.repo.List(ctx, repository.ProductFilter{NameContains: term})
}

func (uc *UseCase) Categories(ctx context.Context) ([]string, error) {
	return uc.repo.Categories(ctx)
}

// Activate reactiva un producto dado de baja.
func (uc *UseCase) Activate(ctx context.Context, id int64) error {
	return uc.repo.SetActive(ctx, id, true)
}

// Deactivate baja lógica: el producto deja de venderse pero conserva su historial.
func (uc *UseCase) Deactivate(ctx context.Context, id int64) error {
	return uc.repo.SetActive(ctx, id, false)
}

// Delete borrado físico; solo si ninguna venta referencia el producto.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	n, err := uc.sales.CountItemsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.StateError{
			Action: fmt.Sprintf("eliminar el producto %d", id),
			Detail: fmt.Sprintf("tiene %d items de venta registrados", n),
		}
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Int64("product_id", id).Msg("producto eliminado")
	return nil
}

// Counts contadores del catálogo.
func (uc *UseCase) Counts(ctx context.Context) (dto.CatalogCounts, error) {
	all, err := uc.FindAll(ctx)
	if err != nil {
		return dto.CatalogCounts{}, err
	}
	c := dto.CatalogCounts{Total: int64(len(all))}
	for _, p := range all {
		if p.IsActive {
			c.Active++
		}
		switch p.StockStatus() {
		case entity.StockStatusLow:
			c.LowStock++
		case entity.StockStatusOut:
			c.OutOfStock++
		}
	}
	return c, nil
}

// Reprice recalcula el precio de todos los productos con la tasa indicada. Devuelve cuántos cambiaron.
func (uc *UseCase) Reprice(ctx context.Context, rate decimal.Decimal) (int, error) {
	return Reprice(ctx, uc.repo, rate, uc.now())
}

// Reprice aplica la tasa a cada producto y persiste los que cambian de precio.
func Reprice(ctx context.Context, repo repository.ProductRepository, rate decimal.Decimal, now time.Time) (int, error) {
	if !entity.IsValidRate(rate) {
		return 0, domain.NewValidationError("rate", "tasa fuera de rango")
	}
	all, err := repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, p := range all {
		before := p.SalePrice
		p.ApplyExchangeRate(rate)
		if before.Equal(p.SalePrice) {
			continue
		}
		p.UpdatedAt = now
		if err := repo.Update(ctx, p); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func (uc *UseCase) get(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		CostUSD:       p.CostUSD,
		CostLocal:     p.CostLocal,
		MarginPercent: p.MarginPercent,
		SalePrice:     p.SalePrice,
		StockQuantity: p.StockQuantity,
		MinStockAlert: p.MinStockAlert,
		StockStatus:   p.StockStatus(),
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
