package sales_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
)

var errStore = errors.New("almacén no disponible")

// memProducts catálogo en memoria con fallas inyectables por producto.
type memProducts struct {
	mu       sync.Mutex
	items    map[int64]entity.Product
	nextID   int64
	failSet  map[int64]int // producto -> número de UpdateStock que falla (1 = el primero)
	setCalls map[int64]int
}

func newMemProducts() *memProducts {
	return &memProducts{items: map[int64]entity.Product{}, failSet: map[int64]int{}, setCalls: map[int64]int{}}
}

func (m *memProducts) add(name, price string, stock int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.items[m.nextID] = entity.Product{
		ID: m.nextID, Name: name, SalePrice: mustDec(price), StockQuantity: stock, IsActive: true,
	}
	return m.nextID
}

func (m *memProducts) stock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].StockQuantity
}

func (m *memProducts) setStock(id int64, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.items[id]
	p.StockQuantity = qty
	m.items[id] = p
}

// failOn hace fallar la n-ésima llamada a UpdateStock del producto.
func (m *memProducts) failOn(id int64, nth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet[id] = nth
}

func (m *memProducts) Create(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.items[p.ID] = *p
	return nil
}

func (m *memProducts) Update(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return domain.ErrNotFound
	}
	m.items[p.ID] = *p
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memProducts) find(match func(entity.Product) bool) *entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if match(p) {
			return &p
		}
	}
	return nil
}

func (m *memProducts) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	return m.find(func(p entity.Product) bool { return sku != "" && p.SKU == sku }), nil
}

func (m *memProducts) GetByBarcode(_ context.Context, code string) (*entity.Product, error) {
	return m.find(func(p entity.Product) bool { return code != "" && p.Barcode == code }), nil
}

func (m *memProducts) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Product
	for _, p := range m.items {
		if f.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProducts) UpdateStock(_ context.Context, id int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls[id]++
	if nth, ok := m.failSet[id]; ok && (nth == 0 || nth == m.setCalls[id]) {
		return errStore
	}
	p, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if qty < 0 {
		return fmt.Errorf("stock negativo para %d", id)
	}
	p.StockQuantity = qty
	m.items[id] = p
	return nil
}

func (m *memProducts) SetActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = active
	m.items[id] = p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memProducts) Categories(context.Context) ([]string, error) { return nil, nil }

// memSales libro en memoria con fallas inyectables.
type memSales struct {
	mu           sync.Mutex
	sales        map[int64]entity.Sale
	nextID       int64
	nextItem     int64
	failCreate   error
	failStatus   error
	statusWrites int
}

func newMemSales() *memSales { return &memSales{sales: map[int64]entity.Sale{}} }

func (m *memSales) Create(_ context.Context, s *entity.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	m.nextID++
	s.ID = m.nextID
	for i := range s.Items {
		m.nextItem++
		s.Items[i].ID = m.nextItem
		s.Items[i].SaleID = s.ID
	}
	cp := *s
	cp.Items = append([]entity.SaleItem(nil), s.Items...)
	m.sales[s.ID] = cp
	return nil
}

func (m *memSales) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[id]
	if !ok {
		return nil, nil
	}
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	return &s, nil
}

func (m *memSales) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Sale
	for _, s := range m.sales {
		if f.Status != nil && s.Status != *f.Status {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memSales) UpdateStatus(_ context.Context, id int64, status entity.SaleStatus, notes *string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStatus != nil {
		return m.failStatus
	}
	s, ok := m.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = at
	if notes != nil {
		s.Notes = *notes
	}
	m.sales[id] = s
	m.statusWrites++
	return nil
}

func (m *memSales) CountItemsByProduct(_ context.Context, productID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.sales {
		for _, it := range s.Items {
			if it.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

func (m *memSales) LatestReceiptNumber(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sales[m.nextID]; ok {
		return s.ReceiptNumber, nil
	}
	return "", nil
}
