package sqlite

import (
	"time"

	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Los montos se guardan como TEXT (decimal.Decimal implementa Scanner/Valuer)
// y las fechas en UTC para que las comparaciones de rango en SQL sean correctas.

type productModel struct {
	ID            int64           `gorm:"column:id;primaryKey"`
	SKU           *string         `gorm:"column:sku"`
	Barcode       *string         `gorm:"column:barcode"`
	Name          string          `gorm:"column:name"`
	Description   string          `gorm:"column:description"`
	Category      string          `gorm:"column:category"`
	CostUSD       decimal.Decimal `gorm:"column:cost_usd"`
	CostLocal     decimal.Decimal `gorm:"column:cost_local"`
	MarginPercent decimal.Decimal `gorm:"column:margin_percent"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price"`
	StockQuantity int             `gorm:"column:stock_quantity"`
	MinStockAlert int             `gorm:"column:min_stock_alert"`
	IsActive      bool            `gorm:"column:is_active"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (productModel) TableName() string { return "products" }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toProductModel(p *entity.Product) *productModel {
	return &productModel{
		ID:            p.ID,
		SKU:           nullable(p.SKU),
		Barcode:       nullable(p.Barcode),
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		CostUSD:       p.CostUSD,
		CostLocal:     p.CostLocal,
		MarginPercent: p.MarginPercent,
		SalePrice:     p.SalePrice,
		StockQuantity: p.StockQuantity,
		MinStockAlert: p.MinStockAlert,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func (m *productModel) toEntity() *entity.Product {
	return &entity.Product{
		ID:            m.ID,
		SKU:           deref(m.SKU),
		Barcode:       deref(m.Barcode),
		Name:          m.Name,
		Description:   m.Description,
		Category:      m.Category,
		CostUSD:       m.CostUSD,
		CostLocal:     m.CostLocal,
		MarginPercent: m.MarginPercent,
		SalePrice:     m.SalePrice,
		StockQuantity: m.StockQuantity,
		MinStockAlert: m.MinStockAlert,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type saleModel struct {
	ID               int64           `gorm:"column:id;primaryKey"`
	ExternalID       string          `gorm:"column:external_id"`
	ReceiptNumber    string          `gorm:"column:receipt_number"`
	SaleDate         time.Time       `gorm:"column:sale_date"`
	Subtotal         decimal.Decimal `gorm:"column:subtotal"`
	TaxPercent       decimal.Decimal `gorm:"column:tax_percent"`
	TaxAmount        decimal.Decimal `gorm:"column:tax_amount"`
	DiscountAmount   decimal.Decimal `gorm:"column:discount_amount"`
	Total            decimal.Decimal `gorm:"column:total"`
	ExchangeRate     decimal.Decimal `gorm:"column:exchange_rate"`
	CurrencyCode     string          `gorm:"column:currency_code"`
	PaymentMethod    string          `gorm:"column:payment_method"`
	CustomerName     string          `gorm:"column:customer_name"`
	CustomerPhone    string          `gorm:"column:customer_phone"`
	CustomerDocument string          `gorm:"column:customer_document"`
	Status           string          `gorm:"column:status"`
	Notes            string          `gorm:"column:notes"`
	CashierName      string          `gorm:"column:cashier_name"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
	Items            []saleItemModel `gorm:"foreignKey:SaleID"`
}

func (saleModel) TableName() string { return "sales" }

type saleItemModel struct {
	ID          int64           `gorm:"column:id;primaryKey"`
	SaleID      int64           `gorm:"column:sale_id"`
	ProductID   int64           `gorm:"column:product_id"`
	ProductName string          `gorm:"column:product_name"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price"`
	Quantity    int             `gorm:"column:quantity"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime:false"`
}

func (saleItemModel) TableName() string { return "sale_items" }

func toSaleModel(s *entity.Sale) *saleModel {
	m := &saleModel{
		ID:               s.ID,
		ExternalID:       s.ExternalID,
		ReceiptNumber:    s.ReceiptNumber,
		SaleDate:         s.SaleDate.UTC(),
		Subtotal:         s.Subtotal,
		TaxPercent:       s.TaxPercent,
		TaxAmount:        s.TaxAmount,
		DiscountAmount:   s.DiscountAmount,
		Total:            s.Total,
		ExchangeRate:     s.ExchangeRate,
		CurrencyCode:     s.CurrencyCode,
		PaymentMethod:    s.PaymentMethod.String(),
		CustomerName:     s.CustomerName,
		CustomerPhone:    s.CustomerPhone,
		CustomerDocument: s.CustomerDocument,
		Status:           s.Status.String(),
		Notes:            s.Notes,
		CashierName:      s.CashierName,
		CreatedAt:        s.CreatedAt.UTC(),
		UpdatedAt:        s.UpdatedAt.UTC(),
		Items:            make([]saleItemModel, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		m.Items = append(m.Items, saleItemModel{
			ID:          it.ID,
			SaleID:      it.SaleID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
			CreatedAt:   it.CreatedAt.UTC(),
		})
	}
	return m
}

func (m *saleModel) toEntity() (*entity.Sale, error) {
	status, err := entity.ParseSaleStatus(m.Status)
	if err != nil {
		return nil, err
	}
	method, err := entity.ParsePaymentMethod(m.PaymentMethod)
	if err != nil {
		return nil, err
	}
	s := &entity.Sale{
		ID:               m.ID,
		ExternalID:       m.ExternalID,
		ReceiptNumber:    m.ReceiptNumber,
		SaleDate:         m.SaleDate,
		Subtotal:         m.Subtotal,
		TaxPercent:       m.TaxPercent,
		TaxAmount:        m.TaxAmount,
		DiscountAmount:   m.DiscountAmount,
		Total:            m.Total,
		ExchangeRate:     m.ExchangeRate,
		CurrencyCode:     m.CurrencyCode,
		PaymentMethod:    method,
		CustomerName:     m.CustomerName,
		CustomerPhone:    m.CustomerPhone,
		CustomerDocument: m.CustomerDocument,
		Status:           status,
		Notes:            m.Notes,
		CashierName:      m.CashierName,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		Items:            make([]entity.SaleItem, 0, len(m.Items)),
	}
	for _, it := range m.Items {
		s.Items = append(s.Items, entity.SaleItem{
			ID:          it.ID,
			SaleID:      it.SaleID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
			CreatedAt:   it.CreatedAt,
		})
	}
	return s, nil
}

type exchangeRateModel struct {
	ID        int64           `gorm:"column:id;primaryKey"`
	Rate      decimal.Decimal `gorm:"column:rate"`
	Source    string          `gorm:"column:source"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime:false"`
}

func (exchangeRateModel) TableName() string { return "exchange_rates" }
