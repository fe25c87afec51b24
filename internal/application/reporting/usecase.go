package reporting

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	"github.com/jhoicas/vento-pos/pkg/logger"
	"github.com/jhoicas/vento-pos/pkg/validate"
	"github.com/shopspring/decimal"
)

// DefaultTopLimit tamaño del ranking cuando no se indica uno.
const DefaultTopLimit = 10

// UseCase reportes sobre el libro de ventas. Solo las ventas completadas suman
// ingresos y unidades; las canceladas y reembolsadas solo se cuentan.
type UseCase struct {
	sales     repository.SaleRepository
	exporters map[Format]ReportExporter
	receipts  ReceiptPDFGenerator
	loc       *time.Location
	log       *logger.Logger
}

// NewUseCase construye el caso de uso. exporters y receipts pueden ser nil si no se exporta.
func NewUseCase(
	sales repository.SaleRepository,
	exporters map[Format]ReportExporter,
	receipts ReceiptPDFGenerator,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		sales:     sales,
		exporters: exporters,
		receipts:  receipts,
		loc:       time.Local,
		log:       log.Component("reporting"),
	}
}

// WithLocation zona horaria usada para agrupar por día.
func (uc *UseCase) WithLocation(loc *time.Location) *UseCase {
	if loc != nil {
		uc.loc = loc
	}
	return uc
}

// Summary resumen de ventas en [from, to).
func (uc *UseCase) Summary(ctx context.Context, from, to time.Time) (*dto.SalesSummary, error) {
	all, err := uc.salesIn(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return summarize(from, to, all), nil
}

// TopProducts productos más vendidos (por unidades) en [from, to).
func (uc *UseCase) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]dto.TopProduct, error) {
	all, err := uc.salesIn(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return topProducts(all, limit), nil
}

// DailyTotals ventas completadas por día, en orden cronológico.
func (uc *UseCase) DailyTotals(ctx context.Context, from, to time.Time) ([]dto.DailyTotal, error) {
	all, err := uc.salesIn(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return dailyTotals(all, uc.loc), nil
}

// ProductSales ventas de un producto en [from, to).
func (uc *UseCase) ProductSales(ctx context.Context, from, to time.Time, productID int64) (*dto.ProductSales, error) {
	all, err := uc.salesIn(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductSales{ProductID: productID, Revenue: decimal.Zero}
	for _, s := range all {
		if s.Status != entity.SaleStatusCompleted {
			continue
		}
		counted := false
		for _, it := range s.Items {
			if it.ProductID != productID {
				continue
			}
			out.ProductName = it.ProductName
			out.UnitsSold += it.Quantity
			out.Revenue = out.Revenue.Add(it.Subtotal)
			if !counted {
				out.SaleCount++
				counted = true
			}
		}
	}
	return out, nil
}

// Report arma el reporte completo del período (resumen, ranking, diario y detalle).
func (uc *UseCase) Report(ctx context.Context, req dto.ReportRequest) (*dto.SalesReport, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	all, err := uc.salesIn(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}
	rep := &dto.SalesReport{
		Summary:     *summarize(req.From, req.To, all),
		TopProducts: topProducts(all, req.Limit),
		Daily:       dailyTotals(all, uc.loc),
		Sales:       make([]dto.SaleResponse, 0, len(all)),
	}
	for _, s := range all {
		rep.Sales = append(rep.Sales, *ToSaleResponse(s))
	}
	return rep, nil
}

// Export escribe el reporte del período en w con el formato pedido.
func (uc *UseCase) Export(ctx context.Context, req dto.ReportRequest, format Format, w io.Writer) error {
	exp, ok := uc.exporters[Format(strings.ToLower(string(format)))]
	if !ok {
		return domain.NewValidationError("format", fmt.Sprintf("formato de exportación no soportado %q", format))
	}
	rep, err := uc.Report(ctx, req)
	if err != nil {
		return err
	}
	if err := exp.ExportReport(ctx, w, rep); err != nil {
		return fmt.Errorf("exportar reporte %s: %w", format, err)
	}
	uc.log.Info().
		Str("format", string(format)).
		Time("from", req.From).
		Time("to", req.To).
		Int("sales", len(rep.Sales)).
		Msg("reporte exportado")
	return nil
}

// Receipt genera el PDF del recibo de una venta. Devuelve bytes y nombre de archivo sugerido.
func (uc *UseCase) Receipt(ctx context.Context, saleID int64) ([]byte, string, error) {
	if uc.receipts == nil {
		return nil, "", domain.NewValidationError("receipt", "no hay generador de recibos configurado")
	}
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	if sale == nil {
		return nil, "", fmt.Errorf("%w: venta %d", domain.ErrNotFound, saleID)
	}
	pdfBytes, err := uc.receipts.GenerateReceiptPDF(ctx, ToSaleResponse(sale))
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}
	return pdfBytes, sale.ReceiptNumber + ".pdf", nil
}

func (uc *UseCase) salesIn(ctx context.Context, from, to time.Time) ([]*entity.Sale, error) {
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "el fin del rango debe ser posterior al inicio")
	}
	return uc.sales.List(ctx, repository.SaleFilter{From: &from, To: &to})
}

func summarize(from, to time.Time, all []*entity.Sale) *dto.SalesSummary {
	out := &dto.SalesSummary{
		From:           from,
		To:             to,
		Subtotal:       decimal.Zero,
		TaxAmount:      decimal.Zero,
		DiscountAmount: decimal.Zero,
		Revenue:        decimal.Zero,
		RevenueUSD:     decimal.Zero,
		AverageTicket:  decimal.Zero,
		ByPayment:      []dto.PaymentTotal{},
	}
	byPayment := map[entity.PaymentMethod]*dto.PaymentTotal{}
	for _, s := range all {
		switch s.Status {
		case entity.SaleStatusCancelled:
			out.CancelledCount++
			continue
		case entity.SaleStatusRefunded:
			out.RefundedCount++
			continue
		case entity.SaleStatusCompleted:
		default:
			continue
		}
		out.CompletedCount++
		out.UnitsSold += s.TotalQuantity()
		out.Subtotal = out.Subtotal.Add(s.Subtotal)
		out.TaxAmount = out.TaxAmount.Add(s.TaxAmount)
		out.DiscountAmount = out.DiscountAmount.Add(s.DiscountAmount)
		out.Revenue = out.Revenue.Add(s.Total)
		out.RevenueUSD = out.RevenueUSD.Add(s.TotalInUSD())

		pt, ok := byPayment[s.PaymentMethod]
		if !ok {
			pt = &dto.PaymentTotal{PaymentMethod: s.PaymentMethod.String(), Total: decimal.Zero}
			byPayment[s.PaymentMethod] = pt
		}
		pt.Count++
		pt.Total = pt.Total.Add(s.Total)
	}
	if out.CompletedCount > 0 {
		out.AverageTicket = out.Revenue.Div(decimal.NewFromInt(int64(out.CompletedCount))).Round(2)
	}

	methods := make([]entity.PaymentMethod, 0, len(byPayment))
	for m := range byPayment {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	for _, m := range methods {
		out.ByPayment = append(out.ByPayment, *byPayment[m])
	}
	return out
}

func topProducts(all []*entity.Sale, limit int) []dto.TopProduct {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	agg := map[int64]*dto.TopProduct{}
	for _, s := range all {
		if s.Status != entity.SaleStatusCompleted {
			continue
		}
		for _, it := range s.Items {
			tp, ok := agg[it.ProductID]
			if !ok {
				tp = &dto.TopProduct{ProductID: it.ProductID, ProductName: it.ProductName, Revenue: decimal.Zero}
				agg[it.ProductID] = tp
			}
			tp.UnitsSold += it.Quantity
			tp.Revenue = tp.Revenue.Add(it.Subtotal)
		}
	}

	out := make([]dto.TopProduct, 0, len(agg))
	for _, tp := range agg {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func dailyTotals(all []*entity.Sale, loc *time.Location) []dto.DailyTotal {
	agg := map[string]*dto.DailyTotal{}
	for _, s := range all {
		if s.Status != entity.SaleStatusCompleted {
			continue
		}
		day := s.SaleDate.In(loc).Format("2006-01-02")
		d, ok := agg[day]
		if !ok {
			d = &dto.DailyTotal{Date: day, Revenue: decimal.Zero}
			agg[day] = d
		}
		d.SaleCount++
		d.UnitsSold += s.TotalQuantity()
		d.Revenue = d.Revenue.Add(s.Total)
	}
	out := make([]dto.DailyTotal, 0, len(agg))
	for _, d := range agg {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ToSaleResponse convierte la venta al DTO de salida.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		})
	}
	return &dto.SaleResponse{
		ID:               s.ID,
		ExternalID:       s.ExternalID,
		ReceiptNumber:    s.ReceiptNumber,
		SaleDate:         s.SaleDate,
		Items:            items,
		Subtotal:         s.Subtotal,
		TaxPercent:       s.TaxPercent,
		TaxAmount:        s.TaxAmount,
		DiscountAmount:   s.DiscountAmount,
		Total:            s.Total,
		TotalUSD:         s.TotalInUSD(),
		ExchangeRate:     s.ExchangeRate,
		CurrencyCode:     s.CurrencyCode,
		PaymentMethod:    s.PaymentMethod.String(),
		CustomerName:     s.CustomerName,
		CustomerPhone:    s.CustomerPhone,
		CustomerDocument: s.CustomerDocument,
		Status:           s.Status.String(),
		Notes:            s.Notes,
		CashierName:      s.CashierName,
	}
}
