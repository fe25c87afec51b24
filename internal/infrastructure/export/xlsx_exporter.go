package export

import (
	"context"
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/application/reporting"
)

var _ reporting.ReportExporter = (*XLSXExporter)(nil)

// Hojas del libro exportado.
const (
	SheetSummary  = "Resumen"
	SheetProducts = "Productos"
	SheetDaily    = "Diario"
	SheetSales    = "Ventas"
)

// XLSXExporter exporta el reporte completo a un libro Excel de cuatro hojas.
type XLSXExporter struct{}

// NewXLSXExporter construye el exportador XLSX.
func NewXLSXExporter() *XLSXExporter { return &XLSXExporter{} }

// ExportReport escribe el libro en w.
func (e *XLSXExporter) ExportReport(_ context.Context, w io.Writer, report *dto.SalesReport) error {
	if report == nil {
		return fmt.Errorf("xlsx: reporte nil")
	}
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SheetSummary)
	f.NewSheet(SheetProducts)
	f.NewSheet(SheetDaily)
	f.NewSheet(SheetSales)

	writeSummary(f, report.Summary)
	writeTable(f, SheetProducts, []string{"Posición", "ID", "Producto", "Unidades", "Ingresos"}, productRows(report.TopProducts))
	writeTable(f, SheetDaily, []string{"Fecha", "Ventas", "Unidades", "Ingresos"}, dailyRows(report.Daily))
	writeTable(f, SheetSales, []string{
		"Recibo", "Fecha", "Estado", "Método de pago", "Cliente", "Unidades",
		"Subtotal", "IVA", "Descuento", "Total", "Tasa", "Total USD",
	}, salesRows(report.Sales))

	f.SetActiveSheet(f.GetSheetIndex(SheetSummary))
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s dto.SalesSummary) {
	rows := [][]interface{}{
		{"Desde", s.From.Format(dateTimeLayout)},
		{"Hasta", s.To.Format(dateTimeLayout)},
		{"Ventas completadas", s.CompletedCount},
		{"Ventas canceladas", s.CancelledCount},
		{"Ventas reembolsadas", s.RefundedCount},
		{"Unidades vendidas", s.UnitsSold},
		{"Subtotal", num(s.Subtotal)},
		{"IVA", num(s.TaxAmount)},
		{"Descuentos", num(s.DiscountAmount)},
		{"Ingresos", num(s.Revenue)},
		{"Ingresos USD", num(s.RevenueUSD)},
		{"Ticket promedio", num(s.AverageTicket)},
	}
	for _, p := range s.ByPayment {
		rows = append(rows, []interface{}{"Pago: " + p.PaymentMethod, num(p.Total)})
	}
	writeTable(f, SheetSummary, []string{"Concepto", "Valor"}, rows)
}

// writeTable escribe cabecera en la fila 1 y los datos desde la fila 2.
func writeTable(f *excelize.File, sheet string, header []string, rows [][]interface{}) {
	for c, h := range header {
		f.SetCellValue(sheet, cell(c, 1), h)
	}
	for r, values := range rows {
		for c, v := range values {
			f.SetCellValue(sheet, cell(c, r+2), v)
		}
	}
}

func productRows(top []dto.TopProduct) [][]interface{} {
	out := make([][]interface{}, 0, len(top))
	for _, tp := range top {
		out = append(out, []interface{}{tp.Rank, tp.ProductID, tp.ProductName, tp.UnitsSold, num(tp.Revenue)})
	}
	return out
}

func dailyRows(daily []dto.DailyTotal) [][]interface{} {
	out := make([][]interface{}, 0, len(daily))
	for _, d := range daily {
		out = append(out, []interface{}{d.Date, d.SaleCount, d.UnitsSold, num(d.Revenue)})
	}
	return out
}

func salesRows(sales []dto.SaleResponse) [][]interface{} {
	out := make([][]interface{}, 0, len(sales))
	for _, r := range saleRows(sales) {
		out = append(out, []interface{}{
			r.ReceiptNumber, r.SaleDate, r.Status, r.PaymentMethod, r.Customer, r.Items,
			r.Subtotal, r.TaxAmount, r.Discount, r.Total, r.ExchangeRate, r.TotalUSD,
		})
	}
	return out
}

func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// cell coordenada A1 para columna (base 0) y fila (base 1).
func cell(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return fmt.Sprintf("%s%d", name, row)
}
