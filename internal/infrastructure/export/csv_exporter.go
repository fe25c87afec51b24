// Package export escribe el reporte de ventas en formatos tabulares (CSV y XLSX).
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/application/reporting"
)

var _ reporting.ReportExporter = (*CSVExporter)(nil)

// saleRow una fila por venta del período.
type saleRow struct {
	ReceiptNumber string `csv:"recibo"`
	SaleDate      string `csv:"fecha"`
	Status        string `csv:"estado"`
	PaymentMethod string `csv:"metodo_pago"`
	Customer      string `csv:"cliente"`
	Items         int    `csv:"unidades"`
	Subtotal      string `csv:"subtotal"`
	TaxAmount     string `csv:"iva"`
	Discount      string `csv:"descuento"`
	Total         string `csv:"total"`
	ExchangeRate  string `csv:"tasa"`
	TotalUSD      string `csv:"total_usd"`
	ExternalID    string `csv:"id_externo"`
}

// CSVExporter exporta el detalle de ventas, una fila por venta.
type CSVExporter struct{}

// NewCSVExporter construye el exportador CSV.
func NewCSVExporter() *CSVExporter { return &CSVExporter{} }

// ExportReport escribe las ventas del reporte como CSV con cabecera.
func (e *CSVExporter) ExportReport(_ context.Context, w io.Writer, report *dto.SalesReport) error {
	if report == nil {
		return fmt.Errorf("csv: reporte nil")
	}
	rows := saleRows(report.Sales)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("csv: escribir ventas: %w", err)
	}
	return nil
}

func saleRows(sales []dto.SaleResponse) []*saleRow {
	rows := make([]*saleRow, 0, len(sales))
	for _, s := range sales {
		units := 0
		for _, it := range s.Items {
			units += it.Quantity
		}
		rows = append(rows, &saleRow{
			ReceiptNumber: s.ReceiptNumber,
			SaleDate:      s.SaleDate.Format(dateTimeLayout),
			Status:        s.Status,
			PaymentMethod: s.PaymentMethod,
			Customer:      s.CustomerName,
			Items:         units,
			Subtotal:      s.Subtotal.StringFixed(2),
			TaxAmount:     s.TaxAmount.StringFixed(2),
			Discount:      s.DiscountAmount.StringFixed(2),
			Total:         s.Total.StringFixed(2),
			ExchangeRate:  s.ExchangeRate.StringFixed(2),
			TotalUSD:      s.TotalUSD.StringFixed(2),
			ExternalID:    s.ExternalID,
		})
	}
	return rows
}

const dateTimeLayout = "2006-01-02 15:04:05"
