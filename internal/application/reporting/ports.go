package reporting

import (
	"context"
	"io"

	"github.com/jhoicas/vento-pos/internal/application/dto"
)

// Format formato de exportación de reportes.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ReportExporter escribe un reporte de ventas en w (CSV, XLSX o PDF según la implementación).
type ReportExporter interface {
	ExportReport(ctx context.Context, w io.Writer, report *dto.SalesReport) error
}

// ReceiptPDFGenerator genera el recibo imprimible de una venta y devuelve sus bytes.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, sale *dto.SaleResponse) ([]byte, error)
}
