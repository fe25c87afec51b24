package export_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/infrastructure/export"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleReport() *dto.SalesReport {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sale := dto.SaleResponse{
		ExternalID:    "0b8f2c4e-1d2a-4f7e-9a51-2c3d4e5f6a7b",
		ReceiptNumber: "REC-20240315-0001",
		SaleDate:      time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC),
		Items: []dto.SaleItemResponse{
			{ProductID: 1, ProductName: "Harina", UnitPrice: dec("10"), Quantity: 3, Subtotal: dec("30")},
		},
		Subtotal:       dec("30"),
		TaxPercent:     dec("16"),
		TaxAmount:      dec("4.8"),
		DiscountAmount: decimal.Zero,
		Total:          dec("34.8"),
		TotalUSD:       dec("0.95"),
		ExchangeRate:   dec("36.5"),
		PaymentMethod:  "cash",
		CustomerName:   "Ana, Gómez",
		Status:         "completed",
	}
	return &dto.SalesReport{
		Summary: dto.SalesSummary{
			From: from, To: from.AddDate(0, 1, 0), CompletedCount: 1, UnitsSold: 3,
			Subtotal: dec("30"), TaxAmount: dec("4.8"), DiscountAmount: decimal.Zero,
			Revenue: dec("34.8"), RevenueUSD: dec("0.95"), AverageTicket: dec("34.8"),
			ByPayment: []dto.PaymentTotal{{PaymentMethod: "cash", Count: 1, Total: dec("34.8")}},
		},
		TopProducts: []dto.TopProduct{{Rank: 1, ProductID: 1, ProductName: "Harina", UnitsSold: 3, Revenue: dec("30")}},
		Daily:       []dto.DailyTotal{{Date: "2024-03-15", SaleCount: 1, UnitsSold: 3, Revenue: dec("34.8")}},
		Sales:       []dto.SaleResponse{sale},
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewCSVExporter().ExportReport(context.Background(), &buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "recibo,fecha,estado,metodo_pago,cliente,unidades"))
	assert.Contains(t, lines[1], "REC-20240315-0001,2024-03-15 09:05:00,completed,cash")
	assert.Contains(t, lines[1], `"Ana, Gómez",3,30.00,4.80,0.00,34.80,36.50,0.95`)
}

func TestCSVExporter_EmptyReport(t *testing.T) {
	rep := sampleReport()
	rep.Sales = nil

	var buf bytes.Buffer
	require.NoError(t, export.NewCSVExporter().ExportReport(context.Background(), &buf, rep))
	assert.True(t, strings.HasPrefix(buf.String(), "recibo,"))
}

func TestXLSXExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewXLSXExporter().ExportReport(context.Background(), &buf, sampleReport()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "Concepto", f.GetCellValue(export.SheetSummary, "A1"))
	assert.Equal(t, "Ventas completadas", f.GetCellValue(export.SheetSummary, "A4"))
	assert.Equal(t, "1", f.GetCellValue(export.SheetSummary, "B4"))
	assert.Equal(t, "Harina", f.GetCellValue(export.SheetProducts, "C2"))
	assert.Equal(t, "2024-03-15", f.GetCellValue(export.SheetDaily, "A2"))
	assert.Equal(t, "REC-20240315-0001", f.GetCellValue(export.SheetSales, "A2"))
	assert.Equal(t, "34.80", f.GetCellValue(export.SheetSales, "J2"))
}

func TestExporters_NilReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, export.NewCSVExporter().ExportReport(context.Background(), &buf, nil))
	assert.Error(t, export.NewXLSXExporter().ExportReport(context.Background(), &buf, nil))
}
