package pdf

import (
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/vento-pos/internal/application/dto"
)

// ExportReport escribe en w el reporte de ventas del período en PDF.
func (g *MarotoGenerator) ExportReport(ctx context.Context, w io.Writer, report *dto.SalesReport) error {
	b, err := g.GenerateReportPDF(ctx, report)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// GenerateReportPDF genera el reporte: resumen, ranking de productos y totales diarios.
func (g *MarotoGenerator) GenerateReportPDF(_ context.Context, report *dto.SalesReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte nil")
	}
	s := report.Summary
	m := g.newDocument("Reporte de ventas")

	m.AddRows(row.New(16).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		),
		col.New(5).Add(
			text.New("REPORTE DE VENTAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s al %s", s.From.Format("02/01/2006"), s.To.Format("02/01/2006")), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(g.summaryRows(s)...)

	m.AddRows(sectionTitle("Productos más vendidos"))
	m.AddRows(tableHeader([]string{"#", "Producto", "Unidades", "Ingresos"}, []int{1, 6, 2, 3}))
	for _, tp := range report.TopProducts {
		m.AddRows(tableRow([]string{
			fmt.Sprintf("%d", tp.Rank), tp.ProductName, fmt.Sprintf("%d", tp.UnitsSold), g.money.Format(tp.Revenue),
		}, []int{1, 6, 2, 3}))
	}

	m.AddRows(sectionTitle("Ventas por día"))
	m.AddRows(tableHeader([]string{"Fecha", "Ventas", "Unidades", "Ingresos"}, []int{4, 2, 2, 4}))
	for _, d := range report.Daily {
		m.AddRows(tableRow([]string{
			d.Date, fmt.Sprintf("%d", d.SaleCount), fmt.Sprintf("%d", d.UnitsSold), g.money.Format(d.Revenue),
		}, []int{4, 2, 2, 4}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoGenerator) summaryRows(s dto.SalesSummary) []core.Row {
	pair := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(6).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
			col.New(6).Add(text.New(value, props.Text{Size: 9, Align: align.Right, Top: 1})),
		)
	}
	rows := []core.Row{
		sectionTitle("Resumen"),
		pair("Ventas completadas", fmt.Sprintf("%d", s.CompletedCount)),
		pair("Ventas canceladas / reembolsadas", fmt.Sprintf("%d / %d", s.CancelledCount, s.RefundedCount)),
		pair("Unidades vendidas", fmt.Sprintf("%d", s.UnitsSold)),
		pair("Subtotal", g.money.Format(s.Subtotal)),
		pair("IVA", g.money.Format(s.TaxAmount)),
		pair("Descuentos", g.money.Format(s.DiscountAmount)),
		pair("Ingresos", g.money.Format(s.Revenue)),
		pair("Ingresos (USD)", "$ "+g.money.Number(s.RevenueUSD)),
		pair("Ticket promedio", g.money.Format(s.AverageTicket)),
	}
	for _, p := range s.ByPayment {
		rows = append(rows, pair("  "+paymentLabel(p.PaymentMethod)+fmt.Sprintf(" (%d)", p.Count), g.money.Format(p.Total)))
	}
	return rows
}

func sectionTitle(title string) core.Row {
	return row.New(10).Add(col.New(12).Add(text.New(title, props.Text{
		Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 4,
	})))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		a := align.Right
		if i == 1 || i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableRow(values []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		a := align.Right
		if i == 1 || i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(v, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}
