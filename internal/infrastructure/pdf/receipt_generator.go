// Package pdf genera los documentos imprimibles del punto de venta con Maroto v2:
// el recibo de una venta y el reporte de ventas de un período.
//
// Layout del recibo (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del comercio  │  N° Recibo + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + Documento + Teléfono / Método de pago     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Subtotal               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / IVA / Descuento / TOTAL / Ref. USD      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el identificador de la venta + leyenda       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/application/reporting"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var (
	_ reporting.ReceiptPDFGenerator = (*MarotoGenerator)(nil)
	_ reporting.ReportExporter      = (*MarotoGenerator)(nil)
)

// MarotoGenerator implementa el recibo y el reporte de ventas en PDF.
type MarotoGenerator struct {
	storeName string
	money     *Money
}

// NewMarotoGenerator construye el generador. currency es el código de la moneda local (VES).
func NewMarotoGenerator(storeName, currency string) *MarotoGenerator {
	if storeName == "" {
		storeName = "Vento POS"
	}
	return &MarotoGenerator{storeName: storeName, money: NewMoney(currency)}
}

func (g *MarotoGenerator) newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.storeName, true).
		Build()
	return maroto.New(cfg)
}

// GenerateReceiptPDF genera el recibo de la venta y devuelve sus bytes.
func (g *MarotoGenerator) GenerateReceiptPDF(_ context.Context, sale *dto.SaleResponse) ([]byte, error) {
	if sale == nil {
		return nil, fmt.Errorf("pdf: venta nil")
	}
	m := g.newDocument("Recibo " + sale.ReceiptNumber)

	m.AddRows(g.headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemsHeaderRow())
	m.AddRows(g.itemRows(sale.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(sale))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: comercio (izq) y N° de recibo + fecha (der).
func (g *MarotoGenerator) headerRow(sale *dto.SaleResponse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Cajero: "+nonEmpty(sale.CashierName, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RECIBO DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(sale.ReceiptNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+sale.SaleDate.Local().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del cliente (opcionales) y método de pago.
func customerRow(sale *dto.SaleResponse) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(sale.CustomerName, "Consumidor final"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Documento: %s   |   Tel: %s",
				nonEmpty(sale.CustomerDocument, "—"),
				nonEmpty(sale.CustomerPhone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("PAGO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(paymentLabel(sale.PaymentMethod), props.Text{
				Size: 10, Align: align.Right, Top: 6,
			}),
			text.New(statusLabel(sale.Status), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

// itemsHeaderRow: cabecera de la tabla de items.
func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// itemRows: una fila por item vendido.
func (g *MarotoGenerator) itemRows(items []dto.SaleItemResponse) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				g.money.Format(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				g.money.Format(it.Subtotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoGenerator) totalsRow(sale *dto.SaleResponse) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}

	return row.New(32).Add(
		col.New(4),
		col.New(4).Add(
			label("Subtotal:"),
			text.New(fmt.Sprintf("IVA (%s%%):", sale.TaxPercent.String()), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5,
			}),
			text.New("Descuento:", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 10,
			}),
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 2, Top: 16,
			}),
			text.New("Ref. USD:", props.Text{
				Size: 8, Align: align.Right, Color: colorGray, Right: 2, Top: 23,
			}),
		),
		col.New(4).Add(
			value(g.money.Format(sale.Subtotal), 0),
			value(g.money.Format(sale.TaxAmount), 5),
			value("-"+g.money.Format(sale.DiscountAmount), 10),
			text.New(g.money.Format(sale.Total), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 1, Top: 16,
			}),
			text.New(fmt.Sprintf("$ %s (tasa %s)", g.money.Number(sale.TotalUSD), g.money.Number(sale.ExchangeRate)), props.Text{
				Size: 8, Align: align.Right, Color: colorGray, Right: 1, Top: 23,
			}),
		),
	)
}

// footerRow: QR con el identificador estable de la venta + leyenda.
func footerRow(sale *dto.SaleResponse) core.Row {
	legend := col.New(9).Add(
		text.New("Gracias por su compra.", props.Text{
			Style: fontstyle.Bold, Size: 10, Top: 4, Left: 3, Color: colorPrimary,
		}),
		text.New("Conserve este recibo para cualquier reclamo o devolución.", props.Text{
			Size: 8, Top: 12, Left: 3, Color: colorGray,
		}),
		text.New("ID: "+sale.ExternalID, props.Text{
			Size: 6.5, Top: 20, Left: 3, Color: colorGray,
		}),
	)
	if sale.ExternalID == "" {
		return row.New(30).Add(col.New(3), legend)
	}
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(sale.ExternalID, props.Rect{Percent: 95, Center: true})),
		legend,
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func paymentLabel(method string) string {
	m, err := entity.ParsePaymentMethod(method)
	if err != nil {
		return method
	}
	return m.DisplayName()
}

func statusLabel(status string) string {
	st, err := entity.ParseSaleStatus(status)
	if err != nil {
		return status
	}
	return st.DisplayName()
}
