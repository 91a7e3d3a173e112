// Package pdf genera el reporte de clientes en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + operador   │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: total y cantidad por estado                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Razón social | RUT | Teléfono | Estado | Ub │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR al panel + leyenda                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

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

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorStripe  = &props.Color{Red: 235, Green: 241, Blue: 248}
)

// ReportData contenido del reporte.
type ReportData struct {
	Title       string
	GeneratedBy string // nombre del operador
	GeneratedAt time.Time
	PanelURL    string // vacío = sin QR
	Rows        []dto.CustomerRow
}

// ── Generator ─────────────────────────────────────────────────────────────────

// CustomerReportGenerator arma el reporte con Maroto v2.
type CustomerReportGenerator struct{}

// NewCustomerReportGenerator construye el generador.
func NewCustomerReportGenerator() *CustomerReportGenerator { return &CustomerReportGenerator{} }

// Generate genera el PDF y devuelve sus bytes.
func (g *CustomerReportGenerator) Generate(_ context.Context, data ReportData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Reporte de Clientes"
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(data.Title, true).
		WithAuthor(nonEmpty(data.GeneratedBy, "Panel de Clientes"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(data.Rows))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(data.Rows)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(data)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(data ReportData) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(data.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado por: "+nonEmpty(data.GeneratedBy, "-"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Fecha: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// summaryRow total de clientes y conteo por estado.
func summaryRow(rows []dto.CustomerRow) core.Row {
	counts := CountByEstado(rows)
	parts := make([]string, 0, len(entity.EstadosValidos))
	for _, e := range entity.EstadosValidos {
		parts = append(parts, fmt.Sprintf("%s: %d", e, counts[e]))
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("TOTAL DE CLIENTES: %d", len(rows)), props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1,
			}),
			text.New(strings.Join(parts, "   |   "), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Razón social", 4, align.Left),
		h("RUT", 2, align.Left),
		h("Teléfono", 2, align.Left),
		h("Estado", 1, align.Center),
		h("Ubic.", 1, align.Center),
	)
}

// tableRows una fila por cliente, con fondo alterno.
func tableRows(rows []dto.CustomerRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for i, r := range rows {
		ubic := "-"
		if r.Latitud != nil && r.Longitud != nil {
			ubic = "Sí"
		}
		fila := row.New(7).Add(
			cell(nonEmpty(r.CodigoAlte, "-"), 2, align.Left),
			cell(nonEmpty(r.RazonSocial, r.Empresa), 4, align.Left),
			cell(nonEmpty(r.RUT, "-"), 2, align.Left),
			cell(nonEmpty(r.Telefono, "-"), 2, align.Left),
			cell(r.Estado, 1, align.Center),
			cell(ubic, 1, align.Center),
		)
		if i%2 == 1 {
			fila = fila.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, fila)
	}
	if len(result) == 0 {
		result = append(result, row.New(10).Add(col.New(12).Add(
			text.New("No hay clientes para mostrar.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	return result
}

func footerRows(data ReportData) []core.Row {
	leyenda := "Datos obtenidos del backend de clientes al momento de la generación. " +
		"Pueden no reflejar cambios posteriores."
	if data.PanelURL == "" {
		return []core.Row{row.New(8).Add(col.New(12).Add(
			text.New(leyenda, props.Text{Size: 6.5, Color: colorGray, Top: 2}),
		))}
	}
	return []core.Row{row.New(36).Add(
		col.New(3).Add(code.NewQr(data.PanelURL, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Escanea el código QR para abrir el panel de clientes.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(leyenda, props.Text{Size: 6.5, Top: 14, Left: 3, Color: colorGray}),
		),
	)}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// CountByEstado cantidad de filas por estado.
func CountByEstado(rows []dto.CustomerRow) map[string]int {
	out := make(map[string]int, len(entity.EstadosValidos))
	for _, r := range rows {
		out[r.Estado]++
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
