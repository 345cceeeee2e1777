package document

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/invorya/cyclecount-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// BuildPDF genera la rendición PDF del documento de ajuste usando Maroto v2.
func BuildPDF(a *entity.AuditRecord) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Documento de Ajuste - Conteo Cíclico", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(a))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(a))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(a) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(totalsRow(a))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq) e identificación del registro (der).
func headerRow(a *entity.AuditRecord) core.Row {
	return row.New(12).Add(
		text.NewCol(7, "Documento de Ajuste de Inventario", props.Text{
			Size: 13, Style: fontstyle.Bold, Color: colorPrimary,
		}),
		text.NewCol(5, fmt.Sprintf("Auditoría %s\n%s", a.ID, a.CommittedAt.Format("2006-01-02 15:04")), props.Text{
			Size: 8, Align: align.Right, Color: colorGray,
		}),
	)
}

// summaryRow: sesión, responsable y totales del commit.
func summaryRow(a *entity.AuditRecord) core.Row {
	return row.New(10).Add(
		text.NewCol(5, fmt.Sprintf("Sesión: %s", a.SessionID), props.Text{Size: 8}),
		text.NewCol(3, fmt.Sprintf("Confirmó: %s", a.CommittedBy), props.Text{Size: 8}),
		text.NewCol(2, fmt.Sprintf("Líneas: %d", a.TotalItems), props.Text{Size: 8}),
		text.NewCol(2, fmt.Sprintf("Ajustes: %s", a.TotalAdjustments.String()), props.Text{Size: 8, Align: align.Right}),
	)
}

func tableHeaderRow() core.Row {
	bold := props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary}
	return row.New(7).Add(
		text.NewCol(2, "SKU", bold),
		text.NewCol(3, "Descripción", bold),
		text.NewCol(3, "Movimiento", bold),
		text.NewCol(1, "Cant.", bold),
		text.NewCol(2, "Motivo", bold),
		text.NewCol(1, "Fecha Fab.", bold),
	)
}

func tableRows(a *entity.AuditRecord) []core.Row {
	rows := make([]core.Row, 0, len(a.Movements))
	for i := range a.Movements {
		m := &a.Movements[i]
		mfg := ""
		if m.NewMfgDate != nil {
			mfg = m.NewMfgDate.Format("2006-01-02")
		}
		rows = append(rows, row.New(6).Add(
			text.NewCol(2, m.SKUID, props.Text{Size: 7}),
			text.NewCol(3, m.Description, props.Text{Size: 7}),
			text.NewCol(3, m.MovementType, props.Text{Size: 7}),
			text.NewCol(1, m.Quantity().String(), props.Text{Size: 7}),
			text.NewCol(2, m.ReasonDescription, props.Text{Size: 7}),
			text.NewCol(1, mfg, props.Text{Size: 7}),
		))
	}
	return rows
}

func totalsRow(a *entity.AuditRecord) core.Row {
	return row.New(8).Add(
		text.NewCol(9, fmt.Sprintf("%d movimiento(s) confirmado(s)", len(a.Movements)), props.Text{Size: 8}),
		text.NewCol(3, fmt.Sprintf("TOTAL AJUSTADO: %s", a.TotalAdjustments.String()), props.Text{
			Size: 9, Style: fontstyle.Bold, Align: align.Right, Color: colorPrimary,
		}),
	)
}
