// Package document renderiza el documento de ajuste de un registro de
// auditoría en los formatos descargables: hoja de cálculo (XLSX, formato
// primario), CSV, PDF y XML para interoperar con el ERP. El contenido se
// regenera bajo demanda desde el registro inmutable; no se almacenan blobs.
package document

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/invorya/cyclecount-api/internal/domain/entity"
)

const sheetName = "Ajustes"

// Headers devuelve la fila de encabezado del documento de ajuste.
func Headers() []string {
	return []string{
		"SKU", "Descripción",
		"Sellable→Expired", "Expired→Sellable",
		"Sellable→Damaged", "Damaged→Sellable",
		"Sellable→Allocated", "Allocated→Sellable",
		"Código Motivo", "Motivo", "Nueva Fecha Fab.", "Tipo Movimiento",
	}
}

// Rows devuelve una fila por movimiento confirmado del registro.
func Rows(a *entity.AuditRecord) [][]string {
	rows := make([][]string, 0, len(a.Movements))
	for i := range a.Movements {
		m := &a.Movements[i]
		mfg := ""
		if m.NewMfgDate != nil {
			mfg = m.NewMfgDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			m.SKUID, m.Description,
			qtyCell(m.SellableToExpired), qtyCell(m.ExpiredToSellable),
			qtyCell(m.SellableToDamaged), qtyCell(m.DamagedToSellable),
			qtyCell(m.SellableToAllocated), qtyCell(m.AllocatedToSellable),
			m.ReasonCode, m.ReasonDescription, mfg, m.MovementType,
		})
	}
	return rows
}

// qtyCell deja vacías las columnas de tipos no usados por el movimiento.
func qtyCell(q decimal.Decimal) string {
	if q.IsZero() {
		return ""
	}
	return q.String()
}

// WriteXLSX escribe la hoja de cálculo del documento de ajuste.
func WriteXLSX(w io.Writer, a *entity.AuditRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	if err := writeRow(f, 1, Headers()); err != nil {
		return err
	}
	for i, row := range Rows(a) {
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: escribir documento: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("xlsx: celda (%d,%d): %w", col+1, rowNum, err)
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("xlsx: celda %s: %w", cell, err)
		}
	}
	return nil
}

// WriteCSV escribe la variante CSV (mismo encabezado y filas que el XLSX).
func WriteCSV(w io.Writer, a *entity.AuditRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("csv: encabezado: %w", err)
	}
	for _, row := range Rows(a) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: fila: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
