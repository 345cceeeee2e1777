package document_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/invorya/cyclecount-api/internal/domain/entity"
	"github.com/invorya/cyclecount-api/internal/infrastructure/document"
)

func sampleAudit() *entity.AuditRecord {
	mfg := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	return &entity.AuditRecord{
		ID:               "audit-1",
		SessionID:        "session-1",
		CommittedAt:      time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
		CommittedBy:      "supervisor-1",
		TotalItems:       2,
		TotalAdjustments: decimal.NewFromInt(13),
		DocumentRef:      "/api/cycle-counts/audits/audit-1/document",
		Movements: []entity.AuditMovement{
			{
				SKUID:             "SKU001",
				Description:       "Harina de trigo 25kg",
				SellableToDamaged: decimal.NewFromInt(5),
				ReasonCode:        "1",
				ReasonDescription: "Daño en bodega",
				MovementType:      entity.MovementSellableToDamaged,
			},
			{
				SKUID:             "SKU002",
				Description:       "Aceite vegetal 20L",
				ExpiredToSellable: decimal.NewFromInt(8),
				NewMfgDate:        &mfg,
				MovementType:      entity.MovementExpiredToSellable,
			},
		},
	}
}

// La cantidad va en la columna del tipo; las demás quedan vacías.
func TestRows_CantidadEnLaColumnaDelTipo(t *testing.T) {
	rows := document.Rows(sampleAudit())
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "SKU001", first[0])
	assert.Equal(t, "5", first[4], "Sellable→Damaged lleva la cantidad")
	assert.Empty(t, first[2])
	assert.Empty(t, first[3])
	assert.Equal(t, "1", first[8])
	assert.Equal(t, "Daño en bodega", first[9])
	assert.Empty(t, first[10], "sin fecha de fabricación")

	second := rows[1]
	assert.Equal(t, "8", second[3], "Expired→Sellable lleva la cantidad")
	assert.Equal(t, "2026-03-15", second[10])
	assert.Empty(t, second[8], "sin motivo")
}

func TestWriteXLSX_EncabezadoYFilas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, document.WriteXLSX(&buf, sampleAudit()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Ajustes")
	require.NoError(t, err)
	require.Len(t, rows, 3, "encabezado + dos movimientos")
	assert.Equal(t, document.Headers(), rows[0])
	assert.Equal(t, "SKU001", rows[1][0])
	assert.Equal(t, "5", rows[1][4])
	assert.Equal(t, "SKU002", rows[2][0])
}

func TestWriteCSV_MismoContenidoQueXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, document.WriteCSV(&buf, sampleAudit()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "SKU")
	assert.Contains(t, lines[0], "Tipo Movimiento")
	assert.Contains(t, lines[1], "SKU001")
	assert.Contains(t, lines[1], "Daño en bodega")
	assert.Contains(t, lines[2], "2026-03-15")
}

func TestBuildXML_EstructuraDelDocumento(t *testing.T) {
	out, err := document.BuildXML(sampleAudit())
	require.NoError(t, err)

	xml := string(out)
	assert.Contains(t, xml, `<CycleCountAudit id="audit-1" sessionId="session-1">`)
	assert.Contains(t, xml, "<CommittedBy>supervisor-1</CommittedBy>")
	assert.Contains(t, xml, "<TotalAdjustments>13</TotalAdjustments>")
	assert.Contains(t, xml, `<Movement sku="SKU001" type="SELLABLE_TO_DAMAGED">`)
	assert.Contains(t, xml, `<Reason code="1">Daño en bodega</Reason>`)
	assert.Contains(t, xml, "<NewMfgDate>2026-03-15</NewMfgDate>")
	assert.NotContains(t, xml, `<Reason code="">`, "movimientos sin motivo no llevan elemento Reason")
}

func TestBuildXML_AuditoriaSinMovimientos(t *testing.T) {
	a := sampleAudit()
	a.Movements = nil
	out, err := document.BuildXML(a)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<Movements/>")
}

func TestBuildPDF_GeneraDocumento(t *testing.T) {
	out, err := document.BuildPDF(sampleAudit())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "salida debe ser un PDF")
}
