package document

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/invorya/cyclecount-api/internal/domain/entity"
)

// BuildXML genera la rendición XML del documento de ajuste, pensada para el
// intercambio con el ERP. Misma información que la hoja de cálculo.
func BuildXML(a *entity.AuditRecord) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("CycleCountAudit")
	root.CreateAttr("id", a.ID)
	root.CreateAttr("sessionId", a.SessionID)

	root.CreateElement("CommittedAt").SetText(a.CommittedAt.Format("2006-01-02T15:04:05Z07:00"))
	root.CreateElement("CommittedBy").SetText(a.CommittedBy)
	root.CreateElement("TotalItems").SetText(fmt.Sprintf("%d", a.TotalItems))
	root.CreateElement("TotalAdjustments").SetText(a.TotalAdjustments.String())

	movements := root.CreateElement("Movements")
	for i := range a.Movements {
		m := &a.Movements[i]
		el := movements.CreateElement("Movement")
		el.CreateAttr("sku", m.SKUID)
		el.CreateAttr("type", m.MovementType)
		el.CreateElement("Description").SetText(m.Description)
		el.CreateElement("Quantity").SetText(m.Quantity().String())
		if m.ReasonCode != "" {
			reason := el.CreateElement("Reason")
			reason.CreateAttr("code", m.ReasonCode)
			reason.SetText(m.ReasonDescription)
		}
		if m.NewMfgDate != nil {
			el.CreateElement("NewMfgDate").SetText(m.NewMfgDate.Format("2006-01-02"))
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xml: escribir documento: %w", err)
	}
	return out, nil
}
