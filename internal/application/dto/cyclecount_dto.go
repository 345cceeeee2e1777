package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/cyclecount-api/internal/domain/cyclecount"
	"github.com/invorya/cyclecount-api/internal/domain/entity"
)

const mfgDateLayout = "2006-01-02"

// MovementRequest body para alta/edición de un movimiento.
type MovementRequest struct {
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	ReasonCode string          `json:"reason_code,omitempty"`
	NewMfgDate string          `json:"new_mfg_date,omitempty"` // YYYY-MM-DD
}

// ParseMfgDate interpreta new_mfg_date. Vacío devuelve nil sin error.
func (r MovementRequest) ParseMfgDate() (*time.Time, error) {
	if r.NewMfgDate == "" {
		return nil, nil
	}
	t, err := time.Parse(mfgDateLayout, r.NewMfgDate)
	if err != nil {
		return nil, fmt.Errorf("new_mfg_date debe ser YYYY-MM-DD: %w", err)
	}
	return &t, nil
}

// CommitRequest body para confirmar la sesión.
type CommitRequest struct {
	Otp string `json:"otp"`
}

// MovementResponse un movimiento acumulado en una línea.
type MovementResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	ReasonCode string          `json:"reason_code,omitempty"`
	NewMfgDate string          `json:"new_mfg_date,omitempty"`
}

// LineResponse una línea de inventario con saldos al snapshot, movimientos y
// estado de validación derivado (recalculado al leer, nunca persistido).
type LineResponse struct {
	SKUID           string             `json:"sku_id"`
	Description     string             `json:"description"`
	BaseUnit        string             `json:"base_unit"`
	SellableQty     decimal.Decimal    `json:"sellable_qty"`
	AllocatedQty    decimal.Decimal    `json:"allocated_qty"`
	DamagedQty      decimal.Decimal    `json:"damaged_qty"`
	ExpiredQty      decimal.Decimal    `json:"expired_qty"`
	OnRouteQty      decimal.Decimal    `json:"onroute_qty"`
	InventoryOnHand decimal.Decimal    `json:"inventory_on_hand"`
	Movements       []MovementResponse `json:"movements"`
	HasError        bool               `json:"has_error"`
	ErrorMessage    string             `json:"error_message,omitempty"`
}

// SessionResponse la sesión completa.
type SessionResponse struct {
	SessionID   string         `json:"session_id"`
	Status      string         `json:"status"`
	InitiatedAt time.Time      `json:"initiated_at"`
	InitiatedBy string         `json:"initiated_by"`
	CommittedAt *time.Time     `json:"committed_at,omitempty"`
	CommittedBy string         `json:"committed_by,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	Items       []LineResponse `json:"items"`
}

// OtpChallengeResponse reto emitido para el commit.
type OtpChallengeResponse struct {
	ChallengeID string    `json:"challenge_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DraftPayload es el formato serializado del borrador (blob en el Draft
// Store). Es una foto congelada: mutaciones posteriores a la sesión no lo
// tocan hasta el próximo save.
type DraftPayload struct {
	SessionID string         `json:"session_id"`
	SavedAt   time.Time      `json:"saved_at"`
	Items     []LineResponse `json:"items"`
}

// SaveDraftResponse respuesta de guardar borrador.
type SaveDraftResponse struct {
	SessionID string    `json:"session_id"`
	SavedAt   time.Time `json:"saved_at"`
}

// AuditMovementResponse una fila aplanada del registro de auditoría.
type AuditMovementResponse struct {
	SKUID               string          `json:"sku_id"`
	Description         string          `json:"description"`
	SellableToExpired   decimal.Decimal `json:"sellable_to_expired"`
	ExpiredToSellable   decimal.Decimal `json:"expired_to_sellable"`
	SellableToDamaged   decimal.Decimal `json:"sellable_to_damaged"`
	DamagedToSellable   decimal.Decimal `json:"damaged_to_sellable"`
	SellableToAllocated decimal.Decimal `json:"sellable_to_allocated"`
	AllocatedToSellable decimal.Decimal `json:"allocated_to_sellable"`
	ReasonCode          string          `json:"reason_code,omitempty"`
	ReasonDescription   string          `json:"reason_description,omitempty"`
	NewMfgDate          string          `json:"new_mfg_date,omitempty"`
	MovementType        string          `json:"movement_type"`
}

// AuditResponse el registro inmutable de un commit.
type AuditResponse struct {
	AuditID          string                  `json:"audit_id"`
	SessionID        string                  `json:"session_id"`
	CommittedAt      time.Time               `json:"committed_at"`
	CommittedBy      string                  `json:"committed_by"`
	TotalItems       int                     `json:"total_items"`
	TotalAdjustments decimal.Decimal         `json:"total_adjustments"`
	DocumentRef      string                  `json:"document_ref"`
	Movements        []AuditMovementResponse `json:"movements"`
}

// FromSession arma la respuesta de sesión recalculando la validación por línea.
func FromSession(s *entity.CycleCountSession) SessionResponse {
	return SessionResponse{
		SessionID:   s.ID,
		Status:      s.Status,
		InitiatedAt: s.InitiatedAt,
		InitiatedBy: s.InitiatedBy,
		CommittedAt: s.CommittedAt,
		CommittedBy: s.CommittedBy,
		CancelledAt: s.CancelledAt,
		Items:       FromLines(s.Items),
	}
}

// FromLines mapea las líneas de la sesión.
func FromLines(items []entity.InventoryLine) []LineResponse {
	out := make([]LineResponse, 0, len(items))
	for i := range items {
		out = append(out, FromLine(&items[i]))
	}
	return out
}

// FromLine mapea una línea y deriva has_error/error_message con ValidateLine.
func FromLine(l *entity.InventoryLine) LineResponse {
	violations := cyclecount.ValidateLine(l)
	movs := make([]MovementResponse, 0, len(l.Movements))
	for i := range l.Movements {
		movs = append(movs, FromMovement(&l.Movements[i]))
	}
	return LineResponse{
		SKUID:           l.SKUID,
		Description:     l.Description,
		BaseUnit:        l.BaseUnit,
		SellableQty:     l.Sellable,
		AllocatedQty:    l.Allocated,
		DamagedQty:      l.Damaged,
		ExpiredQty:      l.Expired,
		OnRouteQty:      l.OnRoute,
		InventoryOnHand: l.InventoryOnHand(),
		Movements:       movs,
		HasError:        len(violations) > 0,
		ErrorMessage:    strings.Join(violations, "; "),
	}
}

// FromMovement mapea un movimiento.
func FromMovement(m *entity.Movement) MovementResponse {
	out := MovementResponse{
		ID:         m.ID,
		Type:       m.Type,
		Quantity:   m.Quantity,
		ReasonCode: m.ReasonCode,
	}
	if m.NewMfgDate != nil {
		out.NewMfgDate = m.NewMfgDate.Format(mfgDateLayout)
	}
	return out
}

// FromAudit mapea el registro de auditoría.
func FromAudit(a *entity.AuditRecord) AuditResponse {
	movs := make([]AuditMovementResponse, 0, len(a.Movements))
	for i := range a.Movements {
		m := &a.Movements[i]
		mr := AuditMovementResponse{
			SKUID:               m.SKUID,
			Description:         m.Description,
			SellableToExpired:   m.SellableToExpired,
			ExpiredToSellable:   m.ExpiredToSellable,
			SellableToDamaged:   m.SellableToDamaged,
			DamagedToSellable:   m.DamagedToSellable,
			SellableToAllocated: m.SellableToAllocated,
			AllocatedToSellable: m.AllocatedToSellable,
			ReasonCode:          m.ReasonCode,
			ReasonDescription:   m.ReasonDescription,
			MovementType:        m.MovementType,
		}
		if m.NewMfgDate != nil {
			mr.NewMfgDate = m.NewMfgDate.Format(mfgDateLayout)
		}
		movs = append(movs, mr)
	}
	return AuditResponse{
		AuditID:          a.ID,
		SessionID:        a.SessionID,
		CommittedAt:      a.CommittedAt,
		CommittedBy:      a.CommittedBy,
		TotalItems:       a.TotalItems,
		TotalAdjustments: a.TotalAdjustments,
		DocumentRef:      a.DocumentRef,
		Movements:        movs,
	}
}
