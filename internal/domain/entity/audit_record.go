package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRecord es el registro inmutable que produce un commit: totales de la
// sesión más la lista aplanada de movimientos por SKU. Solo se crea dentro de
// la transacción de commit.
type AuditRecord struct {
	ID               string
	SessionID        string
	CommittedAt      time.Time
	CommittedBy      string
	TotalItems       int             // líneas de la sesión al momento del commit
	TotalAdjustments decimal.Decimal // suma de |cantidad| de todos los movimientos
	DocumentRef      string          // ruta de descarga del documento de ajuste
	Movements        []AuditMovement
}

// AuditMovement es una fila del documento de ajuste: un movimiento confirmado
// con la cantidad en la columna de su tipo.
type AuditMovement struct {
	SKUID               string
	Description         string
	SellableToExpired   decimal.Decimal
	ExpiredToSellable   decimal.Decimal
	SellableToDamaged   decimal.Decimal
	DamagedToSellable   decimal.Decimal
	SellableToAllocated decimal.Decimal
	AllocatedToSellable decimal.Decimal
	ReasonCode          string
	ReasonDescription   string
	NewMfgDate          *time.Time
	MovementType        string
}

// Quantity devuelve la cantidad del movimiento (la columna no nula según el tipo).
func (m *AuditMovement) Quantity() decimal.Decimal {
	switch m.MovementType {
	case MovementSellableToExpired:
		return m.SellableToExpired
	case MovementExpiredToSellable:
		return m.ExpiredToSellable
	case MovementSellableToDamaged:
		return m.SellableToDamaged
	case MovementDamagedToSellable:
		return m.DamagedToSellable
	case MovementSellableToAllocated:
		return m.SellableToAllocated
	case MovementAllocatedToSellable:
		return m.AllocatedToSellable
	}
	return decimal.Zero
}
