package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de conteo: redistribuyen cantidad entre los cuatro
// saldos (sellable/allocated/damaged/expired) sin alterar el on-hand total.
const (
	MovementSellableToExpired   = "SELLABLE_TO_EXPIRED"
	MovementExpiredToSellable   = "EXPIRED_TO_SELLABLE"
	MovementSellableToDamaged   = "SELLABLE_TO_DAMAGED"
	MovementDamagedToSellable   = "DAMAGED_TO_SELLABLE"
	MovementSellableToAllocated = "SELLABLE_TO_ALLOCATED"
	MovementAllocatedToSellable = "ALLOCATED_TO_SELLABLE"
)

// Movement es un traslado solicitado entre saldos de un SKU durante el conteo.
type Movement struct {
	ID         string
	Type       string
	Quantity   decimal.Decimal // > 0 requerido
	ReasonCode string          // requerido según la matriz de tipo
	NewMfgDate *time.Time      // requerido según la matriz de tipo
}

// IsValidMovementType indica si el tipo pertenece a los seis soportados.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementSellableToExpired, MovementExpiredToSellable,
		MovementSellableToDamaged, MovementDamagedToSellable,
		MovementSellableToAllocated, MovementAllocatedToSellable:
		return true
	}
	return false
}

// Matriz de campos requeridos por tipo (fija, no configurable):
//
//	SELLABLE_TO_EXPIRED   -> reason_code y new_mfg_date
//	EXPIRED_TO_SELLABLE   -> new_mfg_date
//	SELLABLE_TO_DAMAGED   -> reason_code
//	DAMAGED_TO_SELLABLE   -> reason_code
//	SELLABLE_TO_ALLOCATED -> ninguno
//	ALLOCATED_TO_SELLABLE -> ninguno

// MovementRequiresReason indica si el tipo exige código de motivo.
func MovementRequiresReason(t string) bool {
	switch t {
	case MovementSellableToExpired, MovementSellableToDamaged, MovementDamagedToSellable:
		return true
	}
	return false
}

// MovementRequiresMfgDate indica si el tipo exige nueva fecha de fabricación.
func MovementRequiresMfgDate(t string) bool {
	switch t {
	case MovementSellableToExpired, MovementExpiredToSellable:
		return true
	}
	return false
}
