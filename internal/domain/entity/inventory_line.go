package entity

import "github.com/shopspring/decimal"

// Unidades base de medida.
const (
	BaseUnitCase = "CS" // caja
	BaseUnitEach = "EA" // unidad
)

// InventoryLine es la foto de un SKU dentro de la sesión: saldos por estado al
// momento del snapshot más los movimientos acumulados durante el conteo.
// Los flags de error por línea no se persisten: se derivan con
// cyclecount.ValidateLine al leer.
type InventoryLine struct {
	SKUID       string
	Description string
	BaseUnit    string // CS | EA
	Sellable    decimal.Decimal
	Allocated   decimal.Decimal
	Damaged     decimal.Decimal
	Expired     decimal.Decimal
	OnRoute     decimal.Decimal // en tránsito; ningún movimiento lo toca
	Movements   []Movement
}

// InventoryOnHand es derivado: sellable + allocated + damaged + expired.
// OnRoute se lleva aparte como mercancía en tránsito.
func (l *InventoryLine) InventoryOnHand() decimal.Decimal {
	return l.Sellable.Add(l.Allocated).Add(l.Damaged).Add(l.Expired)
}

// FindMovement devuelve el índice del movimiento con ese ID, o -1.
func (l *InventoryLine) FindMovement(movementID string) int {
	for i := range l.Movements {
		if l.Movements[i].ID == movementID {
			return i
		}
	}
	return -1
}
