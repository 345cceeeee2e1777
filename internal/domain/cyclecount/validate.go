// Package cyclecount contiene la lógica pura del conteo cíclico: efecto neto
// de los movimientos sobre los saldos de una línea y la validación acumulada
// (nunca se corta al primer error). No toca persistencia ni colaboradores.
package cyclecount

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/invorya/cyclecount-api/internal/domain/entity"
)

// NetBalances son los saldos resultantes de aplicar los movimientos de una
// línea sobre su foto inicial. OnRoute no aparece: ningún tipo lo afecta.
type NetBalances struct {
	Sellable  decimal.Decimal
	Allocated decimal.Decimal
	Damaged   decimal.Decimal
	Expired   decimal.Decimal
}

// Sum devuelve sellable + allocated + damaged + expired. Invariante: igual al
// on-hand de la foto inicial para cualquier secuencia de movimientos, porque
// cada tipo resta de un saldo exactamente lo que suma a otro.
func (b NetBalances) Sum() decimal.Decimal {
	return b.Sellable.Add(b.Allocated).Add(b.Damaged).Add(b.Expired)
}

// ApplyMovements acumula el efecto de todos los movimientos de la línea.
// Movimientos de tipo desconocido no alteran saldos (la violación la reporta
// ValidateLine).
func ApplyMovements(line *entity.InventoryLine) NetBalances {
	b := NetBalances{
		Sellable:  line.Sellable,
		Allocated: line.Allocated,
		Damaged:   line.Damaged,
		Expired:   line.Expired,
	}
	for i := range line.Movements {
		m := &line.Movements[i]
		switch m.Type {
		case entity.MovementSellableToExpired:
			b.Sellable = b.Sellable.Sub(m.Quantity)
			b.Expired = b.Expired.Add(m.Quantity)
		case entity.MovementExpiredToSellable:
			b.Expired = b.Expired.Sub(m.Quantity)
			b.Sellable = b.Sellable.Add(m.Quantity)
		case entity.MovementSellableToDamaged:
			b.Sellable = b.Sellable.Sub(m.Quantity)
			b.Damaged = b.Damaged.Add(m.Quantity)
		case entity.MovementDamagedToSellable:
			b.Damaged = b.Damaged.Sub(m.Quantity)
			b.Sellable = b.Sellable.Add(m.Quantity)
		case entity.MovementSellableToAllocated:
			b.Sellable = b.Sellable.Sub(m.Quantity)
			b.Allocated = b.Allocated.Add(m.Quantity)
		case entity.MovementAllocatedToSellable:
			b.Allocated = b.Allocated.Sub(m.Quantity)
			b.Sellable = b.Sellable.Add(m.Quantity)
		}
	}
	return b
}

// ValidateLine es la función pura de validación de una línea. Recolecta todas
// las violaciones:
//
//  1. Saldo resultante negativo en cualquiera de los cuatro estados.
//  2. Movimiento con cantidad <= 0 (error posicional).
//  3. Campo requerido ausente según la matriz de tipo.
//
// La lista vacía significa línea lista para commit.
func ValidateLine(line *entity.InventoryLine) []string {
	var violations []string

	net := ApplyMovements(line)
	for _, check := range []struct {
		name string
		qty  decimal.Decimal
	}{
		{"sellable", net.Sellable},
		{"allocated", net.Allocated},
		{"damaged", net.Damaged},
		{"expired", net.Expired},
	} {
		if check.qty.IsNegative() {
			violations = append(violations,
				fmt.Sprintf("el saldo %s quedaría negativo (%s)", check.name, check.qty.String()))
		}
	}

	for i := range line.Movements {
		m := &line.Movements[i]
		pos := i + 1
		if !entity.IsValidMovementType(m.Type) {
			violations = append(violations,
				fmt.Sprintf("movimiento %d: tipo desconocido %q", pos, m.Type))
			continue
		}
		if !m.Quantity.IsPositive() {
			violations = append(violations,
				fmt.Sprintf("movimiento %d: la cantidad debe ser mayor que cero", pos))
		}
		if entity.MovementRequiresReason(m.Type) && m.ReasonCode == "" {
			violations = append(violations,
				fmt.Sprintf("movimiento %d (%s): requiere reason_code", pos, m.Type))
		}
		if entity.MovementRequiresMfgDate(m.Type) && m.NewMfgDate == nil {
			violations = append(violations,
				fmt.Sprintf("movimiento %d (%s): requiere new_mfg_date", pos, m.Type))
		}
	}

	return violations
}

// TotalAdjustments suma |cantidad| de todos los movimientos de la sesión.
func TotalAdjustments(s *entity.CycleCountSession) decimal.Decimal {
	total := decimal.Zero
	for i := range s.Items {
		for j := range s.Items[i].Movements {
			total = total.Add(s.Items[i].Movements[j].Quantity.Abs())
		}
	}
	return total
}
