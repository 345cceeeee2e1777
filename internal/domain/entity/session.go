package entity

import "time"

// Estados de una sesión de conteo cíclico. ACTIVE es el único estado mutable;
// COMMITTED y CANCELLED son terminales.
const (
	SessionStatusActive    = "ACTIVE"
	SessionStatusCancelled = "CANCELLED"
	SessionStatusCommitted = "COMMITTED"
)

// CycleCountSession representa una sesión de reconciliación de inventario.
// A nivel sistema existe a lo sumo una sesión ACTIVE (exclusividad global,
// reforzada por índice único parcial en cycle_count_sessions).
type CycleCountSession struct {
	ID          string
	Status      string
	InitiatedAt time.Time
	InitiatedBy string
	CommittedAt *time.Time
	CommittedBy string
	CancelledAt *time.Time
	Items       []InventoryLine // ordenadas; SKU único dentro de la sesión
}

// IsActive indica si la sesión admite mutaciones.
func (s *CycleCountSession) IsActive() bool {
	return s.Status == SessionStatusActive
}

// FindLine devuelve la línea del SKU o nil si no está en la sesión.
func (s *CycleCountSession) FindLine(skuID string) *InventoryLine {
	for i := range s.Items {
		if s.Items[i].SKUID == skuID {
			return &s.Items[i]
		}
	}
	return nil
}

// HasMovements indica si alguna línea acumula movimientos sin confirmar.
func (s *CycleCountSession) HasMovements() bool {
	for i := range s.Items {
		if len(s.Items[i].Movements) > 0 {
			return true
		}
	}
	return false
}
