package repository

import "github.com/invorya/cyclecount-api/internal/domain/entity"

// SessionRepository define el puerto de persistencia de sesiones de conteo.
// La exclusividad global (una sola ACTIVE) la refuerza la implementación:
// Create debe devolver domain.ErrSessionConflict si ya hay una activa.
type SessionRepository interface {
	Create(s *entity.CycleCountSession) error
	// GetByID carga la sesión completa (líneas y movimientos en orden). Devuelve nil si no existe.
	GetByID(id string) (*entity.CycleCountSession, error)
	// GetActive devuelve la sesión ACTIVE o nil si no hay.
	GetActive() (*entity.CycleCountSession, error)
	// GetForUpdate bloquea la fila de la sesión (SELECT FOR UPDATE) para
	// serializar mutaciones concurrentes sobre el mismo id. Usar dentro de tx.
	GetForUpdate(id string) (*entity.CycleCountSession, error)
	// ReplaceItems reemplaza las líneas (y sus movimientos) al completo.
	ReplaceItems(sessionID string, items []entity.InventoryLine) error
	// SaveLineMovements reescribe los movimientos de una línea.
	SaveLineMovements(sessionID, skuID string, movements []entity.Movement) error
	// UpdateStatus persiste el cambio de estado (y sellos committed/cancelled).
	UpdateStatus(s *entity.CycleCountSession) error
}
