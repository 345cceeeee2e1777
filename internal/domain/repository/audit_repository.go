package repository

import "github.com/invorya/cyclecount-api/internal/domain/entity"

// AuditRepository define el puerto del registro de auditoría. Los registros
// son inmutables: solo alta (dentro de la tx de commit) y lectura.
type AuditRepository interface {
	Create(a *entity.AuditRecord) error
	// GetByID carga el registro con sus movimientos aplanados. Devuelve nil si no existe.
	GetByID(id string) (*entity.AuditRecord, error)
}
