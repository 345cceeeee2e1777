package cyclecount

import (
	"context"
	"time"

	"github.com/invorya/cyclecount-api/internal/domain/entity"
	"github.com/invorya/cyclecount-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el commit (alta de
// auditoría + ajuste de stock + transición de estado) y serializa las
// mutaciones por sesión vía GetForUpdate.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		sessionRepo repository.SessionRepository,
		auditRepo repository.AuditRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// SnapshotProvider entrega los saldos vigentes por SKU al cargar la sesión.
// Colaborador externo de solo lectura.
type SnapshotProvider interface {
	Fetch(ctx context.Context) ([]entity.StockBalance, error)
}

// OtpChallenge es el reto emitido para proteger el commit.
type OtpChallenge struct {
	ChallengeID string
	ExpiresAt   time.Time
}

// OtpService emite y verifica códigos de un solo uso atados a la sesión.
// VerifyAndConsume debe ser atómico: un código usado con éxito deja de valer;
// un intento fallido NO lo consume.
type OtpService interface {
	Issue(ctx context.Context, sessionID string) (*OtpChallenge, error)
	VerifyAndConsume(ctx context.Context, sessionID, code string) (bool, error)
}

// OrderControl señala al subsistema de pedidos que suspenda/reanude el
// intake mientras hay conteo activo. Best-effort: un fallo aquí nunca bloquea
// la transición de estado (se registra en el log y se sigue).
type OrderControl interface {
	Suspend(ctx context.Context) error
	Resume(ctx context.Context) error
}

// DraftStore guarda el borrador serializado de la sesión (blob opaco por id,
// last-write-wins). Es recuperación, no commit.
type DraftStore interface {
	Save(ctx context.Context, sessionID string, payload []byte) error
	// Load devuelve el blob o domain.ErrNotFound si no hay borrador.
	Load(ctx context.Context, sessionID string) ([]byte, error)
}
