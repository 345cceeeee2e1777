package cyclecount

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/cyclecount-api/internal/domain"
	domcc "github.com/invorya/cyclecount-api/internal/domain/cyclecount"
	"github.com/invorya/cyclecount-api/internal/domain/entity"
	"github.com/invorya/cyclecount-api/internal/domain/repository"
	"github.com/invorya/cyclecount-api/pkg/logger"
)

// SessionUseCase es el Session Manager del conteo cíclico: ciclo de vida de la
// sesión (iniciar, cargar snapshot, acumular movimientos, borrador, cancelar,
// OTP y commit). Las reglas de concurrencia viven aquí y en los adaptadores:
// exclusividad global en Create (índice único parcial) y serialización por
// sesión con GetForUpdate dentro del TxRunner.
type SessionUseCase struct {
	txRunner TxRunner
	sessions repository.SessionRepository
	audits   repository.AuditRepository
	snapshot SnapshotProvider
	otp      OtpService
	orders   OrderControl
	drafts   DraftStore
	log      *logger.Logger
}

// NewSessionUseCase construye el caso de uso.
func NewSessionUseCase(
	txRunner TxRunner,
	sessions repository.SessionRepository,
	audits repository.AuditRepository,
	snapshot SnapshotProvider,
	otp OtpService,
	orders OrderControl,
	drafts DraftStore,
	log *logger.Logger,
) *SessionUseCase {
	return &SessionUseCase{
		txRunner: txRunner,
		sessions: sessions,
		audits:   audits,
		snapshot: snapshot,
		otp:      otp,
		orders:   orders,
		drafts:   drafts,
		log:      log,
	}
}

// MovementInput entrada para alta/edición de un movimiento sobre una línea.
type MovementInput struct {
	Type       string
	Quantity   decimal.Decimal
	ReasonCode string
	NewMfgDate *time.Time
}

// Initiate crea la sesión ACTIVE. Si ya existe una activa el repositorio
// devuelve domain.ErrSessionConflict (check-and-set resuelto en la BD, no en
// memoria: dos Initiate concurrentes dejan exactamente un ganador).
// Señala al subsistema de pedidos que suspenda el intake (best-effort).
func (uc *SessionUseCase) Initiate(ctx context.Context, initiatedBy string) (*entity.CycleCountSession, error) {
	if initiatedBy == "" {
		return nil, domain.ErrInvalidInput
	}

	s := &entity.CycleCountSession{
		ID:          uuid.New().String(),
		Status:      entity.SessionStatusActive,
		InitiatedAt: time.Now().UTC(),
		InitiatedBy: initiatedBy,
		Items:       []entity.InventoryLine{},
	}
	if err := uc.sessions.Create(s); err != nil {
		return nil, err
	}

	uc.log.Info().Str("session_id", s.ID).Str("initiated_by", initiatedBy).Msg("sesión de conteo iniciada")
	uc.signalOrders(ctx, "suspend")
	return s, nil
}

// LoadSnapshot consulta al Snapshot Provider y reemplaza las líneas de la
// sesión al completo. Con movimientos sin confirmar rechaza la recarga
// (ErrUnsavedMovements) salvo que force sea true: el reemplazo destructivo
// solo ocurre a pedido explícito.
func (uc *SessionUseCase) LoadSnapshot(ctx context.Context, sessionID string, force bool) (*entity.CycleCountSession, error) {
	s, err := uc.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if !s.IsActive() {
		return nil, domain.ErrInvalidState
	}
	if !force && s.HasMovements() {
		return nil, domain.ErrUnsavedMovements
	}

	// Llamada externa fuera de la transacción: no retener locks durante el fetch.
	balances, err := uc.snapshot.Fetch(ctx)
	if err != nil {
		return nil, dependencyErr("snapshot provider", err)
	}

	items := make([]entity.InventoryLine, 0, len(balances))
	for i := range balances {
		b := &balances[i]
		items = append(items, entity.InventoryLine{
			SKUID:       b.SKUID,
			Description: b.Description,
			BaseUnit:    b.BaseUnit,
			Sellable:    b.Sellable,
			Allocated:   b.Allocated,
			Damaged:     b.Damaged,
			Expired:     b.Expired,
			OnRoute:     b.OnRoute,
			Movements:   []entity.Movement{},
		})
	}

	err = uc.txRunner.Run(ctx, func(
		sessionRepo repository.SessionRepository,
		_ repository.AuditRepository,
		_ repository.StockRepository,
	) error {
		locked, err := sessionRepo.GetForUpdate(sessionID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if !locked.IsActive() {
			return domain.ErrInvalidState
		}
		if !force && locked.HasMovements() {
			return domain.ErrUnsavedMovements
		}
		return sessionRepo.ReplaceItems(sessionID, items)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("session_id", sessionID).Int("items", len(items)).Bool("force", force).Msg("snapshot cargado")
	return uc.sessions.GetByID(sessionID)
}

// AddMovement agrega un movimiento a la línea del SKU. La validación es
// consultiva: el movimiento se guarda aunque deje la línea con violaciones;
// el gate duro está en RequestCommitOtp/Commit.
func (uc *SessionUseCase) AddMovement(ctx context.Context, sessionID, skuID string, in MovementInput) (*entity.InventoryLine, error) {
	if !entity.IsValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutateLine(ctx, sessionID, skuID, func(line *entity.InventoryLine) error {
		line.Movements = append(line.Movements, entity.Movement{
			ID:         uuid.New().String(),
			Type:       in.Type,
			Quantity:   in.Quantity,
			ReasonCode: in.ReasonCode,
			NewMfgDate: in.NewMfgDate,
		})
		return nil
	})
}

// UpdateMovement reemplaza el movimiento indicado preservando su ID.
func (uc *SessionUseCase) UpdateMovement(ctx context.Context, sessionID, skuID, movementID string, in MovementInput) (*entity.InventoryLine, error) {
	if !entity.IsValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutateLine(ctx, sessionID, skuID, func(line *entity.InventoryLine) error {
		idx := line.FindMovement(movementID)
		if idx < 0 {
			return domain.ErrNotFound
		}
		line.Movements[idx] = entity.Movement{
			ID:         movementID,
			Type:       in.Type,
			Quantity:   in.Quantity,
			ReasonCode: in.ReasonCode,
			NewMfgDate: in.NewMfgDate,
		}
		return nil
	})
}

// RemoveMovement elimina el movimiento indicado de la línea.
func (uc *SessionUseCase) RemoveMovement(ctx context.Context, sessionID, skuID, movementID string) (*entity.InventoryLine, error) {
	return uc.mutateLine(ctx, sessionID, skuID, func(line *entity.InventoryLine) error {
		idx := line.FindMovement(movementID)
		if idx < 0 {
			return domain.ErrNotFound
		}
		line.Movements = append(line.Movements[:idx], line.Movements[idx+1:]...)
		return nil
	})
}

// mutateLine serializa la mutación de una línea: bloquea la fila de la sesión
// (FOR UPDATE), valida estado y SKU, aplica fn y persiste los movimientos.
func (uc *SessionUseCase) mutateLine(ctx context.Context, sessionID, skuID string, fn func(line *entity.InventoryLine) error) (*entity.InventoryLine, error) {
	var updated entity.InventoryLine
	err := uc.txRunner.Run(ctx, func(
		sessionRepo repository.SessionRepository,
		_ repository.AuditRepository,
		_ repository.StockRepository,
	) error {
		s, err := sessionRepo.GetForUpdate(sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if !s.IsActive() {
			return domain.ErrInvalidState
		}
		line := s.FindLine(skuID)
		if line == nil {
			return domain.ErrNotFound
		}
		if err := fn(line); err != nil {
			return err
		}
		if err := sessionRepo.SaveLineMovements(sessionID, skuID, line.Movements); err != nil {
			return err
		}
		updated = *line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Cancel pasa la sesión ACTIVE a CANCELLED (terminal, sin auditoría) y
// reanuda el intake de pedidos.
func (uc *SessionUseCase) Cancel(ctx context.Context, sessionID string) (*entity.CycleCountSession, error) {
	var cancelled *entity.CycleCountSession
	err := uc.txRunner.Run(ctx, func(
		sessionRepo repository.SessionRepository,
		_ repository.AuditRepository,
		_ repository.StockRepository,
	) error {
		s, err := sessionRepo.GetForUpdate(sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if !s.IsActive() {
			return domain.ErrInvalidState
		}
		now := time.Now().UTC()
		s.Status = entity.SessionStatusCancelled
		s.CancelledAt = &now
		if err := sessionRepo.UpdateStatus(s); err != nil {
			return err
		}
		cancelled = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("session_id", sessionID).Msg("sesión de conteo cancelada")
	uc.signalOrders(ctx, "resume")
	return cancelled, nil
}

// Get devuelve la sesión por id.
func (uc *SessionUseCase) Get(ctx context.Context, sessionID string) (*entity.CycleCountSession, error) {
	s, err := uc.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// Active devuelve la sesión ACTIVE vigente, o ErrNotFound si no hay.
func (uc *SessionUseCase) Active(ctx context.Context) (*entity.CycleCountSession, error) {
	s, err := uc.sessions.GetActive()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// validateAll recolecta las violaciones de todas las líneas. nil = sesión limpia.
func validateAll(s *entity.CycleCountSession) *domain.ValidationError {
	var lines []domain.LineViolations
	for i := range s.Items {
		if msgs := domcc.ValidateLine(&s.Items[i]); len(msgs) > 0 {
			lines = append(lines, domain.LineViolations{SKUID: s.Items[i].SKUID, Messages: msgs})
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return &domain.ValidationError{Lines: lines}
}

// signalOrders envía suspend/resume al control de pedidos. Best-effort: el
// fallo se registra y no bloquea la transición que lo originó.
func (uc *SessionUseCase) signalOrders(ctx context.Context, action string) {
	var err error
	if action == "suspend" {
		err = uc.orders.Suspend(ctx)
	} else {
		err = uc.orders.Resume(ctx)
	}
	if err != nil {
		uc.log.Warn().Err(err).Str("action", action).Msg("control de pedidos no disponible")
	}
}
