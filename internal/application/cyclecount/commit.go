package cyclecount

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/invorya/cyclecount-api/internal/domain"
	domcc "github.com/invorya/cyclecount-api/internal/domain/cyclecount"
	"github.com/invorya/cyclecount-api/internal/domain/entity"
	"github.com/invorya/cyclecount-api/internal/domain/repository"
	"github.com/invorya/cyclecount-api/pkg/reasons"
)

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

// dependencyErr envuelve el fallo de un colaborador crítico conservando
// errors.Is(err, domain.ErrDependencyFailure) para el mapeo HTTP.
func dependencyErr(collaborator string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrDependencyFailure, collaborator, err)
}

// RequestCommitOtp valida que todas las líneas estén limpias y emite el reto
// OTP atado a la sesión. Con violaciones pendientes devuelve ValidationError
// con la lista completa de SKUs ofensores.
func (uc *SessionUseCase) RequestCommitOtp(ctx context.Context, sessionID string) (*OtpChallenge, error) {
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
	if verr := validateAll(s); verr != nil {
		return nil, verr
	}

	ch, err := uc.otp.Issue(ctx, sessionID)
	if err != nil {
		return nil, dependencyErr("servicio OTP", err)
	}
	uc.log.Info().Str("session_id", sessionID).Str("challenge_id", ch.ChallengeID).
		Time("expires_at", ch.ExpiresAt).Msg("reto OTP emitido")
	return ch, nil
}

// Commit confirma la sesión. Precondiciones en orden, gana el primer fallo:
//
//  1. sesión existe y está ACTIVE
//  2. el código tiene formato de 6 dígitos (ErrMalformedOtp)
//  3. el código coincide con el reto vivo y se consume (ErrOtpMismatch)
//  4. cero violaciones en todas las líneas (ValidationError)
//
// El efecto es atómico: alta del registro de auditoría, ajuste neto del stock
// y transición a COMMITTED ocurren en una sola transacción. Si la escritura
// de auditoría falla la sesión queda ACTIVE y un commit posterior (con reto
// OTP nuevo: el código se consumió) vuelve a intentarlo completo.
func (uc *SessionUseCase) Commit(ctx context.Context, sessionID, code, committedBy string) (*entity.AuditRecord, error) {
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
	if !otpPattern.MatchString(code) {
		return nil, domain.ErrMalformedOtp
	}

	ok, err := uc.otp.VerifyAndConsume(ctx, sessionID, code)
	if err != nil {
		return nil, dependencyErr("servicio OTP", err)
	}
	if !ok {
		return nil, domain.ErrOtpMismatch
	}

	var audit *entity.AuditRecord
	err = uc.txRunner.Run(ctx, func(
		sessionRepo repository.SessionRepository,
		auditRepo repository.AuditRepository,
		stockRepo repository.StockRepository,
	) error {
		// Releer con lock: la copia bloqueada es la autoritativa para armar la auditoría.
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
		if verr := validateAll(locked); verr != nil {
			return verr
		}

		now := time.Now().UTC()
		audit = buildAudit(locked, committedBy, now)
		if err := auditRepo.Create(audit); err != nil {
			return err
		}
		if err := applyAdjustments(stockRepo, locked, now); err != nil {
			return err
		}

		locked.Status = entity.SessionStatusCommitted
		locked.CommittedAt = &now
		locked.CommittedBy = committedBy
		return sessionRepo.UpdateStatus(locked)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("session_id", sessionID).Str("audit_id", audit.ID).
		Str("total_adjustments", audit.TotalAdjustments.String()).Msg("sesión de conteo confirmada")
	uc.signalOrders(ctx, "resume")
	return audit, nil
}

// GetAudit devuelve el registro de auditoría por id.
func (uc *SessionUseCase) GetAudit(ctx context.Context, auditID string) (*entity.AuditRecord, error) {
	a, err := uc.audits.GetByID(auditID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// buildAudit aplana los movimientos confirmados: una fila por movimiento con
// la cantidad en la columna de su tipo. Solo entran líneas con movimientos.
func buildAudit(s *entity.CycleCountSession, committedBy string, now time.Time) *entity.AuditRecord {
	auditID := uuid.New().String()
	audit := &entity.AuditRecord{
		ID:               auditID,
		SessionID:        s.ID,
		CommittedAt:      now,
		CommittedBy:      committedBy,
		TotalItems:       len(s.Items),
		TotalAdjustments: domcc.TotalAdjustments(s),
		DocumentRef:      fmt.Sprintf("/api/cycle-counts/audits/%s/document", auditID),
	}
	for i := range s.Items {
		line := &s.Items[i]
		for j := range line.Movements {
			m := &line.Movements[j]
			am := entity.AuditMovement{
				SKUID:        line.SKUID,
				Description:  line.Description,
				ReasonCode:   m.ReasonCode,
				NewMfgDate:   m.NewMfgDate,
				MovementType: m.Type,
			}
			if m.ReasonCode != "" {
				am.ReasonDescription = reasons.Describe(m.ReasonCode)
			}
			switch m.Type {
			case entity.MovementSellableToExpired:
				am.SellableToExpired = m.Quantity
			case entity.MovementExpiredToSellable:
				am.ExpiredToSellable = m.Quantity
			case entity.MovementSellableToDamaged:
				am.SellableToDamaged = m.Quantity
			case entity.MovementDamagedToSellable:
				am.DamagedToSellable = m.Quantity
			case entity.MovementSellableToAllocated:
				am.SellableToAllocated = m.Quantity
			case entity.MovementAllocatedToSellable:
				am.AllocatedToSellable = m.Quantity
			}
			audit.Movements = append(audit.Movements, am)
		}
	}
	return audit
}

// applyAdjustments aplica al stock vigente el delta neto de cada línea con
// movimientos, bajo SELECT FOR UPDATE. Se aplican deltas (no absolutos): el
// stock puede haberse movido desde el snapshot y on-route no se toca.
func applyAdjustments(stockRepo repository.StockRepository, s *entity.CycleCountSession, now time.Time) error {
	for i := range s.Items {
		line := &s.Items[i]
		if len(line.Movements) == 0 {
			continue
		}
		net := domcc.ApplyMovements(line)

		st, err := stockRepo.GetForUpdate(line.SKUID)
		if err != nil {
			return err
		}
		if st == nil {
			st = &entity.StockBalance{
				SKUID:       line.SKUID,
				Description: line.Description,
				BaseUnit:    line.BaseUnit,
			}
		}
		st.Sellable = st.Sellable.Add(net.Sellable.Sub(line.Sellable))
		st.Allocated = st.Allocated.Add(net.Allocated.Sub(line.Allocated))
		st.Damaged = st.Damaged.Add(net.Damaged.Sub(line.Damaged))
		st.Expired = st.Expired.Add(net.Expired.Sub(line.Expired))
		st.UpdatedAt = now
		if err := stockRepo.Upsert(st); err != nil {
			return err
		}
	}
	return nil
}
