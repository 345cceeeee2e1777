package cyclecount

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/invorya/cyclecount-api/internal/application/dto"
	"github.com/invorya/cyclecount-api/internal/domain"
)

// SaveDraft serializa el estado completo de la sesión (líneas + movimientos)
// y lo persiste en el Draft Store fuera del rastro de auditoría. Último save
// gana, sin versionado. Es una operación de recuperación: llamarla repetida y
// concurrentemente con lecturas es seguro.
func (uc *SessionUseCase) SaveDraft(ctx context.Context, sessionID string) (time.Time, error) {
	s, err := uc.sessions.GetByID(sessionID)
	if err != nil {
		return time.Time{}, err
	}
	if s == nil {
		return time.Time{}, domain.ErrNotFound
	}

	savedAt := time.Now().UTC()
	payload := dto.DraftPayload{
		SessionID: sessionID,
		SavedAt:   savedAt,
		Items:     dto.FromLines(s.Items),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return time.Time{}, fmt.Errorf("serializar borrador: %w", err)
	}
	if err := uc.drafts.Save(ctx, sessionID, raw); err != nil {
		return time.Time{}, dependencyErr("draft store", err)
	}

	uc.log.Debug().Str("session_id", sessionID).Msg("borrador guardado")
	return savedAt, nil
}

// LoadDraft recupera la foto congelada del último SaveDraft. Las mutaciones
// hechas a la sesión después del save no la afectan.
func (uc *SessionUseCase) LoadDraft(ctx context.Context, sessionID string) (*dto.DraftPayload, error) {
	raw, err := uc.drafts.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, dependencyErr("draft store", err)
	}

	var payload dto.DraftPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("deserializar borrador: %w", err)
	}
	return &payload, nil
}
