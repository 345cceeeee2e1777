package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/invorya/cyclecount-api/internal/application/cyclecount"
	"github.com/invorya/cyclecount-api/internal/domain"
)

var _ cyclecount.DraftStore = (*DraftStore)(nil)

const draftKeyPrefix = "cyclecount:draft:"

// DraftStore guarda el borrador de la sesión como blob opaco por id.
// Sin TTL: el borrador vive hasta el próximo save o hasta limpieza externa.
type DraftStore struct {
	client *redis.Client
}

// NewDraftStore construye el store.
func NewDraftStore(client *redis.Client) *DraftStore {
	return &DraftStore{client: client}
}

// Save sobreescribe el borrador (last-write-wins, sin versionado).
func (s *DraftStore) Save(ctx context.Context, sessionID string, payload []byte) error {
	if err := s.client.Set(ctx, draftKeyPrefix+sessionID, payload, 0).Err(); err != nil {
		return fmt.Errorf("guardar borrador: %w", err)
	}
	return nil
}

// Load devuelve el blob o domain.ErrNotFound si no hay borrador para la sesión.
func (s *DraftStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	raw, err := s.client.Get(ctx, draftKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("leer borrador: %w", err)
	}
	return raw, nil
}
