package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/cyclecount-api/internal/domain"
	"github.com/invorya/cyclecount-api/internal/domain/entity"
	"github.com/invorya/cyclecount-api/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo implementación de SessionRepository sobre PostgreSQL (usable con pool o tx).
// La exclusividad global la refuerza el índice único parcial
// uq_cycle_count_sessions_active (WHERE status = 'ACTIVE'): dos Create
// concurrentes resuelven en la BD, no en memoria, y sobreviven reinicios.
type SessionRepo struct {
	q Querier
}

// NewSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSessionRepository(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

// Create persiste una sesión nueva. Violación del índice de exclusividad -> ErrSessionConflict.
func (r *SessionRepo) Create(s *entity.CycleCountSession) error {
	query := `
		INSERT INTO cycle_count_sessions (id, status, initiated_at, initiated_by, committed_at, committed_by, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Status, s.InitiatedAt, s.InitiatedBy, s.CommittedAt, s.CommittedBy, s.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID carga la sesión completa (líneas y movimientos en orden). nil si no existe.
func (r *SessionRepo) GetByID(id string) (*entity.CycleCountSession, error) {
	return r.load(id, false)
}

// GetForUpdate carga la sesión bloqueando su fila (SELECT FOR UPDATE): las
// mutaciones concurrentes sobre el mismo id quedan serializadas.
func (r *SessionRepo) GetForUpdate(id string) (*entity.CycleCountSession, error) {
	return r.load(id, true)
}

// GetActive devuelve la sesión ACTIVE o nil.
func (r *SessionRepo) GetActive() (*entity.CycleCountSession, error) {
	var id string
	err := r.q.QueryRow(context.Background(),
		`SELECT id FROM cycle_count_sessions WHERE status = 'ACTIVE' LIMIT 1`,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return r.load(id, false)
}

func (r *SessionRepo) load(id string, forUpdate bool) (*entity.CycleCountSession, error) {
	query := `
		SELECT id, status, initiated_at, initiated_by, committed_at, committed_by, cancelled_at
		FROM cycle_count_sessions WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var s entity.CycleCountSession
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.Status, &s.InitiatedAt, &s.InitiatedBy, &s.CommittedAt, &s.CommittedBy, &s.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	items, err := r.loadItems(id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

func (r *SessionRepo) loadItems(sessionID string) ([]entity.InventoryLine, error) {
	ctx := context.Background()
	rows, err := r.q.Query(ctx, `
		SELECT sku_id, description, base_unit, sellable_qty, allocated_qty, damaged_qty, expired_qty, onroute_qty
		FROM cycle_count_lines WHERE session_id = $1 ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()

	items := []entity.InventoryLine{}
	index := map[string]int{}
	for rows.Next() {
		var l entity.InventoryLine
		if err := rows.Scan(&l.SKUID, &l.Description, &l.BaseUnit,
			&l.Sellable, &l.Allocated, &l.Damaged, &l.Expired, &l.OnRoute); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		l.Movements = []entity.Movement{}
		index[l.SKUID] = len(items)
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}

	movRows, err := r.q.Query(ctx, `
		SELECT sku_id, id, type, quantity, reason_code, new_mfg_date
		FROM cycle_count_movements WHERE session_id = $1 ORDER BY sku_id, position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer movRows.Close()

	for movRows.Next() {
		var skuID string
		var m entity.Movement
		if err := movRows.Scan(&skuID, &m.ID, &m.Type, &m.Quantity, &m.ReasonCode, &m.NewMfgDate); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if i, ok := index[skuID]; ok {
			items[i].Movements = append(items[i].Movements, m)
		}
	}
	if err := movRows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return items, nil
}

// ReplaceItems reemplaza líneas y movimientos al completo (carga de snapshot).
func (r *SessionRepo) ReplaceItems(sessionID string, items []entity.InventoryLine) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM cycle_count_movements WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM cycle_count_lines WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	for pos, l := range items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO cycle_count_lines (session_id, sku_id, description, base_unit, sellable_qty, allocated_qty, damaged_qty, expired_qty, onroute_qty, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			sessionID, l.SKUID, l.Description, l.BaseUnit,
			l.Sellable, l.Allocated, l.Damaged, l.Expired, l.OnRoute, pos,
		)
		if err != nil {
			return fmt.Errorf("insert line %s: %w", l.SKUID, err)
		}
		if err := r.insertMovements(ctx, sessionID, l.SKUID, l.Movements); err != nil {
			return err
		}
	}
	return nil
}

// SaveLineMovements reescribe los movimientos de una línea preservando el orden.
func (r *SessionRepo) SaveLineMovements(sessionID, skuID string, movements []entity.Movement) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx,
		`DELETE FROM cycle_count_movements WHERE session_id = $1 AND sku_id = $2`, sessionID, skuID); err != nil {
		return fmt.Errorf("delete line movements: %w", err)
	}
	return r.insertMovements(ctx, sessionID, skuID, movements)
}

func (r *SessionRepo) insertMovements(ctx context.Context, sessionID, skuID string, movements []entity.Movement) error {
	for pos, m := range movements {
		_, err := r.q.Exec(ctx, `
			INSERT INTO cycle_count_movements (id, session_id, sku_id, type, quantity, reason_code, new_mfg_date, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, sessionID, skuID, m.Type, m.Quantity, m.ReasonCode, m.NewMfgDate, pos,
		)
		if err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
	}
	return nil
}

// UpdateStatus persiste el cambio de estado y los sellos de commit/cancelación.
func (r *SessionRepo) UpdateStatus(s *entity.CycleCountSession) error {
	query := `
		UPDATE cycle_count_sessions
		SET status = $2, committed_at = $3, committed_by = $4, cancelled_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		s.ID, s.Status, s.CommittedAt, s.CommittedBy, s.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
