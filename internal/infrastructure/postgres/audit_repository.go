package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/cyclecount-api/internal/domain/entity"
	"github.com/invorya/cyclecount-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación de AuditRepository sobre PostgreSQL (usable con pool o tx).
// Los registros son inmutables: solo INSERT (en la tx de commit) y SELECT.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create persiste el registro y sus movimientos aplanados.
func (r *AuditRepo) Create(a *entity.AuditRecord) error {
	ctx := context.Background()
	_, err := r.q.Exec(ctx, `
		INSERT INTO cycle_count_audits (id, session_id, committed_at, committed_by, total_items, total_adjustments, document_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.SessionID, a.CommittedAt, a.CommittedBy, a.TotalItems, a.TotalAdjustments, a.DocumentRef,
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}

	for pos := range a.Movements {
		m := &a.Movements[pos]
		_, err := r.q.Exec(ctx, `
			INSERT INTO cycle_count_audit_movements
				(audit_id, position, sku_id, description,
				 sellable_to_expired, expired_to_sellable, sellable_to_damaged,
				 damaged_to_sellable, sellable_to_allocated, allocated_to_sellable,
				 reason_code, reason_description, new_mfg_date, movement_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			a.ID, pos, m.SKUID, m.Description,
			m.SellableToExpired, m.ExpiredToSellable, m.SellableToDamaged,
			m.DamagedToSellable, m.SellableToAllocated, m.AllocatedToSellable,
			m.ReasonCode, m.ReasonDescription, m.NewMfgDate, m.MovementType,
		)
		if err != nil {
			return fmt.Errorf("insert audit movement: %w", err)
		}
	}
	return nil
}

// GetByID carga el registro con sus movimientos. nil si no existe.
func (r *AuditRepo) GetByID(id string) (*entity.AuditRecord, error) {
	ctx := context.Background()
	var a entity.AuditRecord
	err := r.q.QueryRow(ctx, `
		SELECT id, session_id, committed_at, committed_by, total_items, total_adjustments, document_ref
		FROM cycle_count_audits WHERE id = $1`, id,
	).Scan(&a.ID, &a.SessionID, &a.CommittedAt, &a.CommittedBy, &a.TotalItems, &a.TotalAdjustments, &a.DocumentRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get audit: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT sku_id, description,
		       sellable_to_expired, expired_to_sellable, sellable_to_damaged,
		       damaged_to_sellable, sellable_to_allocated, allocated_to_sellable,
		       reason_code, reason_description, new_mfg_date, movement_type
		FROM cycle_count_audit_movements WHERE audit_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list audit movements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m entity.AuditMovement
		if err := rows.Scan(&m.SKUID, &m.Description,
			&m.SellableToExpired, &m.ExpiredToSellable, &m.SellableToDamaged,
			&m.DamagedToSellable, &m.SellableToAllocated, &m.AllocatedToSellable,
			&m.ReasonCode, &m.ReasonDescription, &m.NewMfgDate, &m.MovementType); err != nil {
			return nil, fmt.Errorf("scan audit movement: %w", err)
		}
		a.Movements = append(a.Movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit movements: %w", err)
	}
	return &a, nil
}
