package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/cyclecount-api/internal/domain/entity"
	"github.com/invorya/cyclecount-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `sku_id, description, base_unit, sellable_qty, allocated_qty, damaged_qty, expired_qty, onroute_qty, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// ListAll devuelve los saldos de todos los SKUs ordenados por sku_id.
func (r *StockRepo) ListAll() ([]entity.StockBalance, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+stockColumns+` FROM stock ORDER BY sku_id`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var out []entity.StockBalance
	for rows.Next() {
		var s entity.StockBalance
		if err := rows.Scan(&s.SKUID, &s.Description, &s.BaseUnit,
			&s.Sellable, &s.Allocated, &s.Damaged, &s.Expired, &s.OnRoute, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	return out, nil
}

// GetForUpdate obtiene el saldo del SKU y bloquea la fila (SELECT FOR UPDATE). nil si no existe.
func (r *StockRepo) GetForUpdate(skuID string) (*entity.StockBalance, error) {
	var s entity.StockBalance
	err := r.q.QueryRow(context.Background(),
		`SELECT `+stockColumns+` FROM stock WHERE sku_id = $1 FOR UPDATE`, skuID,
	).Scan(&s.SKUID, &s.Description, &s.BaseUnit,
		&s.Sellable, &s.Allocated, &s.Damaged, &s.Expired, &s.OnRoute, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza el saldo del SKU.
func (r *StockRepo) Upsert(s *entity.StockBalance) error {
	query := `
		INSERT INTO stock (sku_id, description, base_unit, sellable_qty, allocated_qty, damaged_qty, expired_qty, onroute_qty, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (sku_id)
		DO UPDATE SET sellable_qty = EXCLUDED.sellable_qty,
		              allocated_qty = EXCLUDED.allocated_qty,
		              damaged_qty = EXCLUDED.damaged_qty,
		              expired_qty = EXCLUDED.expired_qty,
		              onroute_qty = EXCLUDED.onroute_qty,
		              updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		s.SKUID, s.Description, s.BaseUnit,
		s.Sellable, s.Allocated, s.Damaged, s.Expired, s.OnRoute,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}
