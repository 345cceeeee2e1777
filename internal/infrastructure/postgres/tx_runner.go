package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invorya/cyclecount-api/internal/application/cyclecount"
	"github.com/invorya/cyclecount-api/internal/domain/repository"
)

var _ cyclecount.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es el punto
// de atomicidad del commit: auditoría, ajuste de stock y cambio de estado
// entran juntos o no entra nada.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	sessionRepo repository.SessionRepository,
	auditRepo repository.AuditRepository,
	stockRepo repository.StockRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sessionRepo := NewSessionRepository(tx)
	auditRepo := NewAuditRepository(tx)
	stockRepo := NewStockRepository(tx)

	if err := fn(sessionRepo, auditRepo, stockRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
