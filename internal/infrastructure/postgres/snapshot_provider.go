package postgres

import (
	"context"

	"github.com/invorya/cyclecount-api/internal/application/cyclecount"
	"github.com/invorya/cyclecount-api/internal/domain/entity"
)

var _ cyclecount.SnapshotProvider = (*SnapshotProvider)(nil)

// SnapshotProvider implementa el puerto de snapshot leyendo la tabla stock.
// Es el colaborador de solo lectura que alimenta LoadSnapshot.
type SnapshotProvider struct {
	stock *StockRepo
}

// NewSnapshotProvider construye el proveedor sobre un Querier (pool o tx).
func NewSnapshotProvider(q Querier) *SnapshotProvider {
	return &SnapshotProvider{stock: NewStockRepository(q)}
}

// Fetch devuelve los saldos vigentes por SKU.
func (p *SnapshotProvider) Fetch(_ context.Context) ([]entity.StockBalance, error) {
	return p.stock.ListAll()
}
