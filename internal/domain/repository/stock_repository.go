package repository

import "github.com/invorya/cyclecount-api/internal/domain/entity"

// StockRepository define el puerto sobre los saldos vigentes por SKU. Respalda
// al Snapshot Provider y recibe el ajuste neto al confirmar una sesión.
type StockRepository interface {
	// ListAll devuelve los saldos de todos los SKUs ordenados por sku_id.
	ListAll() ([]entity.StockBalance, error)
	// GetForUpdate bloquea la fila del SKU (SELECT FOR UPDATE). Usar dentro de tx.
	GetForUpdate(skuID string) (*entity.StockBalance, error)
	Upsert(s *entity.StockBalance) error
}
