package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es el saldo vigente de un SKU desglosado por estado. Es lo que
// entrega el Snapshot Provider al cargar la sesión y lo que recibe el ajuste
// neto al confirmar.
type StockBalance struct {
	SKUID       string
	Description string
	BaseUnit    string // CS | EA
	Sellable    decimal.Decimal
	Allocated   decimal.Decimal
	Damaged     decimal.Decimal
	Expired     decimal.Decimal
	OnRoute     decimal.Decimal
	UpdatedAt   time.Time
}

// InventoryOnHand es derivado: suma de los cuatro saldos en bodega.
func (s *StockBalance) InventoryOnHand() decimal.Decimal {
	return s.Sellable.Add(s.Allocated).Add(s.Damaged).Add(s.Expired)
}
