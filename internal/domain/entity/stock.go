package entity

import "time"

// NetStock stock neto derivado (ingresos - salidas) por producto+lote o por producto (Lot vacío).
// Nunca se persiste como fuente de verdad; puede ser negativo si el ledger está corrupto.
type NetStock struct {
	ProductID   int64
	Lot         string
	Description string
	Pallets     int64
	Packs       int64
}

// Of devuelve la cantidad neta del tipo de unidad indicado.
func (n NetStock) Of(unitType string) int64 {
	if unitType == UnitTypePacks {
		return n.Packs
	}
	return n.Pallets
}

// StockProjection fila de la proyección desnormalizada que consume la sincronización.
type StockProjection struct {
	NetStock
	UpdatedAt time.Time
}
