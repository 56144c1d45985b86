package entity

import "time"

// Tipos de unidad descontada en una salida.
const (
	UnitTypePallet = "pallet"
	UnitTypePacks  = "packs"
)

// ValidUnitType indica si t es un tipo de unidad conocido.
func ValidUnitType(t string) bool {
	return t == UnitTypePallet || t == UnitTypePacks
}

// OutboundMovement representa una salida (baja) de una serie puntual. Única por (producto, lote, serie).
type OutboundMovement struct {
	ID         int64
	ProductID  int64
	Lot        string
	Serial     int64
	UnitType   string
	PacksQty   int // 0 para pallet
	RangeID    int64
	RawPayload string
	CreatedAt  time.Time
}
