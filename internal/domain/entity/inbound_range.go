package entity

import "time"

// InboundRange es un bloque contiguo de series escaneado como INICIO…FIN (tabla stock_pp).
// Si TrailingPacks > 0, la serie SerialEnd es un pallet parcial con TrailingPacks packs;
// el resto de las series del rango son pallets completos.
type InboundRange struct {
	ID            int64
	ProductID     int64
	Lot           string
	SerialStart   int64
	SerialEnd     int64
	TrailingPacks int
	CreatedAt     time.Time
}

// Span cantidad de series cubiertas por el rango (inclusive).
func (r InboundRange) Span() int64 {
	return r.SerialEnd - r.SerialStart + 1
}

// Pallets pallets completos que aporta el rango.
func (r InboundRange) Pallets() int64 {
	if r.TrailingPacks > 0 {
		return r.Span() - 1
	}
	return r.Span()
}

// Contains indica si la serie cae dentro del rango.
func (r InboundRange) Contains(serial int64) bool {
	return r.SerialStart <= serial && serial <= r.SerialEnd
}

// Overlaps indica si [start, end] comparte alguna serie con el rango.
func (r InboundRange) Overlaps(start, end int64) bool {
	return r.SerialStart <= end && start <= r.SerialEnd
}

// IsPartialSerial indica si la serie es el pallet parcial del rango.
func (r InboundRange) IsPartialSerial(serial int64) bool {
	return r.TrailingPacks > 0 && serial == r.SerialEnd
}
