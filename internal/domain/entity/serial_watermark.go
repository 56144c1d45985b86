package entity

import "time"

// SerialWatermark última serie conocida (escaneada o reservada para etiquetas) por producto+lote.
type SerialWatermark struct {
	ProductID  int64
	Lot        string
	LastSerial int64
	UpdatedAt  time.Time
}
