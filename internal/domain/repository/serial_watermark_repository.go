package repository

import "context"

// SerialWatermarkRepository última serie conocida por producto+lote, persistida junto al ledger.
type SerialWatermarkRepository interface {
	// Get devuelve 0 si no hay marca.
	Get(ctx context.Context, productID int64, lot string) (int64, error)
	// Raise fija la marca en max(actual, serial).
	Raise(ctx context.Context, productID int64, lot string, serial int64) error
}
