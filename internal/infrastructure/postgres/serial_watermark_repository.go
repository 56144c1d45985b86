package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.SerialWatermarkRepository = (*SerialWatermarkRepo)(nil)

// SerialWatermarkRepo marcas de serie por producto+lote.
type SerialWatermarkRepo struct {
	q Querier
}

// NewSerialWatermarkRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialWatermarkRepository(q Querier) *SerialWatermarkRepo {
	return &SerialWatermarkRepo{q: q}
}

// Get devuelve 0 si no hay marca.
func (r *SerialWatermarkRepo) Get(ctx context.Context, productID int64, lot string) (int64, error) {
	var v int64
	err := r.q.QueryRow(ctx, `SELECT ultima_serie FROM serial_watermarks WHERE id_producto = $1 AND lote = $2`, productID, lot).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get watermark: %w", err)
	}
	return v, nil
}

// Raise fija la marca en max(actual, serial).
func (r *SerialWatermarkRepo) Raise(ctx context.Context, productID int64, lot string, serial int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO serial_watermarks (id_producto, lote, ultima_serie, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (id_producto, lote)
		DO UPDATE SET ultima_serie = GREATEST(serial_watermarks.ultima_serie, EXCLUDED.ultima_serie), updated_at = now()`,
		productID, lot, serial)
	if err != nil {
		return fmt.Errorf("raise watermark: %w", err)
	}
	return nil
}
