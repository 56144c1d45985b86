package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.SerialWatermarkRepository = (*SerialWatermarkRepo)(nil)

// SerialWatermarkRepo marcas de serie sobre SQLite.
type SerialWatermarkRepo struct {
	q Querier
}

// NewSerialWatermarkRepository construye el repositorio.
func NewSerialWatermarkRepository(q Querier) *SerialWatermarkRepo {
	return &SerialWatermarkRepo{q: q}
}

// Get devuelve 0 si no hay marca.
func (r *SerialWatermarkRepo) Get(ctx context.Context, productID int64, lot string) (int64, error) {
	var v int64
	err := sqlx.GetContext(ctx, r.q, &v, `SELECT ultima_serie FROM serial_watermarks WHERE id_producto = ? AND lote = ?`, productID, lot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get watermark: %w", err)
	}
	return v, nil
}

// Raise fija la marca en max(actual, serial).
func (r *SerialWatermarkRepo) Raise(ctx context.Context, productID int64, lot string, serial int64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO serial_watermarks (id_producto, lote, ultima_serie, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id_producto, lote) DO UPDATE SET
			ultima_serie = MAX(serial_watermarks.ultima_serie, excluded.ultima_serie),
			updated_at = excluded.updated_at`,
		productID, lot, serial, now())
	if err != nil {
		return fmt.Errorf("raise watermark: %w", err)
	}
	return nil
}
