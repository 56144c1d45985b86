package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.StockProjectionRepository = (*StockProjectionRepo)(nil)

// StockProjectionRepo proyección de stock neto sobre SQLite.
type StockProjectionRepo struct {
	q Querier
}

// NewStockProjectionRepository construye el repositorio.
func NewStockProjectionRepository(q Querier) *StockProjectionRepo {
	return &StockProjectionRepo{q: q}
}

// Upsert reemplaza la fila de producto+lote.
func (r *StockProjectionRepo) Upsert(ctx context.Context, n entity.NetStock) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO stock_projection (id_producto, lote, descripcion, stock_pallets, stock_packs, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id_producto, lote) DO UPDATE SET
			descripcion = excluded.descripcion,
			stock_pallets = excluded.stock_pallets,
			stock_packs = excluded.stock_packs,
			updated_at = excluded.updated_at`,
		n.ProductID, n.Lot, n.Description, n.Pallets, n.Packs, now())
	if err != nil {
		return fmt.Errorf("upsert projection: %w", err)
	}
	return nil
}

// List devuelve la proyección ordenada por producto y lote.
func (r *StockProjectionRepo) List(ctx context.Context) ([]entity.StockProjection, error) {
	var rows []struct {
		ProductID   int64  `db:"id_producto"`
		Lot         string `db:"lote"`
		Description string `db:"descripcion"`
		Pallets     int64  `db:"stock_pallets"`
		Packs       int64  `db:"stock_packs"`
		UpdatedAt   dbTime `db:"updated_at"`
	}
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id_producto, lote, descripcion, stock_pallets, stock_packs, updated_at
		FROM stock_projection ORDER BY id_producto, lote`)
	if err != nil {
		return nil, fmt.Errorf("list projection: %w", err)
	}
	out := make([]entity.StockProjection, 0, len(rows))
	for _, p := range rows {
		out = append(out, entity.StockProjection{
			NetStock: entity.NetStock{
				ProductID:   p.ProductID,
				Lot:         p.Lot,
				Description: p.Description,
				Pallets:     p.Pallets,
				Packs:       p.Packs,
			},
			UpdatedAt: p.UpdatedAt.Time,
		})
	}
	return out, nil
}
