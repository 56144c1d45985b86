package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.StockProjectionRepository = (*StockProjectionRepo)(nil)

// StockProjectionRepo proyección de stock neto por producto+lote (usable con pool o tx).
type StockProjectionRepo struct {
	q Querier
}

// NewStockProjectionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockProjectionRepository(q Querier) *StockProjectionRepo {
	return &StockProjectionRepo{q: q}
}

// Upsert inserta o reemplaza la fila de producto+lote.
func (r *StockProjectionRepo) Upsert(ctx context.Context, n entity.NetStock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_projection (id_producto, lote, descripcion, stock_pallets, stock_packs, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id_producto, lote)
		DO UPDATE SET descripcion = EXCLUDED.descripcion, stock_pallets = EXCLUDED.stock_pallets,
			stock_packs = EXCLUDED.stock_packs, updated_at = now()`,
		n.ProductID, n.Lot, n.Description, n.Pallets, n.Packs)
	if err != nil {
		return fmt.Errorf("upsert projection: %w", err)
	}
	return nil
}

// List devuelve la proyección ordenada por producto y lote.
func (r *StockProjectionRepo) List(ctx context.Context) ([]entity.StockProjection, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id_producto, lote, descripcion, stock_pallets, stock_packs, updated_at
		FROM stock_projection ORDER BY id_producto, lote`)
	if err != nil {
		return nil, fmt.Errorf("list projection: %w", err)
	}
	defer rows.Close()
	var list []entity.StockProjection
	for rows.Next() {
		var p entity.StockProjection
		if err := rows.Scan(&p.ProductID, &p.Lot, &p.Description, &p.Pallets, &p.Packs, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
