package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.OutboundMovementRepository = (*OutboundMovementRepo)(nil)

// OutboundMovementRepo salidas (salidas_qr) sobre PostgreSQL.
type OutboundMovementRepo struct {
	q Querier
}

// NewOutboundMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboundMovementRepository(q Querier) *OutboundMovementRepo {
	return &OutboundMovementRepo{q: q}
}

// Insert persiste la salida; la restricción uq_salidas_qr_qr se traduce a ErrDuplicateMovement.
func (r *OutboundMovementRepo) Insert(ctx context.Context, m *entity.OutboundMovement) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO salidas_qr (id_producto, lote, nro_serie, unit_type, packs_qty, stock_pp_id, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		m.ProductID, m.Lot, m.Serial, m.UnitType, m.PacksQty, m.RangeID, m.RawPayload,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Wrap(domain.KindDuplicateMovement, err,
				"la serie %d del producto %d lote %s ya fue dada de baja", m.Serial, m.ProductID, m.Lot)
		}
		return fmt.Errorf("insert salida: %w", err)
	}
	return nil
}

// Exists indica si ya hay salida para (producto, lote, serie).
func (r *OutboundMovementRepo) Exists(ctx context.Context, productID int64, lot string, serial int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM salidas_qr WHERE id_producto = $1 AND lote = $2 AND nro_serie = $3)`,
		productID, lot, serial).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists salida: %w", err)
	}
	return ok, nil
}

// CountInRange salidas con serie dentro de [start, end].
func (r *OutboundMovementRepo) CountInRange(ctx context.Context, productID int64, lot string, start, end int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(1) FROM salidas_qr
		WHERE id_producto = $1 AND lote = $2 AND nro_serie BETWEEN $3 AND $4`,
		productID, lot, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count salidas in range: %w", err)
	}
	return n, nil
}

const sumOutbound = `
	COALESCE(SUM(CASE WHEN unit_type = 'pallet' THEN 1 ELSE 0 END), 0)::bigint AS pallets,
	COALESCE(SUM(CASE WHEN unit_type = 'packs' THEN packs_qty ELSE 0 END), 0)::bigint AS packs`

// SumOutbound totales de salida. lot vacío suma todos los lotes del producto.
func (r *OutboundMovementRepo) SumOutbound(ctx context.Context, productID int64, lot string) (repository.Totals, error) {
	t := repository.Totals{ProductID: productID, Lot: lot}
	err := r.q.QueryRow(ctx, `
		SELECT `+sumOutbound+`
		FROM salidas_qr WHERE id_producto = $1 AND ($2 = '' OR lote = $2)`, productID, lot).Scan(&t.Pallets, &t.Packs)
	if err != nil {
		return repository.Totals{}, fmt.Errorf("sum salidas: %w", err)
	}
	return t, nil
}

// SumOutboundGrouped totales de salida por producto+lote.
func (r *OutboundMovementRepo) SumOutboundGrouped(ctx context.Context) ([]repository.Totals, error) {
	return queryTotals(ctx, r.q, `
		SELECT id_producto, lote, `+sumOutbound+`
		FROM salidas_qr GROUP BY id_producto, lote ORDER BY id_producto, lote`)
}
