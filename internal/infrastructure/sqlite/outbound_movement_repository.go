package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.OutboundMovementRepository = (*OutboundMovementRepo)(nil)

// OutboundMovementRepo salidas (salidas_qr) sobre SQLite.
type OutboundMovementRepo struct {
	q Querier
}

// NewOutboundMovementRepository construye el repositorio.
func NewOutboundMovementRepository(q Querier) *OutboundMovementRepo {
	return &OutboundMovementRepo{q: q}
}

// Insert persiste la salida. La restricción única (producto, lote, serie) se traduce a ErrDuplicateMovement.
func (r *OutboundMovementRepo) Insert(ctx context.Context, m *entity.OutboundMovement) error {
	at := now()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO salidas_qr (created_at, id_producto, lote, nro_serie, unit_type, packs_qty, stock_pp_id, raw_payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		at, m.ProductID, m.Lot, m.Serial, m.UnitType, m.PacksQty, m.RangeID, m.RawPayload)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Wrap(domain.KindDuplicateMovement, err,
				"la serie %d del producto %d lote %s ya fue dada de baja", m.Serial, m.ProductID, m.Lot)
		}
		return fmt.Errorf("insert salida: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert salida id: %w", err)
	}
	m.ID = id
	m.CreatedAt = at.Time
	return nil
}

// Exists indica si ya hay salida para (producto, lote, serie).
func (r *OutboundMovementRepo) Exists(ctx context.Context, productID int64, lot string, serial int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `
		SELECT COUNT(1) FROM salidas_qr WHERE id_producto = ? AND lote = ? AND nro_serie = ?`, productID, lot, serial)
	if err != nil {
		return false, fmt.Errorf("exists salida: %w", err)
	}
	return n > 0, nil
}

// CountInRange salidas con serie dentro de [start, end].
func (r *OutboundMovementRepo) CountInRange(ctx context.Context, productID int64, lot string, start, end int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `
		SELECT COUNT(1) FROM salidas_qr
		WHERE id_producto = ? AND lote = ? AND nro_serie BETWEEN ? AND ?`, productID, lot, start, end)
	if err != nil {
		return 0, fmt.Errorf("count salidas in range: %w", err)
	}
	return n, nil
}

const sumOutbound = `
	COALESCE(SUM(CASE WHEN unit_type = 'pallet' THEN 1 ELSE 0 END), 0) AS pallets,
	COALESCE(SUM(CASE WHEN unit_type = 'packs' THEN packs_qty ELSE 0 END), 0) AS packs`

// SumOutbound totales de salida. lot vacío suma todos los lotes del producto.
func (r *OutboundMovementRepo) SumOutbound(ctx context.Context, productID int64, lot string) (repository.Totals, error) {
	var t totalsRow
	err := sqlx.GetContext(ctx, r.q, &t, `
		SELECT ? AS id_producto, ? AS lote, `+sumOutbound+`
		FROM salidas_qr WHERE id_producto = ? AND (? = '' OR lote = ?)`,
		productID, lot, productID, lot, lot)
	if err != nil {
		return repository.Totals{}, fmt.Errorf("sum salidas: %w", err)
	}
	return repository.Totals(t), nil
}

// SumOutboundGrouped totales de salida por producto+lote.
func (r *OutboundMovementRepo) SumOutboundGrouped(ctx context.Context) ([]repository.Totals, error) {
	var rows []totalsRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id_producto, lote, `+sumOutbound+`
		FROM salidas_qr GROUP BY id_producto, lote ORDER BY id_producto, lote`)
	if err != nil {
		return nil, fmt.Errorf("sum salidas grouped: %w", err)
	}
	return toTotals(rows), nil
}
