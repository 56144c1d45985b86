package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.InboundRangeRepository = (*InboundRangeRepo)(nil)

// InboundRangeRepo rangos de ingreso (stock_pp) sobre PostgreSQL.
type InboundRangeRepo struct {
	q Querier
}

// NewInboundRangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInboundRangeRepository(q Querier) *InboundRangeRepo {
	return &InboundRangeRepo{q: q}
}

const rangeColumns = `id, created_at, id_producto, lote, serie_inicio, serie_fin, packs_fin`

func scanRange(row pgx.Row) (entity.InboundRange, error) {
	var r entity.InboundRange
	err := row.Scan(&r.ID, &r.CreatedAt, &r.ProductID, &r.Lot, &r.SerialStart, &r.SerialEnd, &r.TrailingPacks)
	return r, err
}

// Insert persiste el rango y completa ID y CreatedAt.
func (r *InboundRangeRepo) Insert(ctx context.Context, ir *entity.InboundRange) error {
	if ir.SerialStart > ir.SerialEnd || ir.TrailingPacks < 0 {
		return domain.Errorf(domain.KindInvalidInput, "rango inválido %d-%d packs %d", ir.SerialStart, ir.SerialEnd, ir.TrailingPacks)
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_pp (created_at, id_producto, lote, serie_inicio, serie_fin, packs_fin)
		VALUES (clock_timestamp(), $1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		ir.ProductID, ir.Lot, ir.SerialStart, ir.SerialEnd, ir.TrailingPacks,
	).Scan(&ir.ID, &ir.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock_pp: %w", err)
	}
	return nil
}

// ListDescending rangos de producto+lote por serie_fin descendente.
func (r *InboundRangeRepo) ListDescending(ctx context.Context, productID int64, lot string) ([]entity.InboundRange, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+rangeColumns+` FROM stock_pp
		WHERE id_producto = $1 AND lote = $2
		ORDER BY serie_fin DESC, id DESC`, productID, lot)
	if err != nil {
		return nil, fmt.Errorf("list stock_pp: %w", err)
	}
	defer rows.Close()
	var list []entity.InboundRange
	for rows.Next() {
		ir, err := scanRange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock_pp: %w", err)
		}
		list = append(list, ir)
	}
	return list, rows.Err()
}

// FindContaining rango más antiguo que contiene la serie.
func (r *InboundRangeRepo) FindContaining(ctx context.Context, productID int64, lot string, serial int64) (*entity.InboundRange, error) {
	return r.getOne(ctx, `
		SELECT `+rangeColumns+` FROM stock_pp
		WHERE id_producto = $1 AND lote = $2 AND serie_inicio <= $3 AND serie_fin >= $3
		ORDER BY created_at ASC, id ASC LIMIT 1`, productID, lot, serial)
}

// FindOverlapping rango que comparte alguna serie con [start, end].
func (r *InboundRangeRepo) FindOverlapping(ctx context.Context, productID int64, lot string, start, end int64) (*entity.InboundRange, error) {
	return r.getOne(ctx, `
		SELECT `+rangeColumns+` FROM stock_pp
		WHERE id_producto = $1 AND lote = $2 AND serie_inicio <= $4 AND serie_fin >= $3
		ORDER BY serie_inicio ASC LIMIT 1`, productID, lot, start, end)
}

func (r *InboundRangeRepo) getOne(ctx context.Context, query string, args ...any) (*entity.InboundRange, error) {
	ir, err := scanRange(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock_pp: %w", err)
	}
	return &ir, nil
}

// Mutate actualiza serie_fin y/o packs_fin.
func (r *InboundRangeRepo) Mutate(ctx context.Context, id int64, m repository.RangeMutation) error {
	if m.SerialEnd == nil && m.TrailingPacks == nil {
		return domain.Errorf(domain.KindInvalidInput, "mutación vacía sobre el rango %d", id)
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_pp
		SET serie_fin = COALESCE($2, serie_fin), packs_fin = COALESCE($3, packs_fin)
		WHERE id = $1`, id, m.SerialEnd, m.TrailingPacks)
	if err != nil {
		return fmt.Errorf("update stock_pp: %w", err)
	}
	return expectOne(tag, "rango", id)
}

// Delete elimina el rango.
func (r *InboundRangeRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_pp WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock_pp: %w", err)
	}
	return expectOne(tag, "rango", id)
}

// MaxSerialEnd última serie ingresada para producto+lote.
func (r *InboundRangeRepo) MaxSerialEnd(ctx context.Context, productID int64, lot string) (int64, bool, error) {
	var v *int64
	err := r.q.QueryRow(ctx, `SELECT MAX(serie_fin) FROM stock_pp WHERE id_producto = $1 AND lote = $2`, productID, lot).Scan(&v)
	if err != nil {
		return 0, false, fmt.Errorf("max serie_fin: %w", err)
	}
	if v == nil {
		return 0, false, nil
	}
	return *v, true, nil
}

const sumInbound = `
	COALESCE(SUM((serie_fin - serie_inicio + 1) - CASE WHEN packs_fin > 0 THEN 1 ELSE 0 END), 0)::bigint AS pallets,
	COALESCE(SUM(packs_fin), 0)::bigint AS packs`

// SumInbound totales de ingreso. lot vacío suma todos los lotes del producto.
func (r *InboundRangeRepo) SumInbound(ctx context.Context, productID int64, lot string) (repository.Totals, error) {
	t := repository.Totals{ProductID: productID, Lot: lot}
	err := r.q.QueryRow(ctx, `
		SELECT `+sumInbound+`
		FROM stock_pp WHERE id_producto = $1 AND ($2 = '' OR lote = $2)`, productID, lot).Scan(&t.Pallets, &t.Packs)
	if err != nil {
		return repository.Totals{}, fmt.Errorf("sum stock_pp: %w", err)
	}
	return t, nil
}

// SumInboundGrouped totales de ingreso por producto+lote.
func (r *InboundRangeRepo) SumInboundGrouped(ctx context.Context) ([]repository.Totals, error) {
	return queryTotals(ctx, r.q, `
		SELECT id_producto, lote, `+sumInbound+`
		FROM stock_pp GROUP BY id_producto, lote ORDER BY id_producto, lote`)
}

func queryTotals(ctx context.Context, q Querier, query string) ([]repository.Totals, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()
	var list []repository.Totals
	for rows.Next() {
		var t repository.Totals
		if err := rows.Scan(&t.ProductID, &t.Lot, &t.Pallets, &t.Packs); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
