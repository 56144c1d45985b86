package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.InboundRangeRepository = (*InboundRangeRepo)(nil)

// InboundRangeRepo rangos de ingreso (stock_pp) sobre SQLite.
type InboundRangeRepo struct {
	q Querier
}

// NewInboundRangeRepository construye el repositorio.
func NewInboundRangeRepository(q Querier) *InboundRangeRepo {
	return &InboundRangeRepo{q: q}
}

type rangeRow struct {
	ID            int64  `db:"id"`
	CreatedAt     dbTime `db:"created_at"`
	ProductID     int64  `db:"id_producto"`
	Lot           string `db:"lote"`
	SerialStart   int64  `db:"serie_inicio"`
	SerialEnd     int64  `db:"serie_fin"`
	TrailingPacks int    `db:"packs_fin"`
}

func (r rangeRow) entity() entity.InboundRange {
	return entity.InboundRange{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Lot:           r.Lot,
		SerialStart:   r.SerialStart,
		SerialEnd:     r.SerialEnd,
		TrailingPacks: r.TrailingPacks,
		CreatedAt:     r.CreatedAt.Time,
	}
}

const rangeColumns = `id, created_at, id_producto, lote, serie_inicio, serie_fin, packs_fin`

// Insert persiste el rango y completa ID y CreatedAt.
func (r *InboundRangeRepo) Insert(ctx context.Context, ir *entity.InboundRange) error {
	if ir.SerialStart > ir.SerialEnd || ir.TrailingPacks < 0 {
		return domain.Errorf(domain.KindInvalidInput, "rango inválido %d-%d packs %d", ir.SerialStart, ir.SerialEnd, ir.TrailingPacks)
	}
	at := now()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO stock_pp (created_at, id_producto, lote, serie_inicio, serie_fin, packs_fin)
		VALUES (?, ?, ?, ?, ?, ?)`,
		at, ir.ProductID, ir.Lot, ir.SerialStart, ir.SerialEnd, ir.TrailingPacks)
	if err != nil {
		return fmt.Errorf("insert stock_pp: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert stock_pp id: %w", err)
	}
	ir.ID = id
	ir.CreatedAt = at.Time
	return nil
}

// ListDescending rangos de producto+lote por serie_fin descendente.
func (r *InboundRangeRepo) ListDescending(ctx context.Context, productID int64, lot string) ([]entity.InboundRange, error) {
	var rows []rangeRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT `+rangeColumns+` FROM stock_pp
		WHERE id_producto = ? AND lote = ?
		ORDER BY serie_fin DESC, id DESC`, productID, lot)
	if err != nil {
		return nil, fmt.Errorf("list stock_pp: %w", err)
	}
	out := make([]entity.InboundRange, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

// FindContaining rango más antiguo que contiene la serie.
func (r *InboundRangeRepo) FindContaining(ctx context.Context, productID int64, lot string, serial int64) (*entity.InboundRange, error) {
	return r.getOne(ctx, `
		SELECT `+rangeColumns+` FROM stock_pp
		WHERE id_producto = ? AND lote = ? AND serie_inicio <= ? AND serie_fin >= ?
		ORDER BY created_at ASC, id ASC LIMIT 1`, productID, lot, serial, serial)
}

// FindOverlapping rango que comparte alguna serie con [start, end].
func (r *InboundRangeRepo) FindOverlapping(ctx context.Context, productID int64, lot string, start, end int64) (*entity.InboundRange, error) {
	return r.getOne(ctx, `
		SELECT `+rangeColumns+` FROM stock_pp
		WHERE id_producto = ? AND lote = ? AND serie_inicio <= ? AND serie_fin >= ?
		ORDER BY serie_inicio ASC LIMIT 1`, productID, lot, end, start)
}

func (r *InboundRangeRepo) getOne(ctx context.Context, query string, args ...any) (*entity.InboundRange, error) {
	var row rangeRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock_pp: %w", err)
	}
	ir := row.entity()
	return &ir, nil
}

// Mutate actualiza serie_fin y/o packs_fin.
func (r *InboundRangeRepo) Mutate(ctx context.Context, id int64, m repository.RangeMutation) error {
	if m.SerialEnd == nil && m.TrailingPacks == nil {
		return domain.Errorf(domain.KindInvalidInput, "mutación vacía sobre el rango %d", id)
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE stock_pp
		SET serie_fin = COALESCE(?, serie_fin), packs_fin = COALESCE(?, packs_fin)
		WHERE id = ?`, nullInt64(m.SerialEnd), nullInt(m.TrailingPacks), id)
	if err != nil {
		return fmt.Errorf("update stock_pp: %w", err)
	}
	return expectOne(res, "rango", id)
}

// Delete elimina el rango.
func (r *InboundRangeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM stock_pp WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete stock_pp: %w", err)
	}
	return expectOne(res, "rango", id)
}

// MaxSerialEnd última serie ingresada para producto+lote.
func (r *InboundRangeRepo) MaxSerialEnd(ctx context.Context, productID int64, lot string) (int64, bool, error) {
	var v sql.NullInt64
	err := sqlx.GetContext(ctx, r.q, &v, `SELECT MAX(serie_fin) FROM stock_pp WHERE id_producto = ? AND lote = ?`, productID, lot)
	if err != nil {
		return 0, false, fmt.Errorf("max serie_fin: %w", err)
	}
	return v.Int64, v.Valid, nil
}

const sumInbound = `
	COALESCE(SUM((serie_fin - serie_inicio + 1) - CASE WHEN packs_fin > 0 THEN 1 ELSE 0 END), 0) AS pallets,
	COALESCE(SUM(packs_fin), 0) AS packs`

type totalsRow struct {
	ProductID int64  `db:"id_producto"`
	Lot       string `db:"lote"`
	Pallets   int64  `db:"pallets"`
	Packs     int64  `db:"packs"`
}

// SumInbound totales de ingreso. lot vacío suma todos los lotes del producto.
func (r *InboundRangeRepo) SumInbound(ctx context.Context, productID int64, lot string) (repository.Totals, error) {
	var t totalsRow
	err := sqlx.GetContext(ctx, r.q, &t, `
		SELECT ? AS id_producto, ? AS lote, `+sumInbound+`
		FROM stock_pp WHERE id_producto = ? AND (? = '' OR lote = ?)`,
		productID, lot, productID, lot, lot)
	if err != nil {
		return repository.Totals{}, fmt.Errorf("sum stock_pp: %w", err)
	}
	return repository.Totals(t), nil
}

// SumInboundGrouped totales de ingreso por producto+lote.
func (r *InboundRangeRepo) SumInboundGrouped(ctx context.Context) ([]repository.Totals, error) {
	var rows []totalsRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id_producto, lote, `+sumInbound+`
		FROM stock_pp GROUP BY id_producto, lote ORDER BY id_producto, lote`)
	if err != nil {
		return nil, fmt.Errorf("sum stock_pp grouped: %w", err)
	}
	return toTotals(rows), nil
}

func toTotals(rows []totalsRow) []repository.Totals {
	out := make([]repository.Totals, 0, len(rows))
	for _, t := range rows {
		out = append(out, repository.Totals(t))
	}
	return out
}

func expectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.Errorf(domain.KindNotFound, "%s %d no existe", what, id)
	}
	return nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
