package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo de productos sobre SQLite.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el repositorio.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

type productRow struct {
	ID          int64  `db:"id_producto"`
	Description string `db:"descripcion"`
}

// GetByID devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var row productRow
	err := sqlx.GetContext(ctx, r.q, &row, `SELECT id_producto, descripcion FROM productos WHERE id_producto = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &entity.Product{ID: row.ID, Description: row.Description}, nil
}

// List devuelve el catálogo ordenado por id.
func (r *ProductRepo) List(ctx context.Context) ([]entity.Product, error) {
	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, `SELECT id_producto, descripcion FROM productos ORDER BY id_producto`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]entity.Product, 0, len(rows))
	for _, p := range rows {
		out = append(out, entity.Product{ID: p.ID, Description: p.Description})
	}
	return out, nil
}

// Upsert inserta o actualiza la descripción.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO productos (id_producto, descripcion) VALUES (?, ?)
		ON CONFLICT (id_producto) DO UPDATE SET descripcion = excluded.descripcion`, p.ID, p.Description)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}
