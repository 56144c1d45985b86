package repository

import (
	"context"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos.
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context) ([]entity.Product, error)
	// Upsert sincroniza una fila del catálogo mantenido externamente.
	Upsert(ctx context.Context, product *entity.Product) error
}
