// Package catalog mantiene el catálogo de productos que alimenta descripciones, etiquetas y snapshots.
package catalog

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

// importScope serializa importaciones concurrentes del catálogo.
const importScope = "catalog"

// ProductUseCase alta, modificación y consulta de productos. No toca el ledger de stock.
type ProductUseCase struct {
	repo repository.ProductRepository
	tx   inventory.TxRunner
}

// NewProductUseCase construye el caso de uso. repo sirve las lecturas; tx las importaciones masivas.
func NewProductUseCase(repo repository.ProductRepository, tx inventory.TxRunner) *ProductUseCase {
	return &ProductUseCase{repo: repo, tx: tx}
}

// Upsert crea el producto o reemplaza su descripción.
func (uc *ProductUseCase) Upsert(ctx context.Context, id int64, description string) (*entity.Product, error) {
	p, err := normalize(id, description)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID devuelve NotFound si el producto no está en el catálogo.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.Errorf(domain.KindNotFound, "producto %d no encontrado", id)
	}
	return p, nil
}

// List devuelve el catálogo completo ordenado por id.
func (uc *ProductUseCase) List(ctx context.Context) ([]entity.Product, error) {
	return uc.repo.List(ctx)
}

// Import aplica todas las filas en una transacción: una fila inválida descarta la importación.
func (uc *ProductUseCase) Import(ctx context.Context, products []entity.Product) (int, error) {
	clean := make([]entity.Product, 0, len(products))
	for i, p := range products {
		n, err := normalize(p.ID, p.Description)
		if err != nil {
			return 0, domain.Wrap(domain.KindInvalidInput, err, "fila %d", i+1)
		}
		clean = append(clean, n)
	}
	err := uc.tx.Run(ctx, importScope, func(l repository.Ledger) error {
		for i := range clean {
			if err := l.Products.Upsert(ctx, &clean[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(clean), nil
}

func normalize(id int64, description string) (entity.Product, error) {
	if id <= 0 {
		return entity.Product{}, domain.Errorf(domain.KindInvalidInput, "id de producto inválido: %d", id)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return entity.Product{}, domain.Errorf(domain.KindInvalidInput, "producto %d: descripción vacía", id)
	}
	return entity.Product{ID: id, Description: description}, nil
}
