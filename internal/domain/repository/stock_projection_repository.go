package repository

import (
	"context"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// StockProjectionRepository proyección desnormalizada de stock neto por producto+lote.
type StockProjectionRepository interface {
	Upsert(ctx context.Context, net entity.NetStock) error
	List(ctx context.Context) ([]entity.StockProjection, error)
}
