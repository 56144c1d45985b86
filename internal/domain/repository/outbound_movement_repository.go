package repository

import (
	"context"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// OutboundMovementRepository define el puerto de persistencia de salidas.
type OutboundMovementRepository interface {
	// Insert devuelve domain.ErrDuplicateMovement si ya existe (producto, lote, serie).
	Insert(ctx context.Context, m *entity.OutboundMovement) error
	Exists(ctx context.Context, productID int64, lot string, serial int64) (bool, error)
	CountInRange(ctx context.Context, productID int64, lot string, start, end int64) (int, error)
	// SumOutbound: pallets = cantidad de salidas tipo pallet, packs = Σ packs_qty de salidas tipo packs.
	SumOutbound(ctx context.Context, productID int64, lot string) (Totals, error)
	SumOutboundGrouped(ctx context.Context) ([]Totals, error)
}
