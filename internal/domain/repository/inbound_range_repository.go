package repository

import (
	"context"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// Totals agregados de pallets y packs por producto+lote (Lot vacío = todos los lotes).
type Totals struct {
	ProductID int64
	Lot       string
	Pallets   int64
	Packs     int64
}

// RangeMutation cambio sobre un rango existente. Los campos nil no se modifican.
type RangeMutation struct {
	SerialEnd     *int64
	TrailingPacks *int
}

// InboundRangeRepository define el puerto de persistencia de rangos de ingreso (stock_pp).
type InboundRangeRepository interface {
	Insert(ctx context.Context, r *entity.InboundRange) error
	// ListDescending ordena por serial_end descendente: stock físico más reciente primero.
	ListDescending(ctx context.Context, productID int64, lot string) ([]entity.InboundRange, error)
	// FindContaining devuelve el rango más antiguo que contiene la serie, o nil.
	FindContaining(ctx context.Context, productID int64, lot string, serial int64) (*entity.InboundRange, error)
	// FindOverlapping devuelve un rango que comparte series con [start, end], o nil.
	FindOverlapping(ctx context.Context, productID int64, lot string, start, end int64) (*entity.InboundRange, error)
	Mutate(ctx context.Context, id int64, m RangeMutation) error
	Delete(ctx context.Context, id int64) error
	// MaxSerialEnd devuelve false si no quedan rangos para producto+lote.
	MaxSerialEnd(ctx context.Context, productID int64, lot string) (int64, bool, error)
	// SumInbound aplica pallets = Σ(span - [packs>0]), packs = Σ trailing_packs.
	SumInbound(ctx context.Context, productID int64, lot string) (Totals, error)
	SumInboundGrouped(ctx context.Context) ([]Totals, error)
}
