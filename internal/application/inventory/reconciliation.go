package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/inventory"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

// ReconciliationUseCase calcula stock neto desde las filas del ledger. Nunca lee la proyección
// como fuente de verdad.
type ReconciliationUseCase struct {
	ledger repository.Ledger
}

// NewReconciliationUseCase construye el caso de uso sobre repositorios del pool.
func NewReconciliationUseCase(ledger repository.Ledger) *ReconciliationUseCase {
	return &ReconciliationUseCase{ledger: ledger}
}

// ComputeNet stock neto de producto+lote. Con lot vacío agrega todos los lotes del producto.
func (uc *ReconciliationUseCase) ComputeNet(ctx context.Context, productID int64, lot string) (entity.NetStock, error) {
	return computeNet(ctx, uc.ledger, productID, lot, "")
}

// ListNet stock neto de cada producto+lote con movimientos, ordenado por producto y lote.
func (uc *ReconciliationUseCase) ListNet(ctx context.Context) ([]entity.NetStock, error) {
	in, err := uc.ledger.Ranges.SumInboundGrouped(ctx)
	if err != nil {
		return nil, err
	}
	out, err := uc.ledger.Movements.SumOutboundGrouped(ctx)
	if err != nil {
		return nil, err
	}
	descs, err := uc.descriptions(ctx)
	if err != nil {
		return nil, err
	}

	merged := inventory.MergeTotals(in, out)
	res := make([]entity.NetStock, 0, len(merged))
	for _, n := range merged {
		n.Description = descs[n.ProductID]
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].ProductID != res[j].ProductID {
			return res[i].ProductID < res[j].ProductID
		}
		return res[i].Lot < res[j].Lot
	})
	return res, nil
}

// SnapshotRows stock neto por producto (todos los lotes) para cada producto del catálogo,
// incluidos los que no tienen movimientos.
func (uc *ReconciliationUseCase) SnapshotRows(ctx context.Context) ([]outbox.SnapshotRow, error) {
	products, err := uc.ledger.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	nets, err := uc.ListNet(ctx)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[int64]*outbox.SnapshotRow, len(products))
	rows := make([]outbox.SnapshotRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, outbox.SnapshotRow{ProductID: p.ID, Description: p.Description})
	}
	for i := range rows {
		byProduct[rows[i].ProductID] = &rows[i]
	}
	for _, n := range nets {
		r, ok := byProduct[n.ProductID]
		if !ok {
			continue
		}
		r.Pallets += n.Pallets
		r.Packs += n.Packs
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductID < rows[j].ProductID })
	return rows, nil
}

func (uc *ReconciliationUseCase) descriptions(ctx context.Context) (map[int64]string, error) {
	products, err := uc.ledger.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[int64]string, len(products))
	for _, p := range products {
		m[p.ID] = p.Description
	}
	return m, nil
}

// computeNet suma ingresos y salidas del scope. fallbackDesc se usa si el producto no está en catálogo.
func computeNet(ctx context.Context, l repository.Ledger, productID int64, lot, fallbackDesc string) (entity.NetStock, error) {
	in, err := l.Ranges.SumInbound(ctx, productID, lot)
	if err != nil {
		return entity.NetStock{}, fmt.Errorf("sum inbound: %w", err)
	}
	out, err := l.Movements.SumOutbound(ctx, productID, lot)
	if err != nil {
		return entity.NetStock{}, fmt.Errorf("sum outbound: %w", err)
	}
	desc := fallbackDesc
	p, err := l.Products.GetByID(ctx, productID)
	if err != nil {
		return entity.NetStock{}, err
	}
	if p != nil {
		desc = p.Description
	}
	return inventory.Net(productID, lot, desc, in, out), nil
}
