package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

func TestRollbackLast_DescuentaExactamenteN(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.Product{ID: 1, Description: "Widget"})
	older := f.insertRange(t, 1, "A", 1, 5, 0)
	newer := f.insertRange(t, 1, "A", 6, 10, 0)
	recon := inventory.NewReconciliationUseCase(f.ledger)

	before, err := recon.ComputeNet(ctx, 1, "A")
	require.NoError(t, err)

	res, err := inventory.NewRollbackUseCase(f.tx).RollbackLast(ctx, inventory.RollbackInput{ProductID: 1, Lot: "A", UnitType: entity.UnitTypePallet, Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, []int64{newer.ID, older.ID}, res.AffectedRangeIDs)
	require.NotNil(t, res.NewLastSerial)
	assert.Equal(t, int64(3), *res.NewLastSerial)

	after, err := recon.ComputeNet(ctx, 1, "A")
	require.NoError(t, err)
	assert.Equal(t, before.Pallets-7, after.Pallets)
	assert.Equal(t, after, res.Net)
}

func TestRollbackLast_TodoElStockDejaSinUltimaSerie(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.Product{ID: 1, Description: "Widget"})
	f.insertRange(t, 1, "A", 1, 3, 0)

	res, err := inventory.NewRollbackUseCase(f.tx).RollbackLast(ctx, inventory.RollbackInput{ProductID: 1, Lot: "A", UnitType: entity.UnitTypePallet, Quantity: 3})
	require.NoError(t, err)
	assert.Nil(t, res.NewLastSerial)
	assert.Zero(t, res.Net.Pallets)
}

func TestRollbackLast_Packs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.Product{ID: 1, Description: "Widget"})
	f.insertRange(t, 1, "A", 1, 10, 7)

	res, err := inventory.NewRollbackUseCase(f.tx).RollbackLast(ctx, inventory.RollbackInput{ProductID: 1, Lot: "A", UnitType: entity.UnitTypePacks, Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Net.Packs)
	assert.Equal(t, int64(10), res.Net.Pallets, "el último serial pasa a contarse como pallet completo")

	ranges, err := f.ledger.Ranges.ListDescending(ctx, 1, "A")
	require.NoError(t, err)
	require.Len(t, ranges, 1, "agotar packs no elimina el rango")
}

func TestRollbackLast_RangoConsumidoNoAplicaNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.Product{ID: 1, Description: "Widget"})
	f.insertRange(t, 1, "A", 100, 105, 0)
	_, err := inventory.NewRecordOutboundUseCase(f.tx).Record(ctx, rec(1, "A", 103))
	require.NoError(t, err)

	before, err := f.ledger.Ranges.ListDescending(ctx, 1, "A")
	require.NoError(t, err)
	pending, err := f.ledger.Outbox.Count(ctx)
	require.NoError(t, err)

	_, err = inventory.NewRollbackUseCase(f.tx).RollbackLast(ctx, inventory.RollbackInput{ProductID: 1, Lot: "A", UnitType: entity.UnitTypePallet, Quantity: 6})
	require.Error(t, err)
	assert.Equal(t, domain.KindRangeAlreadyConsumed, domain.KindOf(err))

	after, err := f.ledger.Ranges.ListDescending(ctx, 1, "A")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	n, err := f.ledger.Outbox.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending, n, "no se encola nada si el ajuste aborta")
}

func TestRollbackLast_StockInsuficiente(t *testing.T) {
	f := newFixture(t, entity.Product{ID: 1, Description: "Widget"})
	f.insertRange(t, 1, "A", 1, 3, 0)

	_, err := inventory.NewRollbackUseCase(f.tx).RollbackLast(context.Background(), inventory.RollbackInput{ProductID: 1, Lot: "A", UnitType: entity.UnitTypePallet, Quantity: 5})
	require.Error(t, err)
	assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
	assert.Contains(t, err.Error(), "producto 1 lote A")
}

func TestRollbackLast_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	uc := inventory.NewRollbackUseCase(f.tx)

	_, err := uc.RollbackLast(context.Background(), inventory.RollbackInput{ProductID: 1, Lot: "A", UnitType: "caja", Quantity: 1})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	_, err = uc.RollbackLast(context.Background(), inventory.RollbackInput{ProductID: 1, Lot: "A", UnitType: entity.UnitTypePallet, Quantity: 0})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestRollbackLast_LoteVacioEsEntradaInvalida(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.Product{ID: 1, Description: "Widget"})
	f.insertRange(t, 1, "A", 1, 3, 0)
	f.insertRange(t, 1, "B", 1, 3, 0)
	uc := inventory.NewRollbackUseCase(f.tx)

	for _, lot := range []string{"", "   "} {
		_, err := uc.RollbackLast(ctx, inventory.RollbackInput{ProductID: 1, Lot: lot, UnitType: entity.UnitTypePallet, Quantity: 1})
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err), "lote %q", lot)
	}

	_, err := uc.RollbackLast(ctx, inventory.RollbackInput{ProductID: 0, Lot: "A", UnitType: entity.UnitTypePallet, Quantity: 1})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	ranges, err := f.ledger.Ranges.ListDescending(ctx, 1, "A")
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, int64(3), ranges[0].SerialEnd)
}
