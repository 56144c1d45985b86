package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/inventory"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

func TestNet_NoRecortaNegativos(t *testing.T) {
	n := inventory.Net(1, "A", "Widget",
		repository.Totals{Pallets: 2, Packs: 1},
		repository.Totals{Pallets: 3, Packs: 0},
	)
	assert.Equal(t, int64(-1), n.Pallets)
	assert.Equal(t, int64(1), n.Packs)

	shown := inventory.ForDisplay(n)
	assert.Zero(t, shown.Pallets)
	assert.Equal(t, int64(1), shown.Packs)
}

func TestMergeTotals(t *testing.T) {
	in := []repository.Totals{
		{ProductID: 1, Lot: "A", Pallets: 9, Packs: 7},
		{ProductID: 2, Lot: "B", Pallets: 4},
	}
	out := []repository.Totals{
		{ProductID: 1, Lot: "A", Pallets: 1, Packs: 7},
		{ProductID: 3, Lot: "C", Pallets: 1},
	}
	m := inventory.MergeTotals(in, out)

	assert.Equal(t, entity.NetStock{ProductID: 1, Lot: "A", Pallets: 8, Packs: 0}, m[inventory.ScopeKey{ProductID: 1, Lot: "A"}])
	assert.Equal(t, int64(4), m[inventory.ScopeKey{ProductID: 2, Lot: "B"}].Pallets)
	assert.Equal(t, int64(-1), m[inventory.ScopeKey{ProductID: 3, Lot: "C"}].Pallets)
}
