package inventory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
)

func TestReserve_ContinuaDesdeRangosYMarca(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.Product{ID: 3, Description: "Queso | rallado"})
	f.insertRange(t, 3, "A", 1, 10, 0)
	uc := inventory.NewReserveSerialsUseCase(f.tx, inventory.WithClock(clock))

	res, err := uc.Reserve(ctx, inventory.ReserveInput{ProductID: 3, Lot: "A", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(11), res.First)
	assert.Equal(t, int64(13), res.Last)
	assert.Equal(t, "Queso / rallado", res.Description)
	assert.Equal(t, "2024-08-31", res.CreatedOn)
	assert.Equal(t, "2025-02-28", res.ExpiresOn)
	require.Len(t, res.Payloads, 3)

	parsed, err := scan.Parse(res.Payloads[0])
	require.NoError(t, err)
	assert.Equal(t, int64(11), parsed.Serial)
	assert.Equal(t, int64(3), parsed.ProductID)
	assert.Equal(t, "A", parsed.Lot)

	again, err := uc.Reserve(ctx, inventory.ReserveInput{ProductID: 3, Lot: "A", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(14), again.First, "la marca persistida evita repetir series")
}

func TestReserve_LoteDelDia(t *testing.T) {
	f := newFixture(t, entity.Product{ID: 3, Description: "Queso"})
	res, err := inventory.NewReserveSerialsUseCase(f.tx, inventory.WithClock(clock)).
		Reserve(context.Background(), inventory.ReserveInput{ProductID: 3, Count: 1})
	require.NoError(t, err)
	assert.Equal(t, "310824", res.Lot)
	assert.Equal(t, int64(1), res.First)
}

func TestReserve_Errores(t *testing.T) {
	f := newFixture(t)
	uc := inventory.NewReserveSerialsUseCase(f.tx)

	_, err := uc.Reserve(context.Background(), inventory.ReserveInput{ProductID: 99, Lot: "A", Count: 1})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = uc.Reserve(context.Background(), inventory.ReserveInput{ProductID: 99, Lot: "A", Count: 0})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestAddMonthsClamped(t *testing.T) {
	d := time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-02-28", inventory.AddMonthsClamped(d, 6).Format("2006-01-02"))
	assert.Equal(t, "2024-02-29", inventory.AddMonthsClamped(time.Date(2023, 8, 31, 0, 0, 0, 0, time.UTC), 6).Format("2006-01-02"))
	assert.Equal(t, "2024-07-15", inventory.AddMonthsClamped(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 6).Format("2006-01-02"))
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "a/b-c d", inventory.SanitizeLabel(" a|b=c\nd "))
	assert.Equal(t, 90, len([]rune(inventory.SanitizeLabel(strings.Repeat("ñ", 120)))))
}
