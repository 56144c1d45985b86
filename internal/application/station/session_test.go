package station_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/application/station"
	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
	"github.com/jhoicas/stock-qr/internal/infrastructure/sqlite"
)

func qr(serial int64) string {
	return scan.Encode(entity.ScanRecord{Serial: serial, ProductID: 42, Description: "Widget", Lot: "010124", CreatedOn: "2024-01-01", ExpiresOn: "2024-07-01"})
}

func newSession(t *testing.T) *station.Session {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.NewProductRepository(db).Upsert(context.Background(), &entity.Product{ID: 42, Description: "Widget"}))

	tx := sqlite.NewTxRunner(db)
	return station.NewSession(inventory.NewRegisterInboundUseCase(tx), inventory.NewRecordOutboundUseCase(tx))
}

func TestSession_IngresoCompleto(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	ev := s.Scan(ctx, qr(1))
	assert.Equal(t, station.EventStartAccepted, ev.Kind)
	assert.Equal(t, station.AwaitEnd, s.State())

	ev = s.Scan(ctx, qr(5))
	require.Equal(t, station.EventCommitted, ev.Kind, ev.Message)
	assert.Equal(t, int64(5), ev.Inbound.Net.Pallets)
	assert.Contains(t, ev.Message, "COMPLETO")
	assert.Equal(t, station.AwaitStart, s.State())
}

func TestSession_IngresoParcialPidePacks(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	_, committed := s.SetPartial(ctx, true)
	assert.False(t, committed)

	s.Scan(ctx, qr(1))
	ev := s.Scan(ctx, qr(10))
	assert.Equal(t, station.EventAwaitingPacks, ev.Kind)

	ev = s.Packs(ctx, "cero")
	assert.Equal(t, station.EventRejected, ev.Kind)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(ev.Err))
	assert.Equal(t, station.AwaitPacks, s.State(), "packs inválido no reinicia el flujo")

	ev = s.Packs(ctx, "7")
	require.Equal(t, station.EventCommitted, ev.Kind, ev.Message)
	assert.Equal(t, int64(9), ev.Inbound.Net.Pallets)
	assert.Equal(t, int64(7), ev.Inbound.Net.Packs)
	assert.Contains(t, ev.Message, "PARCIAL (packs: 7)")
}

func TestSession_ApagarParcialGuardaComoCompleto(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	s.SetPartial(ctx, true)
	s.Scan(ctx, qr(1))
	s.Scan(ctx, qr(3))

	ev, committed := s.SetPartial(ctx, false)
	require.True(t, committed)
	assert.Equal(t, station.EventCommitted, ev.Kind)
	assert.Equal(t, int64(3), ev.Inbound.Net.Pallets)
}

func TestSession_QRInvalidoReinicia(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	s.Scan(ctx, qr(1))

	ev := s.Scan(ctx, "texto suelto")
	assert.Equal(t, station.EventRejected, ev.Kind)
	assert.Equal(t, domain.KindUnrecognizedFormat, domain.KindOf(ev.Err))
	assert.Equal(t, station.AwaitStart, s.State())
}

func TestSession_Salida(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	s.Scan(ctx, qr(1))
	s.Scan(ctx, qr(4))

	s.SetMode(station.ModeOutbound)
	ev := s.Scan(ctx, qr(2))
	require.Equal(t, station.EventOutboundRecorded, ev.Kind, ev.Message)
	assert.Equal(t, int64(3), ev.Outbound.Net.Pallets)

	ev = s.Scan(ctx, qr(2))
	assert.Equal(t, station.EventRejected, ev.Kind)
	assert.Equal(t, domain.KindDuplicateMovement, domain.KindOf(ev.Err))

	ev = s.Scan(ctx, qr(99))
	assert.Equal(t, domain.KindSerialNotFound, domain.KindOf(ev.Err))
}

func TestSession_LineaVaciaDaIndicacion(t *testing.T) {
	s := newSession(t)
	ev := s.Scan(context.Background(), "   ")
	assert.Equal(t, station.EventHint, ev.Kind)
	assert.Contains(t, ev.Message, "INICIO")
}
