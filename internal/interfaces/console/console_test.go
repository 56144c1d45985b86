package console_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/application/station"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
	"github.com/jhoicas/stock-qr/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-qr/internal/interfaces/console"
	"github.com/jhoicas/stock-qr/pkg/encoding"
)

type memSink struct {
	fail      bool
	delivered []string
}

func (s *memSink) Deliver(_ context.Context, payload json.RawMessage) error {
	if s.fail {
		return errors.New("sin red")
	}
	s.delivered = append(s.delivered, string(payload))
	return nil
}

func qr(serial int64) string {
	return scan.Encode(entity.ScanRecord{Serial: serial, ProductID: 42, Description: "Café", Lot: "010124", CreatedOn: "2024-01-01", ExpiresOn: "2024-07-01"})
}

type harness struct {
	console *console.Console
	session *station.Session
	sink    *memSink
	out     *bytes.Buffer
	outbox  *outbox.Dispatcher
}

func newHarness(t *testing.T, enc string) *harness {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.NewProductRepository(db).Upsert(ctx, &entity.Product{ID: 42, Description: "Café"}))

	ledger := sqlite.NewLedger(db)
	tx := sqlite.NewTxRunner(db)
	sink := &memSink{}
	d := outbox.NewDispatcher(ledger.Outbox, sink)
	sess := station.NewSession(
		inventory.NewRegisterInboundUseCase(tx, inventory.WithFlusher(d)),
		inventory.NewRecordOutboundUseCase(tx, inventory.WithFlusher(d)),
	)
	dec, err := encoding.NewDecoder(enc)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	c := console.New(console.Deps{
		Session:  sess,
		Outbox:   d,
		Snapshot: inventory.NewReconciliationUseCase(ledger),
		Decoder:  dec,
		Out:      out,
	})
	return &harness{console: c, session: sess, sink: sink, out: out, outbox: d}
}

func TestConsole_IngresoYSalida(t *testing.T) {
	h := newHarness(t, encoding.UTF8)
	in := strings.Join([]string{qr(1), qr(3), ":salida", qr(2), ":salir", qr(3)}, "\n")

	require.NoError(t, h.console.Run(context.Background(), strings.NewReader(in)))

	out := h.out.String()
	assert.Contains(t, out, "COMPLETO")
	assert.Contains(t, out, "modo SALIDA")
	assert.Contains(t, out, "stock 2 pallets")
	assert.Contains(t, out, "hasta luego")
	assert.Equal(t, station.ModeOutbound, h.session.Mode())
	assert.Len(t, h.sink.delivered, 2)
}

func TestConsole_ParcialPidePacks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, encoding.UTF8)

	h.console.Handle(ctx, ":parcial on")
	h.console.Handle(ctx, qr(1))
	h.console.Handle(ctx, qr(4))
	assert.Equal(t, station.AwaitPacks, h.session.State())

	h.console.Handle(ctx, "abc")
	assert.Equal(t, station.AwaitPacks, h.session.State())

	h.console.Handle(ctx, "6")
	assert.Equal(t, station.AwaitStart, h.session.State())
	assert.Contains(t, h.out.String(), "PARCIAL (packs: 6)")
}

func TestConsole_ApagarParcialGuardaCompleto(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, encoding.UTF8)

	h.console.Handle(ctx, ":parcial on")
	h.console.Handle(ctx, qr(1))
	h.console.Handle(ctx, qr(2))
	h.console.Handle(ctx, ":parcial off")

	assert.Equal(t, station.AwaitStart, h.session.State())
	assert.False(t, h.session.Partial())
	assert.Contains(t, h.out.String(), "COMPLETO")
}

func TestConsole_FlushReportaAdvertencia(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, encoding.UTF8)
	h.sink.fail = true

	h.console.Handle(ctx, qr(1))
	h.console.Handle(ctx, qr(2))
	assert.Contains(t, h.out.String(), "ADVERTENCIA")

	h.sink.fail = false
	h.console.Handle(ctx, ":flush")
	assert.Contains(t, h.out.String(), "cola sincronizada: 1 enviados, 0 en cola")

	n, err := h.outbox.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConsole_Snapshot(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, encoding.UTF8)

	h.console.Handle(ctx, ":snapshot")
	assert.Contains(t, h.out.String(), "1 productos en 1 bloques")
	assert.Len(t, h.sink.delivered, 1)
}

func TestConsole_LectorWindows1252(t *testing.T) {
	h := newHarness(t, encoding.Windows1252)
	legacy := func(serial int64) []byte {
		line := bytes.ReplaceAll([]byte(qr(serial)), []byte("Café"), []byte{'C', 'a', 'f', 0xE9})
		return append(line, '\n')
	}
	in := append(legacy(7), legacy(8)...)

	require.NoError(t, h.console.Run(context.Background(), bytes.NewReader(in)))
	assert.Contains(t, h.out.String(), "COMPLETO")
	assert.Contains(t, h.out.String(), "Café")
}

func TestConsole_ComandoDesconocido(t *testing.T) {
	h := newHarness(t, encoding.UTF8)
	assert.False(t, h.console.Handle(context.Background(), ":borrar"))
	assert.Contains(t, h.out.String(), "comando desconocido")
}
