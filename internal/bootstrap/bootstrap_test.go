package bootstrap_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/bootstrap"
	"github.com/jhoicas/stock-qr/pkg/config"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stock.db")
	store, err := bootstrap.OpenStore(ctx, config.DBConfig{Driver: config.DriverSQLite, SQLitePath: path}, logger.Nop())
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Ledger.Outbox.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NotNil(t, store.OutboxLock)
}

func TestNewDispatcher_FlushEsperaAOtroProceso(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stock.db")
	dbCfg := config.DBConfig{Driver: config.DriverSQLite, SQLitePath: path}
	cfg := &config.Config{Sync: config.SyncConfig{Sink: config.SinkNone, FlushLimit: 10, SnapshotChunkSize: 10}}

	a, err := bootstrap.OpenStore(ctx, dbCfg, logger.Nop())
	require.NoError(t, err)
	defer a.Close()
	b, err := bootstrap.OpenStore(ctx, dbCfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	unlock, err := a.OutboxLock.Lock(ctx)
	require.NoError(t, err)

	sink, closeSink, err := bootstrap.NewSink(cfg, logger.Nop())
	require.NoError(t, err)
	defer closeSink()
	d := bootstrap.NewDispatcher(b, sink, cfg.Sync, logger.Nop())

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = d.Flush(short, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	_, err = d.Flush(ctx, 0)
	assert.NoError(t, err, "cola vacía")
}

func TestOpenStore_DriverDesconocido(t *testing.T) {
	_, err := bootstrap.OpenStore(context.Background(), config.DBConfig{Driver: "mysql"}, logger.Nop())
	assert.Error(t, err)
}

func TestNewSink_NoneDejaLaColaIntacta(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Sync: config.SyncConfig{Sink: config.SinkNone, FlushLimit: 10, SnapshotChunkSize: 10}}
	sink, closeSink, err := bootstrap.NewSink(cfg, logger.Nop())
	require.NoError(t, err)
	defer closeSink()

	store, err := bootstrap.OpenStore(ctx, config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	defer store.Close()

	d := bootstrap.NewDispatcher(store, sink, cfg.Sync, logger.Nop())
	_, err = d.Enqueue(ctx, json.RawMessage(`{"type":"scan_pp"}`))
	require.NoError(t, err)

	sent, err := d.Flush(ctx, 0)
	assert.Equal(t, 0, sent)
	assert.True(t, outbox.IsDeliveryFailure(err))
	assert.True(t, errors.Is(err, bootstrap.ErrSinkDisabled))

	n, err := d.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewSink_SheetsSinURL(t *testing.T) {
	cfg := &config.Config{Sync: config.SyncConfig{Sink: config.SinkSheets, FlushLimit: 10, SnapshotChunkSize: 10}}
	_, _, err := bootstrap.NewSink(cfg, logger.Nop())
	assert.Error(t, err)
}
