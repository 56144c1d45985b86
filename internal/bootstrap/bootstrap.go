// Package bootstrap arma el ledger y el sink de sincronización a partir de la configuración.
// Lo comparten los binarios api, relay y station.
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
	"github.com/jhoicas/stock-qr/internal/infrastructure/broker"
	"github.com/jhoicas/stock-qr/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-qr/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-qr/internal/infrastructure/sheets"
	"github.com/jhoicas/stock-qr/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-qr/pkg/config"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

// Store ledger sobre el pool (lecturas y cola), runner transaccional (escrituras) y lock de flush.
type Store struct {
	Ledger     repository.Ledger
	Tx         inventory.TxRunner
	OutboxLock outbox.Locker
	Close      func()
}

// OpenStore abre PostgreSQL o SQLite según DB_DRIVER y aplica el esquema.
func OpenStore(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", cfg.Driver).Str("path", cfg.SQLitePath).Msg("ledger abierto")
		return &Store{
			Ledger:     sqlite.NewLedger(db),
			Tx:         sqlite.NewTxRunner(db),
			OutboxLock: sqlite.NewOutboxLock(db),
			Close:      func() { _ = db.Close() },
		}, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool, cfg.Schema); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Str("driver", cfg.Driver).Str("schema", cfg.Schema).Msg("ledger abierto")
		return &Store{
			Ledger:     postgres.NewLedger(pool),
			Tx:         postgres.NewTxRunner(pool),
			OutboxLock: postgres.NewOutboxLock(pool),
			Close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("bootstrap: driver desconocido %q", cfg.Driver)
}

// ErrSinkDisabled lo devuelve el sink "none": los mensajes quedan en cola.
var ErrSinkDisabled = errors.New("sincronización deshabilitada (SYNC_SINK=none)")

type disabledSink struct{}

func (disabledSink) Deliver(context.Context, json.RawMessage) error { return ErrSinkDisabled }

// NewSink construye el sink configurado. El closer nunca es nil.
func NewSink(cfg *config.Config, log *logger.Logger) (outbox.Sink, func(), error) {
	if err := cfg.Sync.Validate(); err != nil {
		return nil, nil, err
	}
	switch cfg.Sync.Sink {
	case config.SinkSheets:
		return sheets.NewClient(cfg.Sync.SheetsURL, cfg.Sync.APIKey, cfg.Sync.Timeout), func() {}, nil
	case config.SinkAMQP:
		client, err := broker.NewRabbitMQClient(cfg.Broker.URL, cfg.Broker.Exchange, log.Named("broker"))
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	}
	log.Warn().Msg("SYNC_SINK=none: los cambios quedan en sheets_outbox sin entregar")
	return disabledSink{}, func() {}, nil
}

// NewDispatcher dispatcher del outbox con métricas y logger.
func NewDispatcher(store *Store, sink outbox.Sink, cfg config.SyncConfig, log *logger.Logger) *outbox.Dispatcher {
	return outbox.NewDispatcher(store.Ledger.Outbox, sink,
		outbox.WithLimit(cfg.FlushLimit),
		outbox.WithChunkSize(cfg.SnapshotChunkSize),
		outbox.WithRecorder(metrics.Recorder{}),
		outbox.WithLogger(log.Named("outbox")),
		outbox.WithLocker(store.OutboxLock),
	)
}
