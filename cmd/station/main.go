package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/application/station"
	"github.com/jhoicas/stock-qr/internal/bootstrap"
	"github.com/jhoicas/stock-qr/internal/interfaces/console"
	"github.com/jhoicas/stock-qr/pkg/config"
	"github.com/jhoicas/stock-qr/pkg/encoding"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	// stdout queda para el operador.
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "station",
		Out:     os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	decoder, err := encoding.NewDecoder(cfg.Station.InputEncoding)
	if err != nil {
		log.Fatal().Err(err).Msg("codificación de entrada")
	}

	store, err := bootstrap.OpenStore(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al ledger")
	}
	defer store.Close()

	sink, closeSink, err := bootstrap.NewSink(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("sink de sincronización")
	}
	defer closeSink()

	dispatcher := bootstrap.NewDispatcher(store, sink, cfg.Sync, log)
	opts := []inventory.Option{inventory.WithFlusher(dispatcher)}

	session := station.NewSession(
		inventory.NewRegisterInboundUseCase(store.Tx, opts...),
		inventory.NewRecordOutboundUseCase(store.Tx, opts...),
	)
	c := console.New(console.Deps{
		Session:  session,
		Outbox:   dispatcher,
		Snapshot: inventory.NewReconciliationUseCase(store.Ledger),
		Decoder:  decoder,
		Out:      os.Stdout,
		Logger:   log.Named("console"),
	})

	log.Info().Str("encoding", cfg.Station.InputEncoding).Msg("estación iniciada")
	if err := c.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("lectura de entrada")
	}
	log.Info().Msg("estación detenida")
}
