package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/bootstrap"
	"github.com/jhoicas/stock-qr/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-qr/pkg/backoff"
	"github.com/jhoicas/stock-qr/pkg/config"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "relay",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	opts := []outbox.RelayOption{
		outbox.WithRelayLogger(log.Named("relay")),
		outbox.WithFlushObserver(func(d time.Duration) { metrics.FlushDuration.Observe(d.Seconds()) }),
	}
	if h, ok := sink.(interface{ IsHealthy() bool }); ok {
		opts = append(opts, outbox.WithHealthCheck(h.IsHealthy))
	}

	log.Info().
		Str("sink", cfg.Sync.Sink).
		Dur("interval", cfg.Sync.RelayInterval).
		Int("limit", cfg.Sync.FlushLimit).
		Msg("iniciando relay")

	if cfg.Sync.MetricsAddr != "" {
		srv := startObservabilityServer(cfg.Sync.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	relay := outbox.NewRelay(dispatcher, cfg.Sync.RelayInterval,
		backoff.New(cfg.Sync.BackoffMin, cfg.Sync.BackoffMax, 2), opts...)
	relay.Run(ctx)

	log.Info().Msg("proceso finalizado")
}

func startObservabilityServer(addr string, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("relay ok"))
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("métricas del relay en /metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("servidor de métricas")
		}
	}()
	return srv
}
