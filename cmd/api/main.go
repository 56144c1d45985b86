package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-qr/internal/application/catalog"
	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/bootstrap"
	httpRouter "github.com/jhoicas/stock-qr/internal/interfaces/http"
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
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sink", cfg.Sync.Sink).
		Msg("iniciando aplicación")

	ctx := context.Background()
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

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock QR API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName:    cfg.App.Name,
		Inbound:        inventory.NewRegisterInboundUseCase(store.Tx, opts...),
		Outbound:       inventory.NewRecordOutboundUseCase(store.Tx, opts...),
		Rollback:       inventory.NewRollbackUseCase(store.Tx, opts...),
		Reconciliation: inventory.NewReconciliationUseCase(store.Ledger),
		Reserve:        inventory.NewReserveSerialsUseCase(store.Tx),
		Products:       catalog.NewProductUseCase(store.Ledger.Products, store.Tx),
		Outbox:         dispatcher,
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
