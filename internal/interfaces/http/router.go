package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-qr/internal/application/catalog"
	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/pkg/jwt"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName    string
	Inbound        *inventory.RegisterInboundUseCase
	Outbound       *inventory.RecordOutboundUseCase
	Rollback       *inventory.RollbackUseCase
	Reconciliation *inventory.ReconciliationUseCase
	Reserve        *inventory.ReserveSerialsUseCase
	Products       *catalog.ProductUseCase
	Outbox         *outbox.Dispatcher
	JWTSecret      string
	Logger         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger != nil {
		app.Use(RequestLogger(deps.Logger))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleOperator, jwt.RoleSupervisor)
	supervisor := RequireRole(jwt.RoleSupervisor)

	scanHandler := NewScanHandler()
	protected.Post("/scans/parse", anyRole, scanHandler.Parse)

	// Ledger
	ledgerHandler := NewLedgerHandler(deps.Inbound, deps.Outbound, deps.Rollback)
	protected.Post("/inbound", anyRole, ledgerHandler.RegisterInbound)
	protected.Post("/outbound", anyRole, ledgerHandler.RecordOutbound)
	protected.Post("/adjustments/rollback", supervisor, ledgerHandler.Rollback)

	// Stock (export.xlsx antes de :product_id)
	stockHandler := NewStockHandler(deps.Reconciliation, deps.Reserve)
	stock := protected.Group("/stock", anyRole)
	stock.Get("/", stockHandler.List)
	stock.Get("/export.xlsx", stockHandler.ExportXLSX)
	stock.Get("/:product_id", stockHandler.GetByProduct)
	protected.Post("/serials/reserve", anyRole, stockHandler.ReserveSerials)

	// Catálogo (import antes de :id)
	productHandler := NewProductHandler(deps.Products)
	products := protected.Group("/products")
	products.Get("/", anyRole, productHandler.List)
	products.Post("/import", supervisor, productHandler.Import)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Put("/:id", supervisor, productHandler.Put)

	// Sincronización
	outboxHandler := NewOutboxHandler(deps.Outbox, deps.Reconciliation)
	outboxGroup := protected.Group("/outbox")
	outboxGroup.Get("/", anyRole, outboxHandler.List)
	outboxGroup.Post("/flush", anyRole, outboxHandler.Flush)
	outboxGroup.Post("/snapshot", supervisor, outboxHandler.Snapshot)
}

// RequestLogger registra método, ruta, estado y latencia de cada request.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		ev := log.Info()
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("station_id", GetStationID(c)).
			Msg("request")
		return err
	}
}
