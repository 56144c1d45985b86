// Package metrics expone contadores Prometheus del ledger y de la sincronización.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
)

var (
	// OutboxDeliveries entregas al sink por tipo de mensaje y resultado (sent/error).
	OutboxDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockqr_outbox_deliveries_total",
		Help: "Entregas al sink externo por tipo y resultado",
	}, []string{"type", "status"})

	// OutboxBacklog mensajes pendientes tras el último flush.
	OutboxBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockqr_outbox_backlog",
		Help: "Mensajes pendientes en sheets_outbox",
	})

	// LedgerOperations operaciones del ledger por tipo y resultado (ok o Kind del error).
	LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockqr_ledger_operations_total",
		Help: "Operaciones sobre el ledger por tipo y resultado",
	}, []string{"operation", "result"})

	// FlushDuration duración de cada flush del relay.
	FlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockqr_flush_duration_seconds",
		Help:    "Duración de cada flush del outbox",
		Buckets: prometheus.DefBuckets,
	})

	// BrokerHealthy 1 si la conexión AMQP está activa.
	BrokerHealthy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockqr_broker_healthy",
		Help: "Estado de la conexión con RabbitMQ (1 activa, 0 caída)",
	})
)

// Recorder implementa outbox.Recorder sobre los colectores globales.
type Recorder struct{}

var _ outbox.Recorder = Recorder{}

func (Recorder) Delivered(kind string) { OutboxDeliveries.WithLabelValues(kind, "sent").Inc() }
func (Recorder) Failed(kind string)    { OutboxDeliveries.WithLabelValues(kind, "error").Inc() }
func (Recorder) Pending(n int)         { OutboxBacklog.Set(float64(n)) }

// Operation registra el resultado de una operación del ledger.
func Operation(name, result string) {
	LedgerOperations.WithLabelValues(name, result).Inc()
}
