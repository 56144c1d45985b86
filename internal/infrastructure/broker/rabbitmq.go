// Package broker publica los mensajes del outbox en un exchange topic de RabbitMQ, como sink
// alternativo a la planilla.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

var _ outbox.Sink = (*RabbitMQClient)(nil)

const confirmTimeout = 10 * time.Second

// RabbitMQClient conexión y canal con Publisher Confirms activos.
type RabbitMQClient struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	log        *logger.Logger
	connClosed chan *amqp.Error
	chanClosed chan *amqp.Error
	closeOnce  sync.Once
	healthy    atomic.Bool
	cancel     context.CancelFunc
}

// NewRabbitMQClient conecta, declara el exchange topic y activa confirms.
func NewRabbitMQClient(url, exchange string, log *logger.Logger) (*RabbitMQClient, error) {
	c, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar a RabbitMQ: %w", err)
	}
	ch, err := c.Channel()
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("abrir canal RabbitMQ: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = c.Close()
		return nil, fmt.Errorf("declarar exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = c.Close()
		return nil, fmt.Errorf("activar publisher confirms: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &RabbitMQClient{
		conn:       c,
		channel:    ch,
		exchange:   exchange,
		log:        log,
		connClosed: make(chan *amqp.Error, 1),
		chanClosed: make(chan *amqp.Error, 1),
		cancel:     cancel,
	}
	client.healthy.Store(true)
	metrics.BrokerHealthy.Set(1)

	c.NotifyClose(client.connClosed)
	ch.NotifyClose(client.chanClosed)
	go client.watch(ctx)

	log.Info().Str("exchange", exchange).Msg("conectado a RabbitMQ")
	return client, nil
}

func (r *RabbitMQClient) watch(ctx context.Context) {
	select {
	case err := <-r.connClosed:
		r.markDown("conexión RabbitMQ cerrada", err)
	case err := <-r.chanClosed:
		r.markDown("canal RabbitMQ cerrado", err)
	case <-ctx.Done():
	}
}

func (r *RabbitMQClient) markDown(msg string, err *amqp.Error) {
	r.healthy.Store(false)
	metrics.BrokerHealthy.Set(0)
	ev := r.log.Warn()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

// RoutingKey "stock.<type>" según el campo type del payload.
func RoutingKey(payload json.RawMessage) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.Type == "" {
		return "stock.unknown"
	}
	return "stock." + head.Type
}

// Deliver publica el payload como mensaje persistente y espera el ACK del broker.
func (r *RabbitMQClient) Deliver(ctx context.Context, payload json.RawMessage) error {
	if !r.IsHealthy() {
		return fmt.Errorf("conexión con el broker cerrada")
	}
	deferred, err := r.channel.PublishWithDeferredConfirmWithContext(ctx, r.exchange, RoutingKey(payload), false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		})
	if err != nil {
		return fmt.Errorf("publicar en %s: %w", r.exchange, err)
	}

	timer := time.NewTimer(confirmTimeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-deferred.Done():
		if !deferred.Acked() {
			return fmt.Errorf("NACK de RabbitMQ: mensaje no persistido")
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("timeout esperando publisher confirm")
	}
}

// IsHealthy true mientras conexión y canal sigan abiertos.
func (r *RabbitMQClient) IsHealthy() bool {
	return r.healthy.Load()
}

// Close libera canal y conexión.
func (r *RabbitMQClient) Close() error {
	r.closeOnce.Do(func() {
		r.cancel()
		if r.channel != nil {
			_ = r.channel.Close()
		}
		if r.conn != nil {
			_ = r.conn.Close()
		}
	})
	return nil
}
