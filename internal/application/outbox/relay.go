package outbox

import (
	"context"
	"time"

	"github.com/jhoicas/stock-qr/pkg/backoff"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

// Relay vacía la cola por temporizador. Tras un fallo espera con backoff exponencial en lugar del
// intervalo fijo; el mensaje fallido se reintenta primero (FIFO).
type Relay struct {
	d        *Dispatcher
	interval time.Duration
	backoff  *backoff.Backoff
	healthy  func() bool
	observe  func(time.Duration)
	log      *logger.Logger
}

// RelayOption configura el Relay.
type RelayOption func(*Relay)

// WithHealthCheck salta el ciclo mientras el sink no esté disponible.
func WithHealthCheck(fn func() bool) RelayOption { return func(r *Relay) { r.healthy = fn } }

// WithFlushObserver recibe la duración de cada ciclo.
func WithFlushObserver(fn func(time.Duration)) RelayOption { return func(r *Relay) { r.observe = fn } }

// WithRelayLogger logger del relay.
func WithRelayLogger(l *logger.Logger) RelayOption { return func(r *Relay) { r.log = l } }

// NewRelay construye el relay. interval <= 0 usa 30s.
func NewRelay(d *Dispatcher, interval time.Duration, b *backoff.Backoff, opts ...RelayOption) *Relay {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	r := &Relay{d: d, interval: interval, backoff: b, log: logger.Nop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Tick vacía la cola completa en lotes del límite configurado. Se detiene en el primer fallo.
func (r *Relay) Tick(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		if r.observe != nil {
			r.observe(time.Since(start))
		}
	}()

	total := 0
	for {
		sent, err := r.d.Flush(ctx, 0)
		total += sent
		if err != nil {
			return total, err
		}
		if sent < r.d.limit || ctx.Err() != nil {
			return total, nil
		}
	}
}

// Run bloquea hasta que ctx se cancele.
func (r *Relay) Run(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Msg("relay del outbox iniciado")
	wait := time.Duration(0)
	for {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.log.Info().Msg("relay detenido")
			return
		case <-timer.C:
		}

		if r.healthy != nil && !r.healthy() {
			wait = r.backoff.Next()
			r.log.Warn().Dur("retry_in", wait).Msg("sink no disponible, se salta el ciclo")
			continue
		}

		sent, err := r.Tick(ctx)
		if err != nil {
			wait = r.backoff.Next()
			r.log.Warn().Err(err).Int("sent", sent).Int("attempt", r.backoff.Attempts()).Dur("retry_in", wait).Msg("flush incompleto")
			continue
		}
		if sent > 0 {
			r.log.Info().Int("sent", sent).Msg("cola entregada")
		}
		r.backoff.Reset()
		wait = r.interval
	}
}
