// Package outbox entrega la cola durable de cambios de stock al sink externo
// (at-least-once, orden FIFO, corte en el primer fallo).
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

// DefaultFlushLimit mensajes leídos por flush cuando no se indica otro límite.
const DefaultFlushLimit = 50

// Sink entrega un payload al sistema externo. Devuelve error si no hubo confirmación de éxito.
type Sink interface {
	Deliver(ctx context.Context, payload json.RawMessage) error
}

// Recorder recibe métricas de entrega. Puede ser nil.
type Recorder interface {
	Delivered(kind string)
	Failed(kind string)
	Pending(n int)
}

// SnapshotSource provee las filas del snapshot masivo.
type SnapshotSource interface {
	SnapshotRows(ctx context.Context) ([]SnapshotRow, error)
}

// Locker serializa los flushes de todos los procesos que comparten la cola.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// Dispatcher vacía la cola hacia el sink. Flush y SendSnapshot se ejecutan de a uno: dentro del
// proceso con un mutex y entre procesos con el Locker, si hay uno.
type Dispatcher struct {
	mu        sync.Mutex
	locker    Locker
	repo      repository.OutboxRepository
	sink      Sink
	limit     int
	chunkSize int
	metrics   Recorder
	log       *logger.Logger
	now       func() time.Time
}

// Option configura el Dispatcher.
type Option func(*Dispatcher)

// WithLimit fija el límite por flush.
func WithLimit(n int) Option { return func(d *Dispatcher) { d.limit = n } }

// WithChunkSize fija el tamaño de bloque del snapshot masivo.
func WithChunkSize(n int) Option { return func(d *Dispatcher) { d.chunkSize = n } }

// WithRecorder registra métricas de entrega.
func WithRecorder(r Recorder) Option { return func(d *Dispatcher) { d.metrics = r } }

// WithLogger reporta fallos de entrega como warning.
func WithLogger(l *logger.Logger) Option { return func(d *Dispatcher) { d.log = l } }

// WithLocker agrega el lock entre procesos (advisory lock en Postgres, lease en SQLite).
func WithLocker(l Locker) Option { return func(d *Dispatcher) { d.locker = l } }

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(d *Dispatcher) { d.now = now } }

// NewDispatcher construye el dispatcher sobre el repositorio de outbox del pool.
func NewDispatcher(repo repository.OutboxRepository, sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		repo:      repo,
		sink:      sink,
		limit:     DefaultFlushLimit,
		chunkSize: 200,
		now:       time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	if d.limit <= 0 {
		d.limit = DefaultFlushLimit
	}
	if d.chunkSize <= 0 {
		d.chunkSize = 200
	}
	return d
}

// Enqueue agrega un payload a la cola. Escritura local durable.
func (d *Dispatcher) Enqueue(ctx context.Context, payload json.RawMessage) (int64, error) {
	return d.repo.Enqueue(ctx, payload)
}

// Flush lee hasta limit mensajes por id ascendente y los entrega en orden. Ante el primer fallo
// se detiene y devuelve lo enviado hasta ahí junto con un error ErrDeliveryFailure; el mensaje
// fallido y los posteriores quedan en la cola. limit <= 0 usa el límite configurado.
func (d *Dispatcher) Flush(ctx context.Context, limit int) (int, error) {
	release, err := d.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()
	return d.flush(ctx, limit)
}

// acquire toma el mutex y luego el lock entre procesos.
func (d *Dispatcher) acquire(ctx context.Context) (func(), error) {
	d.mu.Lock()
	if d.locker == nil {
		return d.mu.Unlock, nil
	}
	unlock, err := d.locker.Lock(ctx)
	if err != nil {
		d.mu.Unlock()
		return nil, fmt.Errorf("lock outbox: %w", err)
	}
	return func() {
		unlock()
		d.mu.Unlock()
	}, nil
}

func (d *Dispatcher) flush(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = d.limit
	}
	msgs, err := d.repo.ListPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list outbox: %w", err)
	}

	sent := 0
	for _, m := range msgs {
		kind := messageType(m.Payload)
		if err := d.sink.Deliver(ctx, m.Payload); err != nil {
			d.failed(kind)
			if d.log != nil {
				d.log.Warn().Err(err).Int64("outbox_id", m.ID).Int("sent", sent).Msg("entrega al sink fallida, se reintenta en el próximo flush")
			}
			d.reportPending(ctx)
			return sent, domain.Wrap(domain.KindDeliveryFailure, err, "mensaje %d no entregado (%d enviados)", m.ID, sent)
		}
		if err := d.repo.Delete(ctx, m.ID); err != nil {
			return sent, fmt.Errorf("delete outbox %d: %w", m.ID, err)
		}
		d.delivered(kind)
		sent++
	}
	d.reportPending(ctx)
	return sent, nil
}

// Pending cantidad de mensajes en cola.
func (d *Dispatcher) Pending(ctx context.Context) (int, error) {
	return d.repo.Count(ctx)
}

// List devuelve hasta limit mensajes en cola en orden de entrega.
func (d *Dispatcher) List(ctx context.Context, limit int) ([]entity.OutboxMessage, error) {
	if limit <= 0 {
		limit = d.limit
	}
	return d.repo.ListPending(ctx, limit)
}

// SnapshotResult resumen del envío masivo.
type SnapshotResult struct {
	SnapshotID   string
	SentPending  int
	Rows         int
	BlocksSent   int
	BlocksTotal  int
	StillPending int
}

// SendSnapshot vacía primero la cola y luego envía el stock neto de todos los productos en bloques.
// Los bloques no pasan por la cola: un bloque fallido corta el envío y el receptor ve un snapshot
// incompleto (sin bloque last).
func (d *Dispatcher) SendSnapshot(ctx context.Context, src SnapshotSource) (SnapshotResult, error) {
	release, err := d.acquire(ctx)
	if err != nil {
		return SnapshotResult{}, err
	}
	defer release()

	var res SnapshotResult
	sent, err := d.flush(ctx, 0)
	res.SentPending = sent
	if err != nil {
		return res, err
	}

	rows, err := src.SnapshotRows(ctx)
	if err != nil {
		return res, err
	}
	res.SnapshotID = uuid.New().String()
	blocks := SnapshotBlocks(res.SnapshotID, rows, d.chunkSize, d.now())
	res.BlocksTotal = len(blocks)
	for _, b := range blocks {
		payload, err := json.Marshal(b)
		if err != nil {
			return res, fmt.Errorf("marshal snapshot block: %w", err)
		}
		if err := d.sink.Deliver(ctx, payload); err != nil {
			d.failed(TypeBulkSnapshot)
			return res, domain.Wrap(domain.KindDeliveryFailure, err, "snapshot %s: bloque %d/%d no entregado", res.SnapshotID, b.Block, b.Blocks)
		}
		d.delivered(TypeBulkSnapshot)
		res.BlocksSent++
		res.Rows += len(b.Rows)
	}

	res.StillPending, err = d.repo.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count outbox: %w", err)
	}
	return res, nil
}

// messageType campo type del envelope; "unknown" si el payload no lo trae.
func messageType(payload json.RawMessage) string {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &env); err != nil || env.Type == "" {
		return "unknown"
	}
	return env.Type
}

func (d *Dispatcher) delivered(kind string) {
	if d.metrics != nil {
		d.metrics.Delivered(kind)
	}
}

func (d *Dispatcher) failed(kind string) {
	if d.metrics != nil {
		d.metrics.Failed(kind)
	}
}

func (d *Dispatcher) reportPending(ctx context.Context) {
	if d.metrics == nil {
		return
	}
	n, err := d.repo.Count(ctx)
	if err == nil {
		d.metrics.Pending(n)
	}
}

// IsDeliveryFailure indica si err es un fallo de entrega al sink.
func IsDeliveryFailure(err error) bool {
	return errors.Is(err, domain.ErrDeliveryFailure)
}
