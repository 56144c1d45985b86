package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
)

var _ outbox.Locker = (*OutboxLock)(nil)

const (
	defaultLeaseTTL  = 15 * time.Minute
	defaultLeasePoll = 200 * time.Millisecond
)

// OutboxLock lease en la tabla outbox_lease compartido por los procesos que abren el mismo archivo.
// Un lease vencido se puede tomar aunque su dueño no lo haya liberado.
type OutboxLock struct {
	db    *sqlx.DB
	owner string
	ttl   time.Duration
	poll  time.Duration
	now   func() time.Time
}

// LeaseOption configura el OutboxLock.
type LeaseOption func(*OutboxLock)

// WithLeaseTTL duración máxima del lease sin liberar.
func WithLeaseTTL(d time.Duration) LeaseOption { return func(l *OutboxLock) { l.ttl = d } }

// WithLeasePoll intervalo entre intentos mientras otro proceso tiene el lease.
func WithLeasePoll(d time.Duration) LeaseOption { return func(l *OutboxLock) { l.poll = d } }

// NewOutboxLock construye el lock con un dueño único por instancia.
func NewOutboxLock(db *sqlx.DB, opts ...LeaseOption) *OutboxLock {
	l := &OutboxLock{
		db:    db,
		owner: uuid.New().String(),
		ttl:   defaultLeaseTTL,
		poll:  defaultLeasePoll,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock espera hasta tomar el lease o hasta que ctx termine.
func (l *OutboxLock) Lock(ctx context.Context) (func(), error) {
	for {
		ok, err := l.tryAcquire(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return l.unlock, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

func (l *OutboxLock) tryAcquire(ctx context.Context) (bool, error) {
	now := l.now()
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO outbox_lease (id, owner, expires_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner = excluded.owner, expires_at = excluded.expires_at
		WHERE outbox_lease.expires_at < ?`,
		l.owner, now.Add(l.ttl).UnixNano(), now.UnixNano())
	if err != nil {
		if isBusy(err) {
			return false, nil
		}
		return false, fmt.Errorf("outbox lease: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("outbox lease: %w", err)
	}
	return n == 1, nil
}

// unlock borra el lease solo si sigue siendo propio. Si no lo logra, el lease vence por ttl.
func (l *OutboxLock) unlock() {
	for i := 0; i < 5; i++ {
		_, err := l.db.ExecContext(context.Background(), `DELETE FROM outbox_lease WHERE id = 1 AND owner = ?`, l.owner)
		if err == nil || !isBusy(err) {
			return
		}
		time.Sleep(l.poll)
	}
}

func isBusy(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return false
}
