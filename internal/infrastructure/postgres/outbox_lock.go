package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/domain"
)

var _ outbox.Locker = (*OutboxLock)(nil)

// outboxLockKey clave del advisory lock que comparten api, relay y station.
const outboxLockKey = "stock.outbox"

// OutboxLock serializa los flushes de todos los procesos con un advisory lock de sesión.
type OutboxLock struct {
	pool *pgxpool.Pool
}

// NewOutboxLock construye el lock sobre el pool.
func NewOutboxLock(pool *pgxpool.Pool) *OutboxLock {
	return &OutboxLock{pool: pool}
}

// Lock reserva una conexión y espera el advisory lock. unlock libera el lock y devuelve la conexión.
func (l *OutboxLock) Lock(ctx context.Context) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.KindConnectionFailure, err, "adquirir conexión")
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, outboxLockKey); err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock %s: %w", outboxLockKey, err)
	}
	return func() {
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, outboxLockKey); err != nil {
			// la conexión no vuelve al pool con el lock tomado
			_ = conn.Conn().Close(context.Background())
		}
		conn.Release()
	}, nil
}
