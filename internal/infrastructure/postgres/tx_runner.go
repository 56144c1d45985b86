package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL REPEATABLE READ.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run toma el advisory lock de sesión del scope antes del BEGIN (así la foto de la transacción ya
// incluye lo confirmado por el escritor anterior), ejecuta fn con repos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, scope string, fn func(l repository.Ledger) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.Wrap(domain.KindConnectionFailure, err, "adquirir conexión")
	}
	defer conn.Release()

	if scope != "" {
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, scope); err != nil {
			return fmt.Errorf("advisory lock %s: %w", scope, err)
		}
		defer func() {
			if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, scope); err != nil {
				// la conexión no vuelve al pool con el lock tomado
				_ = conn.Conn().Close(context.Background())
			}
		}()
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewLedger(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
