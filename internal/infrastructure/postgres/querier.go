package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

// Querier operaciones comunes a *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewLedger arma los repositorios sobre el pool o una transacción.
func NewLedger(q Querier) repository.Ledger {
	return repository.Ledger{
		Products:   NewProductRepository(q),
		Ranges:     NewInboundRangeRepository(q),
		Movements:  NewOutboundMovementRepository(q),
		Outbox:     NewOutboxRepository(q),
		Projection: NewStockProjectionRepository(q),
		Watermarks: NewSerialWatermarkRepository(q),
	}
}
