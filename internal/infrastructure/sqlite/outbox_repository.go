package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo cola sheets_outbox sobre SQLite.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el repositorio.
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

type outboxRow struct {
	ID        int64  `db:"id"`
	Payload   string `db:"payload"`
	CreatedAt dbTime `db:"created_at"`
}

// Enqueue agrega el payload al final de la cola.
func (r *OutboxRepo) Enqueue(ctx context.Context, payload json.RawMessage) (int64, error) {
	res, err := r.q.ExecContext(ctx, `INSERT INTO sheets_outbox (payload, created_at) VALUES (?, ?)`, string(payload), now())
	if err != nil {
		return 0, fmt.Errorf("enqueue outbox: %w", err)
	}
	return res.LastInsertId()
}

// ListPending mensajes por id ascendente.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]entity.OutboxMessage, error) {
	var rows []outboxRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, `SELECT id, payload, created_at FROM sheets_outbox ORDER BY id ASC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	out := make([]entity.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.OutboxMessage{ID: row.ID, Payload: json.RawMessage(row.Payload), CreatedAt: row.CreatedAt.Time})
	}
	return out, nil
}

// Delete elimina un mensaje entregado.
func (r *OutboxRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM sheets_outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete outbox: %w", err)
	}
	return nil
}

// Count mensajes en cola.
func (r *OutboxRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(1) FROM sheets_outbox`); err != nil {
		return 0, fmt.Errorf("count outbox: %w", err)
	}
	return n, nil
}
