package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo cola sheets_outbox (payload JSONB) sobre PostgreSQL.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Enqueue agrega el payload al final de la cola.
func (r *OutboxRepo) Enqueue(ctx context.Context, payload json.RawMessage) (int64, error) {
	var id int64
	if err := r.q.QueryRow(ctx, `INSERT INTO sheets_outbox (payload) VALUES ($1) RETURNING id`, string(payload)).Scan(&id); err != nil {
		return 0, fmt.Errorf("enqueue outbox: %w", err)
	}
	return id, nil
}

// ListPending mensajes por id ascendente.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]entity.OutboxMessage, error) {
	rows, err := r.q.Query(ctx, `SELECT id, payload, created_at FROM sheets_outbox ORDER BY id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	defer rows.Close()
	var list []entity.OutboxMessage
	for rows.Next() {
		var m entity.OutboxMessage
		var payload []byte
		if err := rows.Scan(&m.ID, &payload, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		m.Payload = json.RawMessage(payload)
		list = append(list, m)
	}
	return list, rows.Err()
}

// Delete elimina un mensaje entregado.
func (r *OutboxRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sheets_outbox WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete outbox: %w", err)
	}
	return nil
}

// Count mensajes en cola.
func (r *OutboxRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sheets_outbox`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outbox: %w", err)
	}
	return n, nil
}
