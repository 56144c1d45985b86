package repository

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// OutboxRepository cola durable de notificaciones hacia el sink externo (FIFO por id).
type OutboxRepository interface {
	Enqueue(ctx context.Context, payload json.RawMessage) (int64, error)
	ListPending(ctx context.Context, limit int) ([]entity.OutboxMessage, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
