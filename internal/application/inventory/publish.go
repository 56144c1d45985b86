package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

// SyncReport resultado del intento de entrega posterior al commit. Warning no vacío indica que
// el sink quedó desactualizado; el ledger local ya está confirmado.
type SyncReport struct {
	Sent    int    `json:"sent"`
	Pending int    `json:"pending"`
	Warning string `json:"warning,omitempty"`
}

// publishChange actualiza la proyección y encola el cambio dentro de la misma transacción.
func publishChange(ctx context.Context, l repository.Ledger, net entity.NetStock, at time.Time) error {
	if err := l.Projection.Upsert(ctx, net); err != nil {
		return fmt.Errorf("upsert projection: %w", err)
	}
	payload, err := outbox.StockChanged(net, at)
	if err != nil {
		return err
	}
	if _, err := l.Outbox.Enqueue(ctx, payload); err != nil {
		return fmt.Errorf("enqueue outbox: %w", err)
	}
	return nil
}

// syncAfterCommit hace un único intento de entrega. Nunca devuelve error: el fallo se informa.
func syncAfterCommit(ctx context.Context, f Flusher) SyncReport {
	var rep SyncReport
	if f == nil {
		return rep
	}
	sent, err := f.Flush(ctx, 0)
	rep.Sent = sent
	if err != nil {
		rep.Warning = err.Error()
	}
	if n, err := f.Pending(ctx); err == nil {
		rep.Pending = n
	}
	return rep
}
