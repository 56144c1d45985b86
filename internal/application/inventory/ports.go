package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si scope no es vacío, el runner serializa las transacciones del mismo scope antes de abrirla,
// así la guarda de rangos consumidos se re-evalúa con el estado confirmado más reciente.
type TxRunner interface {
	Run(ctx context.Context, scope string, fn func(l repository.Ledger) error) error
}

// Flusher intenta vaciar la cola de sincronización después del commit.
type Flusher interface {
	Flush(ctx context.Context, limit int) (int, error)
	Pending(ctx context.Context) (int, error)
}

// Scope clave de serialización de escritores por producto+lote.
func Scope(productID int64, lot string) string {
	return fmt.Sprintf("%d|%s", productID, lot)
}

type options struct {
	now     func() time.Time
	flusher Flusher
}

// Option configura los casos de uso del ledger.
type Option func(*options)

// WithClock reemplaza time.Now.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithFlusher habilita el intento de entrega inmediato tras cada commit.
func WithFlusher(f Flusher) Option { return func(o *options) { o.flusher = f } }

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
