// Package sqlite implementa el ledger sobre SQLite embebido (estación sin servidor y tests).
package sqlite

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

// Querier *sqlx.DB o *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
}

// Open abre la base y aplica el esquema. Una sola conexión: SQLite serializa escritores y
// ":memory:" vive mientras esa conexión siga abierta.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, domain.Wrap(domain.KindConnectionFailure, err, "abrir sqlite %s", path)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewLedger arma los repositorios sobre una conexión o transacción.
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

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// dbTime acepta los formatos en que SQLite devuelve CURRENT_TIMESTAMP.
type dbTime struct {
	time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func (t *dbTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = x
		return nil
	case int64:
		t.Time = time.Unix(x, 0).UTC()
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	}
	return fmt.Errorf("sqlite: tipo de fecha no soportado %T", v)
}

func (t *dbTime) parse(s string) error {
	for _, l := range timeLayouts {
		if p, err := time.Parse(l, s); err == nil {
			t.Time = p
			return nil
		}
	}
	return fmt.Errorf("sqlite: fecha inválida %q", s)
}

// Value guarda en UTC con precisión de nanosegundos para que ORDER BY textual respete el orden.
func (t dbTime) Value() (driver.Value, error) {
	return t.UTC().Format("2006-01-02 15:04:05.000000000"), nil
}

func now() dbTime { return dbTime{time.Now().UTC()} }
