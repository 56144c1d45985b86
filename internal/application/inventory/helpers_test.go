package inventory_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
	"github.com/jhoicas/stock-qr/internal/infrastructure/sqlite"
)

var fixedNow = time.Date(2024, 8, 31, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fixture struct {
	db     *sqlx.DB
	tx     *sqlite.TxRunner
	ledger repository.Ledger
}

func newFixture(t *testing.T, products ...entity.Product) *fixture {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{db: db, tx: sqlite.NewTxRunner(db), ledger: sqlite.NewLedger(db)}
	for i := range products {
		require.NoError(t, f.ledger.Products.Upsert(context.Background(), &products[i]))
	}
	return f
}

func (f *fixture) insertRange(t *testing.T, productID int64, lot string, start, end int64, packs int) entity.InboundRange {
	t.Helper()
	r := entity.InboundRange{ProductID: productID, Lot: lot, SerialStart: start, SerialEnd: end, TrailingPacks: packs}
	require.NoError(t, f.ledger.Ranges.Insert(context.Background(), &r))
	return r
}

func rec(productID int64, lot string, serial int64) entity.ScanRecord {
	return entity.ScanRecord{ProductID: productID, Lot: lot, Serial: serial, Description: "desde QR"}
}

// recordingSink guarda los payloads entregados; fail hace fallar todas las entregas.
type recordingSink struct {
	mu        sync.Mutex
	fail      bool
	delivered []json.RawMessage
}

func (s *recordingSink) Deliver(_ context.Context, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink caído")
	}
	s.delivered = append(s.delivered, payload)
	return nil
}
