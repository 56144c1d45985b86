package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// Tipos de mensaje aceptados por la planilla.
const (
	TypeStockChanged = "scan_pp"
	TypeBulkSnapshot = "bulk_snapshot_pp"
)

// TimestampLayout ISO-8601 a segundos.
const TimestampLayout = "2006-01-02T15:04:05"

// StockPayload bloque "stock" del mensaje scan_pp.
type StockPayload struct {
	ProductID   int64  `json:"id_producto"`
	Description string `json:"descripcion"`
	Lot         string `json:"lote"`
	Pallets     int64  `json:"stock_pallets"`
	Packs       int64  `json:"stock_packs"`
}

// SnapshotRow fila del snapshot masivo (stock neto por producto, todos los lotes).
type SnapshotRow struct {
	ProductID   int64  `json:"id_producto"`
	Description string `json:"descripcion"`
	Pallets     int64  `json:"stock_pallets"`
	Packs       int64  `json:"stock_packs"`
}

// Envelope cuerpo enviado al sink. APIKey no se persiste en la cola: lo agrega el sink al entregar.
type Envelope struct {
	APIKey     string        `json:"api_key,omitempty"`
	Type       string        `json:"type"`
	Timestamp  string        `json:"timestamp"`
	Stock      *StockPayload `json:"stock,omitempty"`
	Rows       []SnapshotRow `json:"rows,omitempty"`
	SnapshotID string        `json:"snapshot_id,omitempty"`
	Block      int           `json:"block,omitempty"`
	Blocks     int           `json:"blocks,omitempty"`
	First      bool          `json:"first,omitempty"`
	Last       bool          `json:"last,omitempty"`
}

// StockChanged arma el mensaje de cambio de stock para producto+lote.
func StockChanged(n entity.NetStock, at time.Time) (json.RawMessage, error) {
	env := Envelope{
		Type:      TypeStockChanged,
		Timestamp: at.Format(TimestampLayout),
		Stock: &StockPayload{
			ProductID:   n.ProductID,
			Description: n.Description,
			Lot:         n.Lot,
			Pallets:     n.Pallets,
			Packs:       n.Packs,
		},
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal stock payload: %w", err)
	}
	return b, nil
}

// SnapshotBlocks parte las filas en bloques de a lo sumo size, todos con el mismo snapshotID.
func SnapshotBlocks(snapshotID string, rows []SnapshotRow, size int, at time.Time) []Envelope {
	if size <= 0 {
		size = len(rows)
	}
	if len(rows) == 0 {
		return nil
	}
	blocks := (len(rows) + size - 1) / size
	out := make([]Envelope, 0, blocks)
	for i := 0; i < blocks; i++ {
		end := min((i+1)*size, len(rows))
		out = append(out, Envelope{
			Type:       TypeBulkSnapshot,
			Timestamp:  at.Format(TimestampLayout),
			Rows:       rows[i*size : end],
			SnapshotID: snapshotID,
			Block:      i + 1,
			Blocks:     blocks,
			First:      i == 0,
			Last:       i == blocks-1,
		})
	}
	return out
}
