package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS productos (
		id_producto INTEGER PRIMARY KEY,
		descripcion TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS stock_pp (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		id_producto INTEGER NOT NULL,
		lote TEXT NOT NULL,
		serie_inicio INTEGER NOT NULL,
		serie_fin INTEGER NOT NULL,
		packs_fin INTEGER NOT NULL DEFAULT 0,
		CHECK (serie_inicio <= serie_fin),
		CHECK (packs_fin >= 0)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_stock_pp_prod_lote ON stock_pp(id_producto, lote, serie_fin);`,
	`CREATE TABLE IF NOT EXISTS salidas_qr (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		id_producto INTEGER NOT NULL,
		lote TEXT NOT NULL,
		nro_serie INTEGER NOT NULL,
		unit_type TEXT NOT NULL CHECK (unit_type IN ('pallet', 'packs')),
		packs_qty INTEGER NOT NULL DEFAULT 0,
		stock_pp_id INTEGER,
		raw_payload TEXT NOT NULL DEFAULT '',
		CONSTRAINT uq_salidas_qr_qr UNIQUE (id_producto, lote, nro_serie)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_salidas_qr_prod_lote ON salidas_qr(id_producto, lote);`,
	`CREATE TABLE IF NOT EXISTS sheets_outbox (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS stock_projection (
		id_producto INTEGER NOT NULL,
		lote TEXT NOT NULL,
		descripcion TEXT NOT NULL DEFAULT '',
		stock_pallets INTEGER NOT NULL,
		stock_packs INTEGER NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (id_producto, lote)
	);`,
	`CREATE TABLE IF NOT EXISTS serial_watermarks (
		id_producto INTEGER NOT NULL,
		lote TEXT NOT NULL,
		ultima_serie INTEGER NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (id_producto, lote)
	);`,
	`CREATE TABLE IF NOT EXISTS outbox_lease (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		owner TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);`,
}

// Migrate crea las tablas si no existen.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}
