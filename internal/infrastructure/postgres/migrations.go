package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate crea el schema y las tablas del ledger si no existen.
func Migrate(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS productos (
			id_producto BIGINT PRIMARY KEY,
			descripcion TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS stock_pp (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			id_producto BIGINT NOT NULL,
			lote TEXT NOT NULL,
			serie_inicio BIGINT NOT NULL,
			serie_fin BIGINT NOT NULL,
			packs_fin INTEGER NOT NULL DEFAULT 0,
			CONSTRAINT ck_stock_pp_rango CHECK (serie_inicio <= serie_fin),
			CONSTRAINT ck_stock_pp_packs CHECK (packs_fin >= 0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_pp_prod_lote ON stock_pp(id_producto, lote, serie_fin DESC)`,
		`CREATE TABLE IF NOT EXISTS salidas_qr (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			id_producto BIGINT NOT NULL,
			lote TEXT NOT NULL,
			nro_serie BIGINT NOT NULL,
			unit_type TEXT NOT NULL CHECK (unit_type IN ('pallet', 'packs')),
			packs_qty INTEGER NOT NULL DEFAULT 0,
			stock_pp_id BIGINT,
			raw_payload TEXT NOT NULL DEFAULT '',
			CONSTRAINT uq_salidas_qr_qr UNIQUE (id_producto, lote, nro_serie)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_salidas_qr_prod_lote ON salidas_qr(id_producto, lote)`,
		`CREATE TABLE IF NOT EXISTS sheets_outbox (
			id BIGSERIAL PRIMARY KEY,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sheets_outbox_created_at ON sheets_outbox(created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS stock_projection (
			id_producto BIGINT NOT NULL,
			lote TEXT NOT NULL,
			descripcion TEXT NOT NULL DEFAULT '',
			stock_pallets BIGINT NOT NULL,
			stock_packs BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (id_producto, lote)
		)`,
		`CREATE TABLE IF NOT EXISTS serial_watermarks (
			id_producto BIGINT NOT NULL,
			lote TEXT NOT NULL,
			ultima_serie BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (id_producto, lote)
		)`,
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if schema != "" {
		ident := pgx.Identifier{schema}.Sanitize()
		if _, err := tx.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+ident); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.Exec(ctx, `SET LOCAL search_path TO `+ident); err != nil {
			return fmt.Errorf("set search_path: %w", err)
		}
	}
	for _, s := range stmts {
		if _, err := tx.Exec(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return tx.Commit(ctx)
}
