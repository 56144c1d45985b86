package inventory

import (
	"context"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
)

// RecordOutboundUseCase da de baja una serie escaneada (salida).
type RecordOutboundUseCase struct {
	tx   TxRunner
	opts options
}

// NewRecordOutboundUseCase construye el caso de uso.
func NewRecordOutboundUseCase(tx TxRunner, opts ...Option) *RecordOutboundUseCase {
	return &RecordOutboundUseCase{tx: tx, opts: buildOptions(opts)}
}

// OutboundResult salida registrada y stock neto resultante.
type OutboundResult struct {
	Movement entity.OutboundMovement
	Net      entity.NetStock
	Sync     SyncReport
}

// RecordPayload parsea el QR y registra la salida.
func (uc *RecordOutboundUseCase) RecordPayload(ctx context.Context, raw string) (*OutboundResult, error) {
	rec, err := scan.Parse(raw)
	if err != nil {
		return nil, err
	}
	return uc.Record(ctx, rec)
}

// Record ubica el rango que contiene la serie, rechaza duplicados, clasifica la unidad
// (la última serie de un rango parcial sale como packs), valida stock e inserta la salida.
func (uc *RecordOutboundUseCase) Record(ctx context.Context, rec entity.ScanRecord) (*OutboundResult, error) {
	res := &OutboundResult{}
	err := uc.tx.Run(ctx, Scope(rec.ProductID, rec.Lot), func(l repository.Ledger) error {
		r, err := l.Ranges.FindContaining(ctx, rec.ProductID, rec.Lot, rec.Serial)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.Errorf(domain.KindSerialNotFound,
				"la serie %d del producto %d lote %s no tiene ingreso registrado", rec.Serial, rec.ProductID, rec.Lot)
		}

		dup, err := l.Movements.Exists(ctx, rec.ProductID, rec.Lot, rec.Serial)
		if err != nil {
			return err
		}
		if dup {
			return duplicateErr(rec)
		}

		m := entity.OutboundMovement{
			ProductID:  rec.ProductID,
			Lot:        rec.Lot,
			Serial:     rec.Serial,
			UnitType:   entity.UnitTypePallet,
			RangeID:    r.ID,
			RawPayload: rec.Raw,
		}
		qty := int64(1)
		if r.IsPartialSerial(rec.Serial) {
			m.UnitType = entity.UnitTypePacks
			m.PacksQty = r.TrailingPacks
			qty = int64(r.TrailingPacks)
		}

		before, err := computeNet(ctx, l, rec.ProductID, rec.Lot, rec.Description)
		if err != nil {
			return err
		}
		if have := before.Of(m.UnitType); have < qty {
			return domain.Errorf(domain.KindInsufficientStock,
				"stock insuficiente: producto %d lote %s serie %d requiere %d %s y hay %d",
				rec.ProductID, rec.Lot, rec.Serial, qty, m.UnitType, have)
		}

		if err := l.Movements.Insert(ctx, &m); err != nil {
			if domain.KindOf(err) == domain.KindDuplicateMovement {
				return duplicateErr(rec)
			}
			return err
		}
		res.Movement = m

		net, err := computeNet(ctx, l, rec.ProductID, rec.Lot, before.Description)
		if err != nil {
			return err
		}
		res.Net = net
		return publishChange(ctx, l, net, uc.opts.now())
	})
	if err != nil {
		return nil, err
	}
	res.Sync = syncAfterCommit(ctx, uc.opts.flusher)
	return res, nil
}

func duplicateErr(rec entity.ScanRecord) error {
	return domain.Errorf(domain.KindDuplicateMovement,
		"la serie %d del producto %d lote %s ya fue dada de baja (salida duplicada)", rec.Serial, rec.ProductID, rec.Lot)
}
