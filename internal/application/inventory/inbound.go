package inventory

import (
	"context"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
)

// RegisterInboundUseCase registra un rango INICIO…FIN escaneado como ingreso.
type RegisterInboundUseCase struct {
	tx   TxRunner
	opts options
}

// NewRegisterInboundUseCase construye el caso de uso.
func NewRegisterInboundUseCase(tx TxRunner, opts ...Option) *RegisterInboundUseCase {
	return &RegisterInboundUseCase{tx: tx, opts: buildOptions(opts)}
}

// InboundInput QR de inicio y fin ya parseados. TrailingPacks > 0 marca el último pallet como parcial.
type InboundInput struct {
	Start         entity.ScanRecord
	End           entity.ScanRecord
	TrailingPacks int
}

// InboundResult rango insertado y stock neto resultante.
type InboundResult struct {
	Range entity.InboundRange
	Net   entity.NetStock
	Sync  SyncReport
}

// RegisterPayloads parsea los QR crudos de inicio y fin y registra el rango.
func (uc *RegisterInboundUseCase) RegisterPayloads(ctx context.Context, startRaw, endRaw string, trailingPacks int) (*InboundResult, error) {
	start, err := scan.Parse(startRaw)
	if err != nil {
		return nil, err
	}
	end, err := scan.Parse(endRaw)
	if err != nil {
		return nil, err
	}
	return uc.Register(ctx, InboundInput{Start: start, End: end, TrailingPacks: trailingPacks})
}

// Register valida el par, normaliza el orden (el FIN puede escanearse antes que el INICIO),
// rechaza superposiciones y en una sola transacción inserta el rango, sube la marca de series,
// actualiza la proyección y encola el cambio. Luego intenta entregar la cola.
func (uc *RegisterInboundUseCase) Register(ctx context.Context, in InboundInput) (*InboundResult, error) {
	if !in.Start.SameScope(in.End) {
		return nil, domain.Errorf(domain.KindInvalidInput,
			"INICIO y FIN deben ser del mismo producto y lote (INICIO %d/%s, FIN %d/%s)",
			in.Start.ProductID, in.Start.Lot, in.End.ProductID, in.End.Lot)
	}
	if in.TrailingPacks < 0 {
		return nil, domain.Errorf(domain.KindInvalidInput, "packs inválidos: %d", in.TrailingPacks)
	}

	r := entity.InboundRange{
		ProductID:     in.Start.ProductID,
		Lot:           in.Start.Lot,
		SerialStart:   min(in.Start.Serial, in.End.Serial),
		SerialEnd:     max(in.Start.Serial, in.End.Serial),
		TrailingPacks: in.TrailingPacks,
	}

	res := &InboundResult{}
	err := uc.tx.Run(ctx, Scope(r.ProductID, r.Lot), func(l repository.Ledger) error {
		clash, err := l.Ranges.FindOverlapping(ctx, r.ProductID, r.Lot, r.SerialStart, r.SerialEnd)
		if err != nil {
			return err
		}
		if clash != nil {
			return domain.Errorf(domain.KindOverlappingRange,
				"las series %d-%d del producto %d lote %s se superponen con el rango %d (%d-%d)",
				r.SerialStart, r.SerialEnd, r.ProductID, r.Lot, clash.ID, clash.SerialStart, clash.SerialEnd)
		}
		if err := l.Ranges.Insert(ctx, &r); err != nil {
			return err
		}
		if err := l.Watermarks.Raise(ctx, r.ProductID, r.Lot, r.SerialEnd); err != nil {
			return err
		}
		net, err := computeNet(ctx, l, r.ProductID, r.Lot, in.Start.Description)
		if err != nil {
			return err
		}
		res.Net = net
		return publishChange(ctx, l, net, uc.opts.now())
	})
	if err != nil {
		return nil, err
	}
	res.Range = r
	res.Sync = syncAfterCommit(ctx, uc.opts.flusher)
	return res, nil
}
