package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/inventory"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

// RollbackUseCase deshace las últimas N unidades ingresadas de un producto+lote.
type RollbackUseCase struct {
	tx   TxRunner
	opts options
}

// NewRollbackUseCase construye el caso de uso.
func NewRollbackUseCase(tx TxRunner, opts ...Option) *RollbackUseCase {
	return &RollbackUseCase{tx: tx, opts: buildOptions(opts)}
}

// RollbackInput pedido de ajuste.
type RollbackInput struct {
	ProductID int64
	Lot       string
	UnitType  string
	Quantity  int64
}

// RollbackResult rangos tocados y la nueva última serie (nil si no quedan rangos).
type RollbackResult struct {
	AffectedRangeIDs []int64
	Steps            []inventory.RollbackStep
	NewLastSerial    *int64
	Net              entity.NetStock
	Sync             SyncReport
}

// RollbackLast recorre los rangos del más reciente al más antiguo acortando, eliminando o
// bajando packs. Todo ocurre en una transacción: si algún rango a tocar tiene salidas, nada se
// aplica (ErrRangeAlreadyConsumed).
func (uc *RollbackUseCase) RollbackLast(ctx context.Context, in RollbackInput) (*RollbackResult, error) {
	if !entity.ValidUnitType(in.UnitType) {
		return nil, domain.Errorf(domain.KindInvalidInput, "tipo de unidad inválido: %q (pallet|packs)", in.UnitType)
	}
	if in.Quantity <= 0 {
		return nil, domain.Errorf(domain.KindInvalidInput, "cantidad inválida: %d", in.Quantity)
	}
	if in.ProductID <= 0 {
		return nil, domain.Errorf(domain.KindInvalidInput, "id de producto inválido: %d", in.ProductID)
	}
	// Lote vacío sumaría todos los lotes en el neto y no recorrería ningún rango.
	if strings.TrimSpace(in.Lot) == "" {
		return nil, domain.Errorf(domain.KindInvalidInput, "lote requerido para ajustar el producto %d", in.ProductID)
	}

	res := &RollbackResult{}
	err := uc.tx.Run(ctx, Scope(in.ProductID, in.Lot), func(l repository.Ledger) error {
		ranges, err := l.Ranges.ListDescending(ctx, in.ProductID, in.Lot)
		if err != nil {
			return err
		}
		consumed := func(r entity.InboundRange) (bool, error) {
			n, err := l.Movements.CountInRange(ctx, r.ProductID, r.Lot, r.SerialStart, r.SerialEnd)
			return n > 0, err
		}
		steps, remaining, err := inventory.PlanRollback(ranges, in.UnitType, in.Quantity, consumed)
		if err != nil {
			return err
		}

		// La guarda de rangos consumidos se evalúa antes que la de stock: un rango con salidas
		// se informa como tal aunque el neto tampoco alcance.
		before, err := computeNet(ctx, l, in.ProductID, in.Lot, "")
		if err != nil {
			return err
		}
		if have := before.Of(in.UnitType); have < in.Quantity {
			return domain.Errorf(domain.KindInsufficientStock,
				"stock insuficiente para ajustar: producto %d lote %s tiene %d %s, se pidieron %d",
				in.ProductID, in.Lot, have, in.UnitType, in.Quantity)
		}
		if remaining > 0 {
			return domain.Errorf(domain.KindIncompleteRollback,
				"ajuste incompleto: producto %d lote %s, faltaron %d de %d %s sin rangos disponibles",
				in.ProductID, in.Lot, remaining, in.Quantity, in.UnitType)
		}

		for _, s := range steps {
			if err := applyStep(ctx, l, s); err != nil {
				return err
			}
			res.AffectedRangeIDs = append(res.AffectedRangeIDs, s.Range.ID)
		}
		res.Steps = steps

		last, ok, err := l.Ranges.MaxSerialEnd(ctx, in.ProductID, in.Lot)
		if err != nil {
			return err
		}
		if ok {
			res.NewLastSerial = &last
		}

		net, err := computeNet(ctx, l, in.ProductID, in.Lot, before.Description)
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

func applyStep(ctx context.Context, l repository.Ledger, s inventory.RollbackStep) error {
	switch s.Action {
	case inventory.StepDelete:
		return l.Ranges.Delete(ctx, s.Range.ID)
	case inventory.StepShrink:
		end := s.NewSerialEnd
		return l.Ranges.Mutate(ctx, s.Range.ID, repository.RangeMutation{SerialEnd: &end})
	case inventory.StepReducePacks:
		packs := s.NewTrailingPacks
		return l.Ranges.Mutate(ctx, s.Range.ID, repository.RangeMutation{TrailingPacks: &packs})
	}
	return domain.Errorf(domain.KindInvalidInput, "paso de ajuste desconocido: %s", s.Action)
}
