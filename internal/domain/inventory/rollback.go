package inventory

import (
	"sort"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// StepAction operación a aplicar sobre un rango durante un ajuste.
type StepAction int

const (
	StepShrink      StepAction = iota + 1 // baja serial_end
	StepDelete                            // elimina el rango completo (descarta sus packs)
	StepReducePacks                       // baja trailing_packs, el rango se conserva aunque quede en 0
)

func (a StepAction) String() string {
	switch a {
	case StepShrink:
		return "shrink"
	case StepDelete:
		return "delete"
	case StepReducePacks:
		return "reduce_packs"
	}
	return "unknown"
}

// RollbackStep mutación planificada sobre un rango.
type RollbackStep struct {
	Range            entity.InboundRange
	Action           StepAction
	Taken            int64
	NewSerialEnd     int64
	NewTrailingPacks int
}

// ConsumedFunc informa si el rango ya tiene salidas dentro de su tramo de series.
type ConsumedFunc func(r entity.InboundRange) (bool, error)

// PlanRollback recorre los rangos del más reciente al más antiguo (serial_end desc) y planifica
// cómo quitar qty unidades del tipo indicado. Cada rango que se tocaría se valida con consumed:
// si tiene salidas, el plan completo se aborta con ErrRangeAlreadyConsumed.
// Devuelve lo que no se pudo cubrir en remaining; el caller decide si es stock insuficiente.
func PlanRollback(ranges []entity.InboundRange, unitType string, qty int64, consumed ConsumedFunc) (steps []RollbackStep, remaining int64, err error) {
	if !entity.ValidUnitType(unitType) {
		return nil, qty, domain.Errorf(domain.KindInvalidInput, "tipo de unidad inválido: %q", unitType)
	}
	if qty <= 0 {
		return nil, qty, domain.Errorf(domain.KindInvalidInput, "cantidad inválida: %d", qty)
	}

	ordered := make([]entity.InboundRange, len(ranges))
	copy(ordered, ranges)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SerialEnd > ordered[j].SerialEnd })

	remaining = qty
	for _, r := range ordered {
		if remaining == 0 {
			break
		}

		var available int64
		if unitType == entity.UnitTypePacks {
			available = int64(r.TrailingPacks)
		} else {
			available = r.Pallets()
		}
		if available <= 0 {
			continue
		}

		used, err := consumed(r)
		if err != nil {
			return nil, qty, err
		}
		if used {
			return nil, qty, domain.Errorf(domain.KindRangeAlreadyConsumed,
				"el rango %d (producto %d, lote %s, series %d-%d) ya tiene salidas registradas; no se ajusta",
				r.ID, r.ProductID, r.Lot, r.SerialStart, r.SerialEnd)
		}

		take := min(remaining, available)
		step := RollbackStep{Range: r, Taken: take, NewSerialEnd: r.SerialEnd, NewTrailingPacks: r.TrailingPacks}
		switch {
		case unitType == entity.UnitTypePacks:
			step.Action = StepReducePacks
			step.NewTrailingPacks = r.TrailingPacks - int(take)
		case take == available:
			step.Action = StepDelete
		default:
			step.Action = StepShrink
			step.NewSerialEnd = r.SerialEnd - take
		}
		steps = append(steps, step)
		remaining -= take
	}
	return steps, remaining, nil
}
