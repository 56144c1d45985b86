package http

import (
	"github.com/jhoicas/stock-qr/internal/application/dto"
	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	invdomain "github.com/jhoicas/stock-qr/internal/domain/inventory"
)

func toScanResponse(r entity.ScanRecord) dto.ScanResponse {
	return dto.ScanResponse{
		Serial:      r.Serial,
		ProductID:   r.ProductID,
		ProductCode: r.ProductCode,
		Description: r.Description,
		Lot:         r.Lot,
		CreatedOn:   r.CreatedOn,
		ExpiresOn:   r.ExpiresOn,
	}
}

func toStockResponse(n entity.NetStock) dto.StockResponse {
	return dto.StockResponse{
		ProductID:   n.ProductID,
		Lot:         n.Lot,
		Description: n.Description,
		Pallets:     n.Pallets,
		Packs:       n.Packs,
	}
}

func toRangeResponse(r entity.InboundRange) dto.RangeResponse {
	return dto.RangeResponse{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Lot:           r.Lot,
		SerialStart:   r.SerialStart,
		SerialEnd:     r.SerialEnd,
		TrailingPacks: r.TrailingPacks,
		Pallets:       r.Pallets(),
		CreatedAt:     r.CreatedAt,
	}
}

func toMovementResponse(m entity.OutboundMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Lot:       m.Lot,
		Serial:    m.Serial,
		UnitType:  m.UnitType,
		PacksQty:  m.PacksQty,
		RangeID:   m.RangeID,
		CreatedAt: m.CreatedAt,
	}
}

func toSyncResponse(s inventory.SyncReport) dto.SyncResponse {
	return dto.SyncResponse{Sent: s.Sent, Pending: s.Pending, Warning: s.Warning}
}

func toStepResponses(steps []invdomain.RollbackStep) []dto.RollbackStepResponse {
	out := make([]dto.RollbackStepResponse, 0, len(steps))
	for _, s := range steps {
		step := dto.RollbackStepResponse{
			RangeID:          s.Range.ID,
			Action:           s.Action.String(),
			Taken:            s.Taken,
			NewTrailingPacks: s.NewTrailingPacks,
		}
		if s.Action == invdomain.StepShrink {
			step.NewSerialEnd = s.NewSerialEnd
		}
		out = append(out, step)
	}
	return out
}
