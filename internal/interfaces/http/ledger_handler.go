package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-qr/internal/application/dto"
	"github.com/jhoicas/stock-qr/internal/application/inventory"
)

// LedgerHandler ingresos, salidas y ajustes (protegido).
type LedgerHandler struct {
	inbound  *inventory.RegisterInboundUseCase
	outbound *inventory.RecordOutboundUseCase
	rollback *inventory.RollbackUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(in *inventory.RegisterInboundUseCase, out *inventory.RecordOutboundUseCase, rb *inventory.RollbackUseCase) *LedgerHandler {
	return &LedgerHandler{inbound: in, outbound: out, rollback: rb}
}

// RegisterInbound godoc
// @Summary      Registrar ingreso por rango INICIO…FIN
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InboundRequest  true  "QR de inicio y fin; trailing_packs > 0 si el último pallet es parcial"
// @Success      201   {object}  dto.InboundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inbound [post]
func (h *LedgerHandler) RegisterInbound(c *fiber.Ctx) error {
	var in dto.InboundRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.inbound.RegisterPayloads(c.Context(), in.StartPayload, in.EndPayload, in.TrailingPacks)
	observe("inbound", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InboundResponse{
		Range: toRangeResponse(res.Range),
		Stock: toStockResponse(res.Net),
		Sync:  toSyncResponse(res.Sync),
	})
}

// RecordOutbound godoc
// @Summary      Registrar salida de una serie
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OutboundRequest  true  "QR escaneado"
// @Success      201   {object}  dto.OutboundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/outbound [post]
func (h *LedgerHandler) RecordOutbound(c *fiber.Ctx) error {
	var in dto.OutboundRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.outbound.RecordPayload(c.Context(), in.Payload)
	observe("outbound", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OutboundResponse{
		Movement: toMovementResponse(res.Movement),
		Stock:    toStockResponse(res.Net),
		Sync:     toSyncResponse(res.Sync),
	})
}

// Rollback godoc
// @Summary      Deshacer las últimas N unidades ingresadas
// @Description  Todo o nada: si algún rango a tocar ya tiene salidas no se aplica ningún cambio.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RollbackRequest  true  "product_id, lot, unit_type (pallet|packs), quantity"
// @Success      200   {object}  dto.RollbackResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments/rollback [post]
func (h *LedgerHandler) Rollback(c *fiber.Ctx) error {
	var in dto.RollbackRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.rollback.RollbackLast(c.Context(), inventory.RollbackInput{
		ProductID: in.ProductID,
		Lot:       in.Lot,
		UnitType:  in.UnitType,
		Quantity:  in.Quantity,
	})
	observe("rollback", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RollbackResponse{
		AffectedRangeIDs: res.AffectedRangeIDs,
		Steps:            toStepResponses(res.Steps),
		NewLastSerial:    res.NewLastSerial,
		Stock:            toStockResponse(res.Net),
		Sync:             toSyncResponse(res.Sync),
	})
}
