package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-qr/internal/application/dto"
	"github.com/jhoicas/stock-qr/internal/application/outbox"
)

// OutboxHandler inspección y entrega manual de la cola de sincronización.
type OutboxHandler struct {
	dispatcher *outbox.Dispatcher
	source     outbox.SnapshotSource
}

// NewOutboxHandler construye el handler.
func NewOutboxHandler(d *outbox.Dispatcher, src outbox.SnapshotSource) *OutboxHandler {
	return &OutboxHandler{dispatcher: d, source: src}
}

// List godoc
// @Summary      Mensajes pendientes de sincronizar
// @Tags         outbox
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de mensajes"
// @Success      200  {object}  dto.OutboxListResponse
// @Router       /api/outbox [get]
func (h *OutboxHandler) List(c *fiber.Ctx) error {
	var q dto.FlushRequest
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	msgs, err := h.dispatcher.List(c.Context(), q.Limit)
	if err != nil {
		return writeError(c, err)
	}
	pending, err := h.dispatcher.Pending(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := dto.OutboxListResponse{Pending: pending, Messages: make([]dto.OutboxMessageResponse, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, dto.OutboxMessageResponse{ID: m.ID, Payload: m.Payload, CreatedAt: m.CreatedAt})
	}
	return c.JSON(out)
}

// Flush godoc
// @Summary      Entregar la cola al sink
// @Description  Se detiene en el primer fallo; el warning indica el mensaje que quedó bloqueando la cola.
// @Tags         outbox
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de mensajes a entregar"
// @Success      200  {object}  dto.SyncResponse
// @Router       /api/outbox/flush [post]
func (h *OutboxHandler) Flush(c *fiber.Ctx) error {
	var q dto.FlushRequest
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	sent, err := h.dispatcher.Flush(c.Context(), q.Limit)
	observe("flush", err)
	res := dto.SyncResponse{Sent: sent}
	if err != nil {
		if !outbox.IsDeliveryFailure(err) {
			return writeError(c, err)
		}
		res.Warning = err.Error()
	}
	if n, err := h.dispatcher.Pending(c.Context()); err == nil {
		res.Pending = n
	}
	return c.JSON(res)
}

// Snapshot godoc
// @Summary      Enviar snapshot masivo de stock
// @Description  Vacía primero la cola y luego envía el stock neto de todo el catálogo en bloques.
// @Tags         outbox
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SnapshotResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/outbox/snapshot [post]
func (h *OutboxHandler) Snapshot(c *fiber.Ctx) error {
	res, err := h.dispatcher.SendSnapshot(c.Context(), h.source)
	observe("snapshot", err)
	out := dto.SnapshotResponse{
		SnapshotID:   res.SnapshotID,
		SentPending:  res.SentPending,
		Rows:         res.Rows,
		BlocksSent:   res.BlocksSent,
		BlocksTotal:  res.BlocksTotal,
		StillPending: res.StillPending,
	}
	if err != nil {
		if !outbox.IsDeliveryFailure(err) {
			return writeError(c, err)
		}
		out.Warning = err.Error()
	}
	return c.JSON(out)
}
