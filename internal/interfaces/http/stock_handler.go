package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-qr/internal/application/dto"
	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/infrastructure/export"
)

// StockHandler consultas de stock neto y reserva de series.
type StockHandler struct {
	recon   *inventory.ReconciliationUseCase
	reserve *inventory.ReserveSerialsUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(recon *inventory.ReconciliationUseCase, reserve *inventory.ReserveSerialsUseCase) *StockHandler {
	return &StockHandler{recon: recon, reserve: reserve}
}

// GetByProduct godoc
// @Summary      Stock neto de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   int     true   "ID de producto"
// @Param        lot         query  string  false  "Lote. Vacío = todos los lotes."
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id} [get]
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("product_id")
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id inválido"})
	}
	net, err := h.recon.ComputeNet(c.Context(), int64(productID), c.Query("lot"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(net))
}

// List godoc
// @Summary      Stock neto por producto y lote
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página (máx 500)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	page.DefaultPage()

	nets, err := h.recon.ListNet(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	from, to := page.Window(len(nets))
	items := make([]dto.StockResponse, 0, to-from)
	for _, n := range nets[from:to] {
		items = append(items, toStockResponse(n))
	}
	return c.JSON(dto.StockListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(nets)},
	})
}

// ExportXLSX godoc
// @Summary      Descargar stock neto en Excel
// @Tags         stock
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/stock/export.xlsx [get]
func (h *StockHandler) ExportXLSX(c *fiber.Ctx) error {
	nets, err := h.recon.ListNet(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	var buf bytes.Buffer
	if err := export.WriteStockXLSX(&buf, nets); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock.xlsx"`)
	return c.Send(buf.Bytes())
}

// ReserveSerials godoc
// @Summary      Reservar series para imprimir etiquetas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "product_id, lot (opcional), count"
// @Success      201   {object}  inventory.Reservation
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/serials/reserve [post]
func (h *StockHandler) ReserveSerials(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.reserve.Reserve(c.Context(), inventory.ReserveInput{ProductID: in.ProductID, Lot: in.Lot, Count: in.Count})
	observe("reserve", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
