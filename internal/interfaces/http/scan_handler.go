package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-qr/internal/application/dto"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
)

// ScanHandler interpreta QR sin tocar el ledger.
type ScanHandler struct{}

// NewScanHandler construye el handler.
func NewScanHandler() *ScanHandler { return &ScanHandler{} }

// Parse godoc
// @Summary      Interpretar un QR
// @Tags         scans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ParseScanRequest  true  "payload NS=...|PRD=...|DSC=...|LOT=...|FEC=...|VTO=..."
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/scans/parse [post]
func (h *ScanHandler) Parse(c *fiber.Ctx) error {
	var in dto.ParseScanRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	rec, err := scan.Parse(in.Payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toScanResponse(rec))
}
