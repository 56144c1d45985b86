package http

import (
	"strings"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-qr/internal/application/dto"
	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/infrastructure/metrics"
)

var validate = validator.New()

// bindBody parsea el body JSON y valida los tags validate. Si falla ya escribió la respuesta.
func bindBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return checkStruct(c, out)
}

// bindQuery igual que bindBody para parámetros de query.
func bindQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	return checkStruct(c, out)
}

func checkStruct(c *fiber.Ctx, out any) (bool, error) {
	if err := validate.Struct(out); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
			}
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos: " + strings.Join(fields, ", ")})
	}
	return true, nil
}

// statusFor traduce el Kind de dominio a estado HTTP.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidPayload, domain.KindUnrecognizedFormat, domain.KindInvalidInput:
		return fiber.StatusBadRequest
	case domain.KindSerialNotFound, domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindDuplicateMovement, domain.KindRangeAlreadyConsumed, domain.KindInsufficientStock,
		domain.KindIncompleteRollback, domain.KindOverlappingRange:
		return fiber.StatusConflict
	case domain.KindDeliveryFailure:
		return fiber.StatusBadGateway
	case domain.KindConnectionFailure:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// writeError responde con el Kind como código y el mensaje con los identificadores del caso.
func writeError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	if kind == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(statusFor(kind)).JSON(dto.ErrorResponse{Code: string(kind), Message: err.Error()})
}

// observe cuenta la operación en Prometheus.
func observe(op string, err error) {
	switch {
	case err == nil:
		metrics.Operation(op, "ok")
	case domain.KindOf(err) != "":
		metrics.Operation(op, strings.ToLower(string(domain.KindOf(err))))
	default:
		metrics.Operation(op, "error")
	}
}
