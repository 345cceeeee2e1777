package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/cyclecount-api/internal/application/dto"
	"github.com/invorya/cyclecount-api/internal/domain"
)

// GetUserID devuelve la identidad del llamador. Viaja en el header X-User-ID:
// la autenticación es responsabilidad del gateway, acá solo se propaga el id.
func GetUserID(c *fiber.Ctx) string {
	return c.Get("X-User-ID")
}

// mapError traduce errores de dominio a respuestas HTTP estructuradas.
// Nunca hay fallos silenciosos: cada condición tiene código propio.
func mapError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		violations := make([]dto.ViolationDTO, 0, len(verr.Lines))
		for _, l := range verr.Lines {
			violations = append(violations, dto.ViolationDTO{SKUID: l.SKUID, Messages: l.Messages})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: verr.Error(), Violations: violations,
		})
	}

	switch {
	case errors.Is(err, domain.ErrSessionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SESSION_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnsavedMovements):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "UNSAVED_MOVEMENTS", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrMalformedOtp):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MALFORMED_OTP", Message: err.Error()})
	case errors.Is(err, domain.ErrOtpMismatch):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "OTP_MISMATCH", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrDependencyFailure):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "DEPENDENCY_FAILURE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
