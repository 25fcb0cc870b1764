package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/utils/response"
)

// RespondError maps a service error onto the response envelope. Unknown
// errors become a generic 500 without leaking internals.
func RespondError(c *fiber.Ctx, err error) error {
	var derr *services.DomainError
	if !errors.As(err, &derr) {
		return response.InternalServerError(c, "")
	}

	switch derr.Kind {
	case services.KindValidation:
		return response.Error(c, fiber.StatusBadRequest, derr.Message, derr.Code)
	case services.KindNotFound:
		return response.Error(c, fiber.StatusNotFound, derr.Message, derr.Code)
	case services.KindConflict:
		return response.Error(c, fiber.StatusConflict, derr.Message, derr.Code)
	case services.KindForbidden:
		return response.Error(c, fiber.StatusForbidden, derr.Message, derr.Code)
	case services.KindGateway:
		message := derr.Message
		if derr.Err != nil {
			// Keep the provider's description for diagnosability.
			message = message + ": " + derr.Err.Error()
		}
		return response.BadGateway(c, message, derr.Code)
	default:
		return response.InternalServerError(c, "")
	}
}
