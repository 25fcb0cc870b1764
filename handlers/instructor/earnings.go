package instructor

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/handlers"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/utils/middleware"
	"github.com/learnhub/learnhub-api/utils/response"
)

// EarningsHandler handles the instructor earnings read model
type EarningsHandler struct {
	earnings *services.EarningsService
}

// NewEarningsHandler creates a new earnings handler
func NewEarningsHandler(earnings *services.EarningsService) *EarningsHandler {
	return &EarningsHandler{earnings: earnings}
}

// GetEarnings handles GET /api/v1/instructor/earnings
func (h *EarningsHandler) GetEarnings(c *fiber.Ctx) error {
	summary, err := h.earnings.Summary(middleware.UserID(c))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, summary)
}
