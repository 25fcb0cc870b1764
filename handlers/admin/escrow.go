package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/handlers"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/utils/response"
)

// EscrowAdminHandler exposes a manual trigger for the escrow release job
type EscrowAdminHandler struct {
	escrow *services.EscrowService
}

// NewEscrowAdminHandler creates a new admin escrow handler
func NewEscrowAdminHandler(escrow *services.EscrowService) *EscrowAdminHandler {
	return &EscrowAdminHandler{escrow: escrow}
}

// RunRelease handles POST /api/v1/admin/escrow/release. Same conditional bulk
// update the daily job performs, so running it early is always safe.
func (h *EscrowAdminHandler) RunRelease(c *fiber.Ctx) error {
	released, err := h.escrow.ReleaseDuePayments(time.Now())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Escrow release executed", fiber.Map{"released": released})
}
