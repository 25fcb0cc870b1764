package coupon

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/handlers"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/utils/middleware"
	"github.com/learnhub/learnhub-api/utils/response"
)

// CouponHandler handles the student-facing coupon surface
type CouponHandler struct {
	coupons *services.CouponService
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons *services.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Available handles GET /api/v1/coupons/available. Returns coupons the user
// can apply to a cart of the given value.
func (h *CouponHandler) Available(c *fiber.Ctx) error {
	cartAmount, err := strconv.ParseInt(c.Query("cart_amount", "0"), 10, 64)
	if err != nil || cartAmount < 0 {
		return response.BadRequest(c, "cart_amount must be a non-negative integer")
	}

	coupons, err := h.coupons.AvailableForCart(middleware.UserID(c), cartAmount)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, coupons)
}

// Validate handles GET /api/v1/coupons/validate. Lets the checkout UI
// preview a coupon's discount before placing the order.
func (h *CouponHandler) Validate(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return response.BadRequest(c, "code is required")
	}
	cartAmount, err := strconv.ParseInt(c.Query("cart_amount", "0"), 10, 64)
	if err != nil || cartAmount <= 0 {
		return response.BadRequest(c, "cart_amount must be a positive integer")
	}

	result, err := h.coupons.Validate(code, middleware.UserID(c), cartAmount)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, result)
}
