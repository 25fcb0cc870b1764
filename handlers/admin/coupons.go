package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/handlers"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/utils/response"
	"github.com/learnhub/learnhub-api/utils/validation"
)

// CouponAdminHandler handles the admin coupon surface
type CouponAdminHandler struct {
	coupons   *services.CouponService
	validator *validation.Validator
}

// NewCouponAdminHandler creates a new admin coupon handler
func NewCouponAdminHandler(coupons *services.CouponService) *CouponAdminHandler {
	return &CouponAdminHandler{
		coupons:   coupons,
		validator: validation.NewValidator(),
	}
}

// CreateCoupon handles POST /api/v1/admin/coupons
func (h *CouponAdminHandler) CreateCoupon(c *fiber.Ctx) error {
	var req services.CreateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	coupon, err := h.coupons.Create(req)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Created(c, coupon)
}

// ListCoupons handles GET /api/v1/admin/coupons
func (h *CouponAdminHandler) ListCoupons(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	coupons, total, err := h.coupons.List(page, limit)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Paginated(c, coupons, response.CalculatePagination(page, limit, total))
}

// pauseRequest toggles a coupon's paused flag
type pauseRequest struct {
	Paused bool `json:"paused"`
}

// PauseCoupon handles PATCH /api/v1/admin/coupons/:id/pause
func (h *CouponAdminHandler) PauseCoupon(c *fiber.Ctx) error {
	couponID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || couponID == 0 {
		return response.BadRequest(c, "Invalid coupon id")
	}

	var req pauseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.coupons.SetPaused(uint(couponID), req.Paused); err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Coupon updated", nil)
}

// DeleteCoupon handles DELETE /api/v1/admin/coupons/:id
func (h *CouponAdminHandler) DeleteCoupon(c *fiber.Ctx) error {
	couponID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || couponID == 0 {
		return response.BadRequest(c, "Invalid coupon id")
	}

	if err := h.coupons.Delete(uint(couponID)); err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Coupon deleted", nil)
}
