package checkout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/handlers"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/utils/middleware"
	"github.com/learnhub/learnhub-api/utils/response"
	"github.com/learnhub/learnhub-api/utils/validation"
)

// CheckoutHandler handles order creation and payment confirmation
type CheckoutHandler struct {
	checkout  *services.CheckoutService
	validator *validation.Validator
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:  checkout,
		validator: validation.NewValidator(),
	}
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	CourseIDs  []uint `json:"course_ids" validate:"required,min=1,dive,min=1"`
	CouponCode string `json:"coupon_code" validate:"omitempty,min=3,max=50"`
	UseWallet  bool   `json:"use_wallet"`
}

// VerifyPaymentRequest represents the gateway callback payload
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// CreateOrder handles POST /api/v1/checkout/orders
func (h *CheckoutHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	summary, err := h.checkout.CreateOrder(c.Context(), middleware.UserID(c), req.CourseIDs, req.CouponCode, req.UseWallet)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	if summary.PaidInFull {
		return response.SuccessWithMessage(c, "Order paid in full from wallet", summary)
	}
	return response.Created(c, summary)
}

// VerifyPayment handles POST /api/v1/checkout/verify
func (h *CheckoutHandler) VerifyPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	order, err := h.checkout.VerifyAndConfirm(c.Context(), req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	return response.SuccessWithMessage(c, "Payment verified", fiber.Map{
		"order_id":          order.ID,
		"razorpay_order_id": order.RazorpayOrderID,
		"status":            order.Status,
	})
}
