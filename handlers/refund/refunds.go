package refund

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/handlers"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/utils/middleware"
	"github.com/learnhub/learnhub-api/utils/response"
	"github.com/learnhub/learnhub-api/utils/validation"
)

// RefundHandler handles refund requests and history
type RefundHandler struct {
	refunds   *services.RefundService
	validator *validation.Validator
}

// NewRefundHandler creates a new refund handler
func NewRefundHandler(refunds *services.RefundService) *RefundHandler {
	return &RefundHandler{
		refunds:   refunds,
		validator: validation.NewValidator(),
	}
}

// FullRefundRequest represents the request body for a full order refund
type FullRefundRequest struct {
	OrderID      string `json:"order_id" validate:"required"`
	Reason       string `json:"reason" validate:"omitempty,max=500"`
	RefundMethod string `json:"refund_method" validate:"required,oneof=wallet bank"`
}

// PartialRefundRequest represents the request body for a single-course refund
type PartialRefundRequest struct {
	OrderID      string `json:"order_id" validate:"required"`
	CourseID     uint   `json:"course_id" validate:"required,min=1"`
	Reason       string `json:"reason" validate:"omitempty,max=500"`
	RefundMethod string `json:"refund_method" validate:"required,oneof=wallet bank"`
}

// FullRefund handles POST /api/v1/refunds/full
func (h *RefundHandler) FullRefund(c *fiber.Ctx) error {
	var req FullRefundRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	reason := validation.SanitizeString(req.Reason)
	result, err := h.refunds.ProcessFullRefund(c.Context(), req.OrderID, middleware.UserID(c), reason, req.RefundMethod)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	return response.SuccessWithMessage(c, "Refund processed", result)
}

// PartialRefund handles POST /api/v1/refunds/partial
func (h *RefundHandler) PartialRefund(c *fiber.Ctx) error {
	var req PartialRefundRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	reason := validation.SanitizeString(req.Reason)
	result, err := h.refunds.ProcessPartialRefund(c.Context(), req.CourseID, middleware.UserID(c), req.OrderID, reason, req.RefundMethod)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	return response.SuccessWithMessage(c, "Refund processed", result)
}

// History handles GET /api/v1/refunds/history
func (h *RefundHandler) History(c *fiber.Ctx) error {
	records, err := h.refunds.RefundHistory(middleware.UserID(c), c.Query("order_id"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, records)
}
