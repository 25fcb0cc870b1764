package services

import "fmt"

// Error kinds map one-to-one onto HTTP status classes in the handlers.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindGateway    ErrorKind = "GATEWAY_ERROR"
)

// DomainError is a typed domain failure with a stable machine-readable code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// Stable domain failures. Handlers match on Code, clients on the kind.
var (
	ErrInvalidCoupon       = newError(KindNotFound, "INVALID_COUPON", "Coupon code is invalid")
	ErrCouponPaused        = newError(KindConflict, "COUPON_PAUSED", "Coupon is currently paused")
	ErrCouponExpired       = newError(KindConflict, "COUPON_EXPIRED", "Coupon has expired")
	ErrMinimumAmountNotMet = newError(KindValidation, "MINIMUM_AMOUNT_NOT_MET", "Cart value does not meet the coupon minimum")
	ErrUsageLimitReached   = newError(KindConflict, "USAGE_LIMIT_REACHED", "Coupon usage limit reached")

	ErrInsufficientBalance = newError(KindConflict, "INSUFFICIENT_BALANCE", "Wallet balance is insufficient")
	ErrInvalidAmount       = newError(KindValidation, "INVALID_AMOUNT", "Amount must be greater than zero")

	ErrCourseUnavailable = newError(KindNotFound, "COURSE_UNAVAILABLE", "One or more courses are unavailable for purchase")
	ErrAlreadyEnrolled   = newError(KindConflict, "ALREADY_ENROLLED", "Course is already enrolled")
	ErrAccountBlocked    = newError(KindForbidden, "ACCOUNT_BLOCKED", "Account is blocked")

	ErrOrderNotFound    = newError(KindNotFound, "ORDER_NOT_FOUND", "Order not found")
	ErrPaymentNotFound  = newError(KindNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
	ErrInvalidSignature = newError(KindGateway, "INVALID_SIGNATURE", "Payment signature verification failed")

	ErrAlreadyRefunded     = newError(KindConflict, "ALREADY_REFUNDED", "Refund has already been processed")
	ErrInvalidRefundMethod = newError(KindValidation, "INVALID_REFUND_METHOD", "Refund method must be wallet or bank")
)

// RefundFailed wraps an upstream gateway failure during refund issuance. The
// provider message is kept for diagnosability; secrets never appear in it.
func RefundFailed(err error) *DomainError {
	return &DomainError{
		Kind:    KindGateway,
		Code:    "REFUND_FAILED",
		Message: "Refund could not be processed by the payment gateway",
		Err:     err,
	}
}

// GatewayFailed wraps an upstream gateway failure during order creation.
func GatewayFailed(err error) *DomainError {
	return &DomainError{
		Kind:    KindGateway,
		Code:    "GATEWAY_ERROR",
		Message: "Payment gateway request failed",
		Err:     err,
	}
}
