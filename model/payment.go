package model

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentStatusCreated  = "CREATED"
	PaymentStatusPaid     = "PAID"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

// Escrow release statuses. Orthogonal to the payment status; meaningful only
// once a payment is PAID.
const (
	ReleaseStatusHeld     = "HELD"
	ReleaseStatusReleased = "RELEASED"
)

// Refund methods
const (
	RefundMethodWallet = "wallet"
	RefundMethodBank   = "bank"
)

// paymentTransitions is the validated transition table for payment statuses.
var paymentTransitions = map[string][]string{
	PaymentStatusCreated: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

// CanTransitionPayment reports whether a payment may move from one status to
// another. A payment reaches REFUNDED at most once.
func CanTransitionPayment(from, to string) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Payment represents one course line item within an order. Several payments
// share a single Razorpay order reference; each carries the full original
// price of its course (pro-rating happens at refund time, not here).
type Payment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	CourseID  uint           `gorm:"not null;index;uniqueIndex:idx_payments_order_course" json:"course_id"`

	RazorpayOrderID   string `gorm:"type:varchar(100);not null;index;uniqueIndex:idx_payments_order_course" json:"razorpay_order_id"`
	RazorpayPaymentID string `gorm:"type:varchar(100)" json:"razorpay_payment_id"`

	Amount   int64  `gorm:"not null" json:"amount"` // paise
	Currency string `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status   string `gorm:"type:varchar(20);default:'CREATED';index" json:"status"`

	// Escrow settlement
	ReleaseStatus string     `gorm:"type:varchar(20);default:'HELD';index" json:"release_status"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`

	// Refund metadata
	RefundAmount     int64      `gorm:"default:0" json:"refund_amount"`
	RefundMethod     string     `gorm:"type:varchar(20)" json:"refund_method,omitempty"`
	RefundReason     string     `gorm:"type:text" json:"refund_reason,omitempty"`
	RazorpayRefundID string     `gorm:"type:varchar(100)" json:"razorpay_refund_id,omitempty"`
	RefundedAt       *time.Time `json:"refunded_at,omitempty"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
