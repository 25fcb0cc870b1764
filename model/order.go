package model

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. The lifecycle is strictly CREATED -> PAID -> REFUNDED.
const (
	OrderStatusCreated  = "CREATED"
	OrderStatusPaid     = "PAID"
	OrderStatusRefunded = "REFUNDED"
)

// orderTransitions is the validated transition table for order statuses.
var orderTransitions = map[string]string{
	OrderStatusCreated: OrderStatusPaid,
	OrderStatusPaid:    OrderStatusRefunded,
}

// CanTransitionOrder reports whether an order may move from one status to
// another. Statuses never regress.
func CanTransitionOrder(from, to string) bool {
	return orderTransitions[from] == to
}

// Order represents one checkout transaction. An order may span multiple
// courses; each course gets its own Payment row under the same gateway
// order reference.
type Order struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`

	RazorpayOrderID string `gorm:"type:varchar(100);uniqueIndex;not null" json:"razorpay_order_id"`
	Currency        string `gorm:"type:varchar(10);default:'INR'" json:"currency"`

	// All amounts are paise. Amount = max(0, OriginalAmount - DiscountAmount - WalletAmountUsed).
	OriginalAmount   int64 `gorm:"not null" json:"original_amount"`
	DiscountAmount   int64 `gorm:"default:0" json:"discount_amount"`
	WalletAmountUsed int64 `gorm:"default:0" json:"wallet_amount_used"`
	Amount           int64 `gorm:"not null" json:"amount"`

	CouponID   *uint  `gorm:"index" json:"coupon_id,omitempty"`
	CouponCode string `gorm:"type:varchar(50)" json:"coupon_code,omitempty"`

	Status string `gorm:"type:varchar(20);default:'CREATED';index" json:"status"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Payments []Payment `gorm:"foreignKey:RazorpayOrderID;references:RazorpayOrderID" json:"payments,omitempty"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}
