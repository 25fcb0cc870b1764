package model

import (
	"time"

	"gorm.io/gorm"
)

// Coupon discount types
const (
	DiscountTypePercent = "percent"
	DiscountTypeFlat    = "flat"
)

// Coupon represents a redeemable discount rule. Codes are stored uppercase
// and matched case-insensitively.
type Coupon struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Code        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description string `gorm:"type:text" json:"description"`

	DiscountType  string `gorm:"type:varchar(20);not null" json:"discount_type"` // percent, flat
	DiscountValue int64  `gorm:"not null" json:"discount_value"`                 // percent points or paise
	MinAmount     int64  `gorm:"default:0" json:"min_amount"`                    // paise
	MaxDiscount   int64  `gorm:"default:0" json:"max_discount"`                  // paise cap for percent coupons, 0 = uncapped

	UsageLimit   int  `gorm:"default:0" json:"usage_limit"`    // 0 = unlimited
	UsedCount    int  `gorm:"default:0" json:"used_count"`
	PerUserLimit int  `gorm:"default:0" json:"per_user_limit"` // 0 = unlimited
	Paused       bool `gorm:"default:false" json:"paused"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// TableName specifies the table name for Coupon
func (Coupon) TableName() string {
	return "coupons"
}

// Expired reports whether the coupon's expiry has passed.
func (c *Coupon) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CouponUsage tracks how many times a user has redeemed a coupon. Created
// lazily on first use, decremented and removed again on refund.
type CouponUsage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CouponID  uint      `gorm:"not null;index;uniqueIndex:idx_coupon_usages_coupon_user" json:"coupon_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_coupon_usages_coupon_user" json:"user_id"`
	UseCount  int       `gorm:"default:0" json:"use_count"`

	// Relationships
	Coupon Coupon `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE" json:"-"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for CouponUsage
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
