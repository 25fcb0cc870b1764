package services

import (
	"errors"
	"strings"
	"time"

	"github.com/learnhub/learnhub-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponService validates coupon codes and keeps their usage counters. All
// counter mutations are guarded single-statement updates so concurrent
// redemptions of the same coupon cannot race past the limits.
type CouponService struct {
	db *gorm.DB
}

// NewCouponService creates a new coupon service
func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

// CouponValidation is the result of a successful coupon validation.
type CouponValidation struct {
	CouponID       uint   `json:"coupon_id"`
	Code           string `json:"code"`
	DiscountType   string `json:"discount_type"`
	DiscountValue  int64  `json:"discount_value"`
	DiscountAmount int64  `json:"discount_amount"`
	Description    string `json:"description"`
}

// Validate checks a coupon code against the cart value and the coupon's
// expiry, pause state and usage limits, and computes the discount amount.
func (s *CouponService) Validate(code string, userID uint, cartAmount int64) (*CouponValidation, error) {
	var coupon model.Coupon
	err := s.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCoupon
	}
	if err != nil {
		return nil, err
	}

	if coupon.Paused {
		return nil, ErrCouponPaused
	}
	if coupon.Expired(time.Now()) {
		return nil, ErrCouponExpired
	}
	if cartAmount < coupon.MinAmount {
		return nil, ErrMinimumAmountNotMet
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, ErrUsageLimitReached
	}

	if coupon.PerUserLimit > 0 {
		var usage model.CouponUsage
		err := s.db.Where("coupon_id = ? AND user_id = ?", coupon.ID, userID).First(&usage).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if usage.UseCount >= coupon.PerUserLimit {
			return nil, ErrUsageLimitReached
		}
	}

	return &CouponValidation{
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		DiscountType:   coupon.DiscountType,
		DiscountValue:  coupon.DiscountValue,
		DiscountAmount: computeDiscount(&coupon, cartAmount),
		Description:    coupon.Description,
	}, nil
}

// computeDiscount applies the coupon's rule to the cart amount. The result
// is clamped so a discount can never exceed the cart value.
func computeDiscount(coupon *model.Coupon, cartAmount int64) int64 {
	var discount int64
	switch coupon.DiscountType {
	case model.DiscountTypePercent:
		discount = percentOf(cartAmount, coupon.DiscountValue)
		if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
			discount = coupon.MaxDiscount
		}
	case model.DiscountTypeFlat:
		discount = coupon.DiscountValue
	}
	if discount > cartAmount {
		discount = cartAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// IncrementUsage bumps the coupon's global counter and the per-user counter.
// Called exactly once per order-level coupon application, after the payment
// is confirmed. The global bump is conditional on the usage limit so two
// concurrent confirmations cannot both consume the last slot.
func (s *CouponService) IncrementUsage(tx *gorm.DB, couponID, userID uint) error {
	res := tx.Model(&model.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", couponID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUsageLimitReached
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coupon_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"use_count": gorm.Expr("coupon_usages.use_count + 1")}),
	}).Create(&model.CouponUsage{
		CouponID: couponID,
		UserID:   userID,
		UseCount: 1,
	}).Error
}

// DecrementUsage reverses IncrementUsage on refund. Counters are floored at
// zero and the per-user row is removed once it reaches zero.
func (s *CouponService) DecrementUsage(tx *gorm.DB, couponID, userID uint) error {
	err := tx.Model(&model.Coupon{}).
		Where("id = ? AND used_count > 0", couponID).
		Update("used_count", gorm.Expr("used_count - 1")).Error
	if err != nil {
		return err
	}

	err = tx.Model(&model.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ? AND use_count > 0", couponID, userID).
		Update("use_count", gorm.Expr("use_count - 1")).Error
	if err != nil {
		return err
	}

	return tx.Where("coupon_id = ? AND user_id = ? AND use_count <= 0", couponID, userID).
		Delete(&model.CouponUsage{}).Error
}

// AvailableForCart lists coupons the user could apply to a cart of the given
// value right now.
func (s *CouponService) AvailableForCart(userID uint, cartAmount int64) ([]model.Coupon, error) {
	var coupons []model.Coupon
	err := s.db.
		Where("paused = ?", false).
		Where("expires_at > ?", time.Now()).
		Where("min_amount <= ?", cartAmount).
		Where("usage_limit = 0 OR used_count < usage_limit").
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}

	// Drop coupons the user has exhausted.
	available := coupons[:0]
	for _, coupon := range coupons {
		if coupon.PerUserLimit > 0 {
			var usage model.CouponUsage
			err := s.db.Where("coupon_id = ? AND user_id = ?", coupon.ID, userID).First(&usage).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			if usage.UseCount >= coupon.PerUserLimit {
				continue
			}
		}
		available = append(available, coupon)
	}
	return available, nil
}

// CreateCouponRequest is the admin request to create a coupon.
type CreateCouponRequest struct {
	Code          string    `json:"code" validate:"required,min=3,max=50"`
	Description   string    `json:"description" validate:"omitempty,max=500"`
	DiscountType  string    `json:"discount_type" validate:"required,oneof=percent flat"`
	DiscountValue int64     `json:"discount_value" validate:"required,min=1"`
	MinAmount     int64     `json:"min_amount" validate:"omitempty,min=0"`
	MaxDiscount   int64     `json:"max_discount" validate:"omitempty,min=0"`
	UsageLimit    int       `json:"usage_limit" validate:"omitempty,min=0"`
	PerUserLimit  int       `json:"per_user_limit" validate:"omitempty,min=0"`
	ExpiresAt     time.Time `json:"expires_at" validate:"required"`
}

// Create creates a coupon. Codes are normalized to uppercase.
func (s *CouponService) Create(req CreateCouponRequest) (*model.Coupon, error) {
	if req.DiscountType == model.DiscountTypePercent && req.DiscountValue > 100 {
		return nil, newError(KindValidation, "INVALID_DISCOUNT", "Percent discount cannot exceed 100")
	}

	coupon := model.Coupon{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinAmount:     req.MinAmount,
		MaxDiscount:   req.MaxDiscount,
		UsageLimit:    req.UsageLimit,
		PerUserLimit:  req.PerUserLimit,
		ExpiresAt:     req.ExpiresAt,
	}
	if err := s.db.Create(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// List returns coupons newest first, paginated.
func (s *CouponService) List(page, limit int) ([]model.Coupon, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := s.db.Model(&model.Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var coupons []model.Coupon
	err := s.db.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&coupons).Error
	return coupons, total, err
}

// SetPaused pauses or resumes a coupon.
func (s *CouponService) SetPaused(couponID uint, paused bool) error {
	res := s.db.Model(&model.Coupon{}).Where("id = ?", couponID).Update("paused", paused)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidCoupon
	}
	return nil
}

// Delete soft-deletes a coupon. Past redemptions keep their counters.
func (s *CouponService) Delete(couponID uint) error {
	res := s.db.Delete(&model.Coupon{}, couponID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidCoupon
	}
	return nil
}
