package services

import (
	"testing"
	"time"

	"github.com/learnhub/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponValidatePercentWithCap(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	user := createUser(t, db, "student@test.dev", model.RoleStudent)

	createCoupon(t, db, model.Coupon{
		Code:          "SAVE20",
		DiscountType:  model.DiscountTypePercent,
		DiscountValue: 20,
		MaxDiscount:   15000,
	})

	// 20% of 50000 = 10000, under the cap.
	validation, err := svc.Validate("save20", user.ID, 50000)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), validation.DiscountAmount)

	// 20% of 200000 = 40000, capped at 15000.
	validation, err = svc.Validate("SAVE20", user.ID, 200000)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), validation.DiscountAmount)
}

func TestCouponValidateFlatClampedToCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	user := createUser(t, db, "student@test.dev", model.RoleStudent)

	createCoupon(t, db, model.Coupon{
		Code:          "FLAT500",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 50000,
	})

	validation, err := svc.Validate("FLAT500", user.ID, 30000)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), validation.DiscountAmount)
}

func TestCouponValidateRejections(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	user := createUser(t, db, "student@test.dev", model.RoleStudent)

	_, err := svc.Validate("NOSUCHCODE", user.ID, 10000)
	assert.ErrorIs(t, err, ErrInvalidCoupon)

	createCoupon(t, db, model.Coupon{
		Code:          "PAUSED",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 1000,
		Paused:        true,
	})
	_, err = svc.Validate("PAUSED", user.ID, 10000)
	assert.ErrorIs(t, err, ErrCouponPaused)

	createCoupon(t, db, model.Coupon{
		Code:          "EXPIRED",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 1000,
		ExpiresAt:     time.Now().Add(-time.Hour),
	})
	_, err = svc.Validate("EXPIRED", user.ID, 10000)
	assert.ErrorIs(t, err, ErrCouponExpired)

	createCoupon(t, db, model.Coupon{
		Code:          "BIGCART",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 1000,
		MinAmount:     100000,
	})
	_, err = svc.Validate("BIGCART", user.ID, 99999)
	assert.ErrorIs(t, err, ErrMinimumAmountNotMet)

	createCoupon(t, db, model.Coupon{
		Code:          "EXHAUSTED",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 1000,
		UsageLimit:    5,
		UsedCount:     5,
	})
	_, err = svc.Validate("EXHAUSTED", user.ID, 10000)
	assert.ErrorIs(t, err, ErrUsageLimitReached)
}

func TestCouponValidatePerUserLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	user := createUser(t, db, "student@test.dev", model.RoleStudent)
	other := createUser(t, db, "other@test.dev", model.RoleStudent)

	coupon := createCoupon(t, db, model.Coupon{
		Code:          "ONCE",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 1000,
		PerUserLimit:  1,
	})

	require.NoError(t, db.Create(&model.CouponUsage{
		CouponID: coupon.ID,
		UserID:   user.ID,
		UseCount: 1,
	}).Error)

	_, err := svc.Validate("ONCE", user.ID, 10000)
	assert.ErrorIs(t, err, ErrUsageLimitReached)

	// A different user is unaffected.
	_, err = svc.Validate("ONCE", other.ID, 10000)
	assert.NoError(t, err)
}

func TestCouponIncrementUsageGuardsGlobalLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	user := createUser(t, db, "student@test.dev", model.RoleStudent)

	coupon := createCoupon(t, db, model.Coupon{
		Code:          "LASTSLOT",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 1000,
		UsageLimit:    1,
	})

	require.NoError(t, svc.IncrementUsage(db, coupon.ID, user.ID))

	// The guarded update finds no row once the limit is consumed.
	err := svc.IncrementUsage(db, coupon.ID, user.ID)
	assert.ErrorIs(t, err, ErrUsageLimitReached)

	var reloaded model.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)
}

func TestCouponIncrementUsageUpsertsPerUserRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	user := createUser(t, db, "student@test.dev", model.RoleStudent)

	coupon := createCoupon(t, db, model.Coupon{
		Code:          "MULTI",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 1000,
	})

	require.NoError(t, svc.IncrementUsage(db, coupon.ID, user.ID))
	require.NoError(t, svc.IncrementUsage(db, coupon.ID, user.ID))

	var usage model.CouponUsage
	require.NoError(t, db.Where("coupon_id = ? AND user_id = ?", coupon.ID, user.ID).First(&usage).Error)
	assert.Equal(t, 2, usage.UseCount)

	var count int64
	require.NoError(t, db.Model(&model.CouponUsage{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCouponDecrementUsage(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	user := createUser(t, db, "student@test.dev", model.RoleStudent)

	coupon := createCoupon(t, db, model.Coupon{
		Code:          "REVERSIBLE",
		DiscountType:  model.DiscountTypeFlat,
		DiscountValue: 1000,
	})

	require.NoError(t, svc.IncrementUsage(db, coupon.ID, user.ID))
	require.NoError(t, svc.DecrementUsage(db, coupon.ID, user.ID))

	var reloaded model.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 0, reloaded.UsedCount)

	// The per-user row is gone once it hits zero.
	var count int64
	require.NoError(t, db.Model(&model.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", coupon.ID, user.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// A second decrement is a floor, not an underflow.
	require.NoError(t, svc.DecrementUsage(db, coupon.ID, user.ID))
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 0, reloaded.UsedCount)
}

func TestCouponAvailableForCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)
	user := createUser(t, db, "student@test.dev", model.RoleStudent)

	createCoupon(t, db, model.Coupon{Code: "OK", DiscountType: model.DiscountTypeFlat, DiscountValue: 1000})
	createCoupon(t, db, model.Coupon{Code: "PAUSED", DiscountType: model.DiscountTypeFlat, DiscountValue: 1000, Paused: true})
	createCoupon(t, db, model.Coupon{Code: "TOOBIG", DiscountType: model.DiscountTypeFlat, DiscountValue: 1000, MinAmount: 999999})
	exhausted := createCoupon(t, db, model.Coupon{Code: "USEDUP", DiscountType: model.DiscountTypeFlat, DiscountValue: 1000, PerUserLimit: 1})
	require.NoError(t, db.Create(&model.CouponUsage{CouponID: exhausted.ID, UserID: user.ID, UseCount: 1}).Error)

	coupons, err := svc.AvailableForCart(user.ID, 50000)
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, "OK", coupons[0].Code)
}

func TestCouponCreateNormalizesAndValidates(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	coupon, err := svc.Create(CreateCouponRequest{
		Code:          "  lower10 ",
		DiscountType:  model.DiscountTypePercent,
		DiscountValue: 10,
		ExpiresAt:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "LOWER10", coupon.Code)

	_, err = svc.Create(CreateCouponRequest{
		Code:          "IMPOSSIBLE",
		DiscountType:  model.DiscountTypePercent,
		DiscountValue: 150,
		ExpiresAt:     time.Now().Add(time.Hour),
	})
	require.Error(t, err)
	var derr *DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "INVALID_DISCOUNT", derr.Code)
}

func TestCouponSetPausedAndDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	coupon := createCoupon(t, db, model.Coupon{Code: "TOGGLE", DiscountType: model.DiscountTypeFlat, DiscountValue: 1000})

	require.NoError(t, svc.SetPaused(coupon.ID, true))
	var reloaded model.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.True(t, reloaded.Paused)

	assert.ErrorIs(t, svc.SetPaused(9999, true), ErrInvalidCoupon)

	require.NoError(t, svc.Delete(coupon.ID))
	err := db.First(&reloaded, coupon.ID).Error
	assert.Error(t, err)

	assert.ErrorIs(t, svc.Delete(coupon.ID), ErrInvalidCoupon)
}
