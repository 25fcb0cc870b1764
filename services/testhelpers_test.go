package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/learnhub/learnhub-api/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CartItem{},
		&model.WishlistItem{},
		&model.Order{},
		&model.Payment{},
		&model.Enrollment{},
		&model.Coupon{},
		&model.CouponUsage{},
		&model.Wallet{},
		&model.WalletTransaction{},
	)
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Test User", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, instructorID uint, title string, price int64) *model.Course {
	t.Helper()
	course := &model.Course{
		InstructorID: instructorID,
		Title:        title,
		Price:        price,
		Published:    true,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func createCoupon(t *testing.T, db *gorm.DB, coupon model.Coupon) *model.Coupon {
	t.Helper()
	if coupon.ExpiresAt.IsZero() {
		coupon.ExpiresAt = time.Now().Add(24 * time.Hour)
	}
	require.NoError(t, db.Create(&coupon).Error)
	return &coupon
}

// fakeGateway satisfies Gateway without any network.
type fakeGateway struct {
	orderID   string
	refundID  string
	createErr error
	refundErr error

	createCalls      int
	refundCalls      int
	lastOrderAmount  int64
	lastRefundAmount int64
	lastPaymentID    string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	g.createCalls++
	g.lastOrderAmount = amount
	if g.createErr != nil {
		return "", g.createErr
	}
	if g.orderID == "" {
		return "order_fake123", nil
	}
	return g.orderID, nil
}

func (g *fakeGateway) Refund(ctx context.Context, paymentID string, amount int64) (string, error) {
	g.refundCalls++
	g.lastPaymentID = paymentID
	g.lastRefundAmount = amount
	if g.refundErr != nil {
		return "", g.refundErr
	}
	if g.refundID == "" {
		return "rfnd_fake123", nil
	}
	return g.refundID, nil
}

func testCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		Currency:          "INR",
		EscrowHoldDays:    7,
		RazorpaySecret:    "test_secret",
		BankPayoutPercent: 80,
	}
}

func newCheckoutStack(t *testing.T) (*gorm.DB, *CheckoutService, *RefundService, *fakeGateway) {
	t.Helper()
	db := newTestDB(t)
	gateway := &fakeGateway{}
	coupons := NewCouponService(db)
	wallets := NewWalletService(db)
	checkout := NewCheckoutService(db, coupons, wallets, gateway, testCheckoutConfig())
	refunds := NewRefundService(db, coupons, wallets, gateway, testCheckoutConfig())
	return db, checkout, refunds, gateway
}
