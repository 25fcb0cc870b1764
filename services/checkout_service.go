package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/learnhub/learnhub-api/model"
	"github.com/learnhub/learnhub-api/services/razorpay"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway abstracts the payment provider consulted at checkout and refund
// time. Implemented by razorpay.Client; tests plug in a fake.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	Refund(ctx context.Context, paymentID string, amount int64) (string, error)
}

// CheckoutConfig carries the settlement business constants.
type CheckoutConfig struct {
	Currency          string
	EscrowHoldDays    int
	RazorpaySecret    string
	BankPayoutPercent int64 // payout rate for bank refunds, e.g. 80
}

// CheckoutService builds orders from a set of courses, blending coupon
// discounts and wallet funds, and confirms them once the gateway callback
// arrives.
type CheckoutService struct {
	db      *gorm.DB
	coupons *CouponService
	wallets *WalletService
	gateway Gateway
	cfg     CheckoutConfig
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(db *gorm.DB, coupons *CouponService, wallets *WalletService, gateway Gateway, cfg CheckoutConfig) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.EscrowHoldDays <= 0 {
		cfg.EscrowHoldDays = 7
	}
	if cfg.BankPayoutPercent <= 0 {
		cfg.BankPayoutPercent = 80
	}
	return &CheckoutService{
		db:      db,
		coupons: coupons,
		wallets: wallets,
		gateway: gateway,
		cfg:     cfg,
	}
}

// OrderSummary is the result of order creation. PaidInFull marks the
// wallet-only path where no gateway collection is needed.
type OrderSummary struct {
	OrderID          uint   `json:"order_id"`
	RazorpayOrderID  string `json:"razorpay_order_id"`
	Currency         string `json:"currency"`
	OriginalAmount   int64  `json:"original_amount"`
	DiscountAmount   int64  `json:"discount_amount"`
	WalletAmountUsed int64  `json:"wallet_amount_used"`
	Amount           int64  `json:"amount"`
	CouponCode       string `json:"coupon_code,omitempty"`
	PaidInFull       bool   `json:"paid_in_full"`
}

// CreateOrder computes the price breakdown for the requested courses and
// either settles the order entirely from the wallet or creates a gateway
// order for the remaining payable amount.
func (s *CheckoutService) CreateOrder(ctx context.Context, userID uint, courseIDs []uint, couponCode string, useWallet bool) (*OrderSummary, error) {
	courseIDs = dedupe(courseIDs)
	if len(courseIDs) == 0 {
		return nil, newError(KindValidation, "NO_COURSES", "At least one course is required")
	}

	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if user.Blocked {
		return nil, ErrAccountBlocked
	}

	// All courses in one query; a count mismatch means at least one is
	// missing, unpublished or blocked.
	var courses []model.Course
	err := s.db.Where("id IN ? AND published = ? AND blocked = ?", courseIDs, true, false).
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	if len(courses) != len(courseIDs) {
		return nil, ErrCourseUnavailable
	}

	var enrolled int64
	err = s.db.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id IN ? AND status IN ?", userID, courseIDs,
			[]string{model.EnrollmentStatusActive, model.EnrollmentStatusCompleted}).
		Count(&enrolled).Error
	if err != nil {
		return nil, err
	}
	if enrolled > 0 {
		return nil, ErrAlreadyEnrolled
	}

	var originalAmount int64
	for _, course := range courses {
		originalAmount += course.Price
	}

	var discountAmount int64
	var couponID *uint
	var appliedCode string
	if couponCode != "" {
		validation, err := s.coupons.Validate(couponCode, userID, originalAmount)
		if err != nil {
			return nil, err
		}
		discountAmount = validation.DiscountAmount
		couponID = &validation.CouponID
		appliedCode = validation.Code
	}

	var walletAmountUsed int64
	if useWallet {
		balance, err := s.wallets.Balance(userID)
		if err != nil {
			return nil, err
		}
		remaining := originalAmount - discountAmount
		walletAmountUsed = balance
		if walletAmountUsed > remaining {
			walletAmountUsed = remaining
		}
	}

	payableAmount := originalAmount - discountAmount - walletAmountUsed
	if payableAmount < 0 {
		payableAmount = 0
	}

	order := model.Order{
		UserID:           userID,
		Currency:         s.cfg.Currency,
		OriginalAmount:   originalAmount,
		DiscountAmount:   discountAmount,
		WalletAmountUsed: walletAmountUsed,
		Amount:           payableAmount,
		CouponID:         couponID,
		CouponCode:       appliedCode,
		Status:           model.OrderStatusCreated,
	}

	if payableAmount <= 0 {
		return s.createWalletOnlyOrder(order, courses)
	}

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, payableAmount, s.cfg.Currency, uuid.NewString())
	if err != nil {
		return nil, GatewayFailed(err)
	}
	order.RazorpayOrderID = gatewayOrderID

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	if err := s.createPayments(tx, &order, courses, model.PaymentStatusCreated, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.summary(&order, false), nil
}

// createWalletOnlyOrder settles an order with no payable remainder: debit
// the wallet, mark everything PAID immediately and enroll the user.
func (s *CheckoutService) createWalletOnlyOrder(order model.Order, courses []model.Course) (*OrderSummary, error) {
	order.RazorpayOrderID = "order_wallet_" + uuid.NewString()
	order.Status = model.OrderStatusPaid

	releaseDate := time.Now().AddDate(0, 0, s.cfg.EscrowHoldDays)

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	if order.WalletAmountUsed > 0 {
		reason := fmt.Sprintf("Course purchase (%d courses)", len(courses))
		err := s.wallets.DebitTx(tx, order.UserID, order.WalletAmountUsed, reason,
			TransactionLink{OrderRef: order.RazorpayOrderID})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	if err := s.createPayments(tx, &order, courses, model.PaymentStatusPaid, &releaseDate); err != nil {
		return nil, err
	}

	if order.CouponID != nil {
		if err := s.coupons.IncrementUsage(tx, *order.CouponID, order.UserID); err != nil {
			return nil, err
		}
	}

	courseIDs := make([]uint, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}
	if err := enrollCourses(tx, order.UserID, courseIDs); err != nil {
		return nil, err
	}
	if err := removeFromCartAndWishlist(tx, order.UserID, courseIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.summary(&order, true), nil
}

func (s *CheckoutService) createPayments(tx *gorm.DB, order *model.Order, courses []model.Course, status string, releaseDate *time.Time) error {
	for _, course := range courses {
		// Each payment keeps the course's full original price; pro-rating
		// against the order discount happens only at refund time.
		payment := model.Payment{
			UserID:          order.UserID,
			CourseID:        course.ID,
			RazorpayOrderID: order.RazorpayOrderID,
			Amount:          course.Price,
			Currency:        order.Currency,
			Status:          status,
			ReleaseStatus:   model.ReleaseStatusHeld,
			ReleaseDate:     releaseDate,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *CheckoutService) summary(order *model.Order, paidInFull bool) *OrderSummary {
	return &OrderSummary{
		OrderID:          order.ID,
		RazorpayOrderID:  order.RazorpayOrderID,
		Currency:         order.Currency,
		OriginalAmount:   order.OriginalAmount,
		DiscountAmount:   order.DiscountAmount,
		WalletAmountUsed: order.WalletAmountUsed,
		Amount:           order.Amount,
		CouponCode:       order.CouponCode,
		PaidInFull:       paidInFull,
	}
}

// VerifyAndConfirm validates the gateway callback signature and promotes the
// order and its payments from CREATED to PAID. The conditional CREATED->PAID
// update is the idempotency gate: a replayed callback finds no row to update
// and returns without re-debiting the wallet, re-incrementing coupon usage
// or re-enrolling.
func (s *CheckoutService) VerifyAndConfirm(ctx context.Context, orderRef, paymentRef, signature string) (*model.Order, error) {
	if !razorpay.VerifyPaymentSignature(orderRef, paymentRef, signature, s.cfg.RazorpaySecret) {
		return nil, ErrInvalidSignature
	}

	var order model.Order
	err := s.db.Where("razorpay_order_id = ?", orderRef).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !model.CanTransitionOrder(order.Status, model.OrderStatusPaid) {
		// Already confirmed; replaying the callback is a no-op.
		return &order, nil
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	res := tx.Model(&model.Order{}).
		Where("razorpay_order_id = ? AND status = ?", orderRef, model.OrderStatusCreated).
		Update("status", model.OrderStatusPaid)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race to a concurrent callback; treat it as a replay.
		return &order, nil
	}

	// Collect the wallet contribution reserved at order time. The balance is
	// not locked between creation and confirmation, so this can fail; the
	// rollback then leaves the order CREATED and the callback retryable.
	if order.WalletAmountUsed > 0 {
		err = s.wallets.DebitTx(tx, order.UserID, order.WalletAmountUsed,
			"Course purchase", TransactionLink{OrderRef: orderRef})
		if err != nil {
			return nil, err
		}
	}

	releaseDate := time.Now().AddDate(0, 0, s.cfg.EscrowHoldDays)
	err = tx.Model(&model.Payment{}).
		Where("razorpay_order_id = ? AND status = ?", orderRef, model.PaymentStatusCreated).
		Updates(map[string]interface{}{
			"status":              model.PaymentStatusPaid,
			"razorpay_payment_id": paymentRef,
			"release_status":      model.ReleaseStatusHeld,
			"release_date":        releaseDate,
		}).Error
	if err != nil {
		return nil, err
	}

	if order.CouponID != nil {
		if err := s.coupons.IncrementUsage(tx, *order.CouponID, order.UserID); err != nil {
			return nil, err
		}
	}

	var courseIDs []uint
	err = tx.Model(&model.Payment{}).
		Where("razorpay_order_id = ?", orderRef).
		Pluck("course_id", &courseIDs).Error
	if err != nil {
		return nil, err
	}

	if err := enrollCourses(tx, order.UserID, courseIDs); err != nil {
		return nil, err
	}
	if err := removeFromCartAndWishlist(tx, order.UserID, courseIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	order.Status = model.OrderStatusPaid
	return &order, nil
}

// enrollCourses creates one enrollment per course. A conflict on the unique
// (user, course) index means a refunded enrollment is being bought again, so
// the existing row is reactivated instead of left behind.
func enrollCourses(tx *gorm.DB, userID uint, courseIDs []uint) error {
	now := time.Now()
	for _, courseID := range courseIDs {
		enrollment := model.Enrollment{
			UserID:     userID,
			CourseID:   courseID,
			Status:     model.EnrollmentStatusActive,
			EnrolledAt: now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":      model.EnrollmentStatusActive,
				"enrolled_at": now,
			}),
		}).Create(&enrollment).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// removeFromCartAndWishlist drops the purchased courses from the user's cart
// and wishlist. Idempotent; missing rows are fine.
func removeFromCartAndWishlist(tx *gorm.DB, userID uint, courseIDs []uint) error {
	err := tx.Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Delete(&model.CartItem{}).Error
	if err != nil {
		return err
	}
	return tx.Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Delete(&model.WishlistItem{}).Error
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
