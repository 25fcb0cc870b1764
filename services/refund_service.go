package services

import (
	"context"
	"errors"
	"time"

	"github.com/learnhub/learnhub-api/model"
	"gorm.io/gorm"
)

// RefundService computes and executes full and partial refunds, reversing
// the enrollment, coupon and wallet state the checkout established.
type RefundService struct {
	db      *gorm.DB
	coupons *CouponService
	wallets *WalletService
	gateway Gateway
	cfg     CheckoutConfig
}

// NewRefundService creates a new refund service
func NewRefundService(db *gorm.DB, coupons *CouponService, wallets *WalletService, gateway Gateway, cfg CheckoutConfig) *RefundService {
	if cfg.BankPayoutPercent <= 0 {
		cfg.BankPayoutPercent = 80
	}
	return &RefundService{
		db:      db,
		coupons: coupons,
		wallets: wallets,
		gateway: gateway,
		cfg:     cfg,
	}
}

// RefundResult describes an executed refund.
type RefundResult struct {
	OrderRef      string `json:"order_ref"`
	RefundAmount  int64  `json:"refund_amount"`
	RefundMethod  string `json:"refund_method"`
	RefundID      string `json:"refund_id,omitempty"`
	OrderRefunded bool   `json:"order_refunded"`
}

// payoutRate returns the percentage of the paid amount returned for a refund
// method. Bank refunds carry the platform processing fee.
func (s *RefundService) payoutRate(method string) (int64, error) {
	switch method {
	case model.RefundMethodWallet:
		return 100, nil
	case model.RefundMethodBank:
		return s.cfg.BankPayoutPercent, nil
	default:
		return 0, ErrInvalidRefundMethod
	}
}

// ProcessFullRefund refunds the entire order: every payment is marked
// REFUNDED, enrollments are revoked and coupon usage is reversed once. For
// the bank method the gateway call happens first; nothing is marked if it
// fails.
func (s *RefundService) ProcessFullRefund(ctx context.Context, orderRef string, userID uint, reason, method string) (*RefundResult, error) {
	rate, err := s.payoutRate(method)
	if err != nil {
		return nil, err
	}

	var order model.Order
	err = s.db.Where("razorpay_order_id = ? AND user_id = ?", orderRef, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if order.Status == model.OrderStatusRefunded {
		return nil, ErrAlreadyRefunded
	}
	if !model.CanTransitionOrder(order.Status, model.OrderStatusRefunded) {
		return nil, newError(KindConflict, "ORDER_NOT_PAID", "Order has not been paid yet")
	}

	var payments []model.Payment
	err = s.db.Where("razorpay_order_id = ? AND status <> ?", orderRef, model.PaymentStatusRefunded).
		Order("id").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, ErrAlreadyRefunded
	}

	// The refund rate applies only to the gateway-collected remainder; the
	// wallet contribution goes back to the wallet in full regardless of
	// method.
	gatewayRefund := percentOf(order.Amount, rate)
	walletReturn := order.WalletAmountUsed
	refundAmount := gatewayRefund + walletReturn

	var gatewayRefundID string
	if method == model.RefundMethodBank && gatewayRefund > 0 {
		// One gateway refund covers the whole order; all payments share the
		// captured payment id.
		gatewayRefundID, err = s.gateway.Refund(ctx, payments[0].RazorpayPaymentID, gatewayRefund)
		if err != nil {
			return nil, RefundFailed(err)
		}
	}

	shares := distribute(refundAmount, payments)
	now := time.Now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	walletCredit := walletReturn
	if method == model.RefundMethodWallet {
		walletCredit = refundAmount
	}
	if walletCredit > 0 {
		err = s.wallets.CreditTx(tx, userID, walletCredit, "Order refund", TransactionLink{OrderRef: orderRef})
		if err != nil {
			return nil, err
		}
	}

	courseIDs := make([]uint, 0, len(payments))
	for i := range payments {
		courseIDs = append(courseIDs, payments[i].CourseID)
		err = tx.Model(&model.Payment{}).
			Where("id = ? AND status <> ?", payments[i].ID, model.PaymentStatusRefunded).
			Updates(map[string]interface{}{
				"status":             model.PaymentStatusRefunded,
				"refund_amount":      shares[i],
				"refund_method":      method,
				"refund_reason":      reason,
				"razorpay_refund_id": gatewayRefundID,
				"refunded_at":        now,
			}).Error
		if err != nil {
			return nil, err
		}
	}

	err = tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", order.ID, model.OrderStatusPaid).
		Update("status", model.OrderStatusRefunded).Error
	if err != nil {
		return nil, err
	}

	err = tx.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Update("status", model.EnrollmentStatusRefunded).Error
	if err != nil {
		return nil, err
	}

	if order.CouponID != nil {
		if err := s.coupons.DecrementUsage(tx, *order.CouponID, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &RefundResult{
		OrderRef:      orderRef,
		RefundAmount:  refundAmount,
		RefundMethod:  method,
		RefundID:      gatewayRefundID,
		OrderRefunded: true,
	}, nil
}

// ProcessPartialRefund refunds a single course line item. The base refund is
// pro-rated against the order's paid/original ratio, recomputed at refund
// time rather than stored at order time. When the last remaining payment of
// an order is refunded the order itself flips to REFUNDED and coupon usage
// is reversed exactly once.
func (s *RefundService) ProcessPartialRefund(ctx context.Context, courseID uint, userID uint, orderRef string, reason, method string) (*RefundResult, error) {
	rate, err := s.payoutRate(method)
	if err != nil {
		return nil, err
	}

	var payment model.Payment
	err = s.db.Where("razorpay_order_id = ? AND user_id = ? AND course_id = ?", orderRef, userID, courseID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	if payment.Status == model.PaymentStatusRefunded {
		return nil, ErrAlreadyRefunded
	}
	if !model.CanTransitionPayment(payment.Status, model.PaymentStatusRefunded) {
		return nil, newError(KindConflict, "PAYMENT_NOT_PAID", "Payment has not been captured yet")
	}

	var order model.Order
	err = s.db.Where("razorpay_order_id = ?", orderRef).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	gatewayBase := payment.Amount
	var walletBase int64
	if order.OriginalAmount > 0 && (order.DiscountAmount > 0 || order.WalletAmountUsed > 0) {
		// The payment row keeps the course's original price; the split
		// between gateway and wallet funding is recomputed here from the
		// order totals.
		gatewayBase = roundDiv(payment.Amount*order.Amount, order.OriginalAmount)
		walletBase = roundDiv(payment.Amount*order.WalletAmountUsed, order.OriginalAmount)
		if gatewayBase+walletBase < 1 {
			gatewayBase = 1
		}
	}
	gatewayRefund := percentOf(gatewayBase, rate)
	refundAmount := gatewayRefund + walletBase

	var gatewayRefundID string
	if method == model.RefundMethodBank && gatewayRefund > 0 {
		gatewayRefundID, err = s.gateway.Refund(ctx, payment.RazorpayPaymentID, gatewayRefund)
		if err != nil {
			return nil, RefundFailed(err)
		}
	}

	now := time.Now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	// The PAID guard doubles as the race gate: a concurrent refund of the
	// same payment leaves nothing to update.
	res := tx.Model(&model.Payment{}).
		Where("id = ? AND status = ?", payment.ID, model.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"status":             model.PaymentStatusRefunded,
			"refund_amount":      refundAmount,
			"refund_method":      method,
			"refund_reason":      reason,
			"razorpay_refund_id": gatewayRefundID,
			"refunded_at":        now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyRefunded
	}

	walletCredit := walletBase
	if method == model.RefundMethodWallet {
		walletCredit = refundAmount
	}
	if walletCredit > 0 {
		err = s.wallets.CreditTx(tx, userID, walletCredit, "Course refund",
			TransactionLink{OrderRef: orderRef, PaymentID: &payment.ID})
		if err != nil {
			return nil, err
		}
	}

	err = tx.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("status", model.EnrollmentStatusRefunded).Error
	if err != nil {
		return nil, err
	}

	// Order-level cascade: once no unrefunded payment remains, the order
	// itself is refunded and the coupon redemption is reversed, exactly once.
	var remaining int64
	err = tx.Model(&model.Payment{}).
		Where("razorpay_order_id = ? AND status <> ?", orderRef, model.PaymentStatusRefunded).
		Count(&remaining).Error
	if err != nil {
		return nil, err
	}

	orderRefunded := false
	if remaining == 0 {
		orderRes := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, model.OrderStatusPaid).
			Update("status", model.OrderStatusRefunded)
		if orderRes.Error != nil {
			return nil, orderRes.Error
		}
		if orderRes.RowsAffected > 0 {
			orderRefunded = true
			if order.CouponID != nil {
				if err := s.coupons.DecrementUsage(tx, *order.CouponID, userID); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &RefundResult{
		OrderRef:      orderRef,
		RefundAmount:  refundAmount,
		RefundMethod:  method,
		RefundID:      gatewayRefundID,
		OrderRefunded: orderRefunded,
	}, nil
}

// RefundRecord is one row of a user's refund history.
type RefundRecord struct {
	OrderRef     string     `json:"order_ref"`
	CourseID     uint       `json:"course_id"`
	CourseTitle  string     `json:"course_title"`
	Amount       int64      `json:"amount"`
	RefundAmount int64      `json:"refund_amount"`
	RefundMethod string     `json:"refund_method"`
	RefundID     string     `json:"refund_id,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at"`
}

// RefundHistory returns the user's refunded payments, optionally scoped to
// one order.
func (s *RefundService) RefundHistory(userID uint, orderRef string) ([]RefundRecord, error) {
	query := s.db.Preload("Course").
		Where("user_id = ? AND status = ?", userID, model.PaymentStatusRefunded)
	if orderRef != "" {
		query = query.Where("razorpay_order_id = ?", orderRef)
	}

	var payments []model.Payment
	if err := query.Order("refunded_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}

	records := make([]RefundRecord, 0, len(payments))
	for _, payment := range payments {
		records = append(records, RefundRecord{
			OrderRef:     payment.RazorpayOrderID,
			CourseID:     payment.CourseID,
			CourseTitle:  payment.Course.Title,
			Amount:       payment.Amount,
			RefundAmount: payment.RefundAmount,
			RefundMethod: payment.RefundMethod,
			RefundID:     payment.RazorpayRefundID,
			RefundedAt:   payment.RefundedAt,
		})
	}
	return records, nil
}

// distribute splits a refund total across payments proportionally to their
// amounts, assigning leftover paise from integer division to the first
// payments so the shares always sum to the total.
func distribute(total int64, payments []model.Payment) []int64 {
	shares := make([]int64, len(payments))
	if len(payments) == 0 || total <= 0 {
		return shares
	}

	var paymentTotal int64
	for i := range payments {
		paymentTotal += payments[i].Amount
	}
	if paymentTotal <= 0 {
		shares[0] = total
		return shares
	}

	var assigned int64
	for i := range payments {
		shares[i] = total * payments[i].Amount / paymentTotal
		assigned += shares[i]
	}
	for i := 0; assigned < total; i = (i + 1) % len(shares) {
		shares[i]++
		assigned++
	}
	return shares
}
