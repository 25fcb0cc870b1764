package services

import (
	"github.com/learnhub/learnhub-api/model"
	"gorm.io/gorm"
)

// EarningsService is the instructor-facing read model over the escrow flag.
// There is no separate running total; balances are summed live from the
// payment rows.
type EarningsService struct {
	db *gorm.DB
}

// NewEarningsService creates a new earnings service
func NewEarningsService(db *gorm.DB) *EarningsService {
	return &EarningsService{db: db}
}

// EarningsSummary is an instructor's settlement position in paise.
type EarningsSummary struct {
	PendingAmount      int64 `json:"pending_amount"`      // PAID but still HELD
	WithdrawableAmount int64 `json:"withdrawable_amount"` // PAID and RELEASED
	RefundedCount      int64 `json:"refunded_count"`
}

// Summary computes the instructor's pending and withdrawable totals across
// all payments on their courses.
func (s *EarningsService) Summary(instructorID uint) (*EarningsSummary, error) {
	summary := &EarningsSummary{}

	base := func() *gorm.DB {
		return s.db.Model(&model.Payment{}).
			Joins("JOIN courses ON courses.id = payments.course_id").
			Where("courses.instructor_id = ?", instructorID)
	}

	err := base().
		Where("payments.status = ? AND payments.release_status = ?",
			model.PaymentStatusPaid, model.ReleaseStatusHeld).
		Select("COALESCE(SUM(payments.amount), 0)").
		Scan(&summary.PendingAmount).Error
	if err != nil {
		return nil, err
	}

	err = base().
		Where("payments.status = ? AND payments.release_status = ?",
			model.PaymentStatusPaid, model.ReleaseStatusReleased).
		Select("COALESCE(SUM(payments.amount), 0)").
		Scan(&summary.WithdrawableAmount).Error
	if err != nil {
		return nil, err
	}

	err = base().
		Where("payments.status = ?", model.PaymentStatusRefunded).
		Count(&summary.RefundedCount).Error
	if err != nil {
		return nil, err
	}

	return summary, nil
}
