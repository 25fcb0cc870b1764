package services

import (
	"time"

	"github.com/learnhub/learnhub-api/model"
	"gorm.io/gorm"
)

// EscrowService promotes settled payments out of the hold period. Shared by
// the daily cron job and the manual admin trigger.
type EscrowService struct {
	db *gorm.DB
}

// NewEscrowService creates a new escrow service
func NewEscrowService(db *gorm.DB) *EscrowService {
	return &EscrowService{db: db}
}

// ReleaseDuePayments flips every PAID payment whose hold period has elapsed
// from HELD to RELEASED and returns how many were released. The conditional
// bulk update is idempotent per document, so overlapping or repeated runs
// find nothing left to update.
func (s *EscrowService) ReleaseDuePayments(now time.Time) (int64, error) {
	res := s.db.Model(&model.Payment{}).
		Where("status = ? AND release_status = ? AND release_date <= ?",
			model.PaymentStatusPaid, model.ReleaseStatusHeld, now).
		Update("release_status", model.ReleaseStatusReleased)
	return res.RowsAffected, res.Error
}
