package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/learnhub/learnhub-api/model"
)

const escrowLockKey = "locks:release_escrow_payments"

// ReleaseEscrowPayments promotes PAID payments whose hold period has elapsed
// from HELD to RELEASED. The underlying update is idempotent per payment, so
// a failed run simply leaves work for the next tick. A best-effort Redis
// lock keeps overlapping runs from doing duplicate work.
func (m *CronManager) ReleaseEscrowPayments() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "release_escrow_payments"

	if m.cache != nil {
		acquired, err := m.cache.AcquireLock(ctx, escrowLockKey, 10*time.Minute)
		if err != nil {
			log.Printf("[CRON] Failed to acquire escrow lock, proceeding anyway: %v", err)
		} else if !acquired {
			m.logJobComplete(jobName, "Skipped, previous run still in progress")
			return
		} else {
			defer m.cache.ReleaseLock(context.Background(), escrowLockKey)
		}
	}

	released, err := m.escrow.ReleaseDuePayments(time.Now())
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to release held payments: %w", err))
		return
	}

	if released == 0 {
		m.logJobComplete(jobName, "No held payments due for release")
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Released %d payments", released))
}

// CleanupCronLogs prunes cron job logs older than 90 days.
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -90)
	res := m.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if res.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete old logs: %w", res.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old log rows", res.RowsAffected))
}
