package services

import (
	"testing"
	"time"

	"github.com/learnhub/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPayment(t *testing.T, db *gorm.DB, userID, courseID uint, orderRef, status, releaseStatus string, releaseDate *time.Time) *model.Payment {
	t.Helper()
	payment := &model.Payment{
		UserID:          userID,
		CourseID:        courseID,
		RazorpayOrderID: orderRef,
		Amount:          50000,
		Currency:        "INR",
		Status:          status,
		ReleaseStatus:   releaseStatus,
		ReleaseDate:     releaseDate,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func TestReleaseDuePayments(t *testing.T) {
	db := newTestDB(t)
	svc := NewEscrowService(db)

	instructor := createUser(t, db, "instructor@test.dev", model.RoleInstructor)
	student := createUser(t, db, "student@test.dev", model.RoleStudent)
	courseA := createCourse(t, db, instructor.ID, "Course A", 50000)
	courseB := createCourse(t, db, instructor.ID, "Course B", 50000)
	courseC := createCourse(t, db, instructor.ID, "Course C", 50000)
	courseD := createCourse(t, db, instructor.ID, "Course D", 50000)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := seedPayment(t, db, student.ID, courseA.ID, "order_1", model.PaymentStatusPaid, model.ReleaseStatusHeld, &past)
	notYet := seedPayment(t, db, student.ID, courseB.ID, "order_2", model.PaymentStatusPaid, model.ReleaseStatusHeld, &future)
	refunded := seedPayment(t, db, student.ID, courseC.ID, "order_3", model.PaymentStatusRefunded, model.ReleaseStatusHeld, &past)
	alreadyOut := seedPayment(t, db, student.ID, courseD.ID, "order_4", model.PaymentStatusPaid, model.ReleaseStatusReleased, &past)

	released, err := svc.ReleaseDuePayments(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	check := func(id uint, want string) {
		var payment model.Payment
		require.NoError(t, db.First(&payment, id).Error)
		assert.Equal(t, want, payment.ReleaseStatus)
	}
	check(due.ID, model.ReleaseStatusReleased)
	check(notYet.ID, model.ReleaseStatusHeld)
	check(refunded.ID, model.ReleaseStatusHeld)
	check(alreadyOut.ID, model.ReleaseStatusReleased)

	// A second run finds nothing left.
	released, err = svc.ReleaseDuePayments(now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), released)
}

func TestReleaseDuePaymentsEmptyTable(t *testing.T) {
	db := newTestDB(t)
	svc := NewEscrowService(db)

	released, err := svc.ReleaseDuePayments(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), released)
}
