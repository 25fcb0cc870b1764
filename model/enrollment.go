package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
	EnrollmentStatusRefunded  = "refunded"
)

// Enrollment grants a user access to a course. The unique (user, course)
// index is the safety net against double-enrollment when a payment
// confirmation is replayed.
type Enrollment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID  uint           `gorm:"not null;index;uniqueIndex:idx_enrollments_user_course" json:"course_id"`
	Status    string         `gorm:"type:varchar(20);default:'active'" json:"status"`

	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for Enrollment
func (Enrollment) TableName() string {
	return "enrollments"
}
