package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a purchasable course. Authoring and content live in the
// course service; checkout only needs the price and the publish/block flags.
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	InstructorID uint           `gorm:"not null;index" json:"instructor_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Price        int64          `gorm:"not null" json:"price"` // paise
	Published    bool           `gorm:"default:false" json:"published"`
	Blocked      bool           `gorm:"default:false" json:"blocked"`

	// Relationships
	Instructor User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// Purchasable reports whether the course can currently be bought.
func (c *Course) Purchasable() bool {
	return c.Published && !c.Blocked
}
