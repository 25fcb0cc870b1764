package database

import (
	"fmt"
	"log"
	"time"

	"github.com/learnhub/learnhub-api/model"
	"gorm.io/gorm"
)

// RunSeeds is the entrypoint used by the seed command.
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedUsers creates a default admin, an instructor and a student for
// local development.
func (s *Seeder) SeedUsers() error {
	var count int64
	if err := s.db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Users already exist, skipping...")
		return nil
	}

	users := []model.User{
		{Email: "admin@learnhub.dev", Name: "Admin", Role: model.RoleAdmin},
		{Email: "instructor@learnhub.dev", Name: "Asha Instructor", Role: model.RoleInstructor},
		{Email: "student@learnhub.dev", Name: "Dev Student", Role: model.RoleStudent},
	}

	if err := s.db.Create(&users).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d users", len(users))
	return nil
}

// SeedCourses creates a small published catalog owned by the seeded
// instructor. Prices are stored in paise.
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	var instructor model.User
	if err := s.db.Where("role = ?", model.RoleInstructor).First(&instructor).Error; err != nil {
		return err
	}

	courses := []model.Course{
		{InstructorID: instructor.ID, Title: "Go for Backend Engineers", Price: 149900, Published: true},
		{InstructorID: instructor.ID, Title: "PostgreSQL Deep Dive", Price: 99900, Published: true},
		{InstructorID: instructor.ID, Title: "Distributed Systems Basics", Price: 199900, Published: true},
		{InstructorID: instructor.ID, Title: "Unpublished Draft Course", Price: 49900, Published: false},
	}

	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d courses", len(courses))
	return nil
}

// SeedCoupons creates a few live coupons for development.
func (s *Seeder) SeedCoupons() error {
	var count int64
	if err := s.db.Model(&model.Coupon{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Coupons already exist, skipping...")
		return nil
	}

	expiry := time.Now().AddDate(0, 3, 0)
	coupons := []model.Coupon{
		{
			Code:          "WELCOME10",
			DiscountType:  model.DiscountTypePercent,
			DiscountValue: 10,
			MinAmount:     50000,
			MaxDiscount:   30000,
			UsageLimit:    1000,
			PerUserLimit:  1,
			ExpiresAt:     expiry,
		},
		{
			Code:          "FLAT500",
			DiscountType:  model.DiscountTypeFlat,
			DiscountValue: 50000,
			MinAmount:     100000,
			UsageLimit:    200,
			PerUserLimit:  2,
			ExpiresAt:     expiry,
		},
	}

	if err := s.db.Create(&coupons).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d coupons", len(coupons))
	return nil
}
