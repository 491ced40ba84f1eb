package database

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/task-manager-api/model"
	"gorm.io/gorm"
)

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
	log.Info("🌱 Starting database seeding...")

	if err := s.SeedTasks(); err != nil {
		return err
	}

	log.Info("✅ Database seeding completed successfully!")
	return nil
}

// SeedTasks creates sample tasks when the table is empty
func (s *Seeder) SeedTasks() error {
	var count int64
	if err := s.db.Model(&model.Task{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info("⏭️  Tasks already exist, skipping...")
		return nil
	}

	tasks := []model.Task{
		{
			Title:       "Buy groceries",
			Description: stringPtr("Milk, eggs, bread"),
			Priority:    "Medium",
			DueDate:     stringPtr("2024-12-01"),
		},
		{
			Title:    "Write weekly report",
			Priority: "High",
		},
		{
			Title:     "Book dentist appointment",
			Priority:  model.DefaultPriority,
			Completed: true,
		},
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&tasks).Error
	}); err != nil {
		return err
	}

	log.Infof("✅ Created %d tasks", len(tasks))
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}

func stringPtr(s string) *string {
	return &s
}
