package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Seed demo accounts and their wallets (no dependencies)
	userSeeder := NewUserSeeder(s.db)
	if err := userSeeder.SeedUsers(); err != nil {
		log.Printf("User seeding failed: %v", err)
		return err
	}

	// 2. Seed game progress and the matching ledger entries
	progressSeeder := NewProgressSeeder(s.db)
	if err := progressSeeder.SeedProgress(); err != nil {
		log.Printf("Progress seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedUsersOnly seeds just the demo accounts
func (s *MainSeeder) SeedUsersOnly() error {
	userSeeder := NewUserSeeder(s.db)
	return userSeeder.SeedUsers()
}

// SeedProgressOnly seeds just the game progress and ledger entries
func (s *MainSeeder) SeedProgressOnly() error {
	progressSeeder := NewProgressSeeder(s.db)
	return progressSeeder.SeedProgress()
}
