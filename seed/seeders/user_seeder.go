package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Vikash-Kumar001/wisestudent-sub002/model"
	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

// UserSeeder handles seeding demo parent and teacher accounts
type UserSeeder struct {
	db *gorm.DB
}

// NewUserSeeder creates a new user seeder
func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

// Demo account user ids, referenced by the progress seeder.
const (
	DemoParentID  = "seed-parent-1"
	DemoTeacherID = "seed-teacher-1"
)

// SeedUsers creates a demo parent and a demo teacher, each with an empty
// wallet. Safe to re-run; existing accounts are skipped.
func (s *UserSeeder) SeedUsers() error {
	users := []model.User{
		{
			ID:       DemoParentID,
			Email:    "parent@wisestudent.local",
			Username: "demo_parent",
			Role:     shared.GameTypeParent,
		},
		{
			ID:       DemoTeacherID,
			Email:    "teacher@wisestudent.local",
			Username: "demo_teacher",
			Role:     shared.GameTypeTeacher,
		},
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Demo1234!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, user := range users {
		var existing model.User
		if err := s.db.Where("id = ?", user.ID).First(&existing).Error; err == nil {
			log.Printf("User %s already exists, skipping", user.Username)
			continue
		}

		user.Password = string(hashedPassword)
		user.CreatedAt = time.Now()
		user.UpdatedAt = time.Now()

		if err := s.db.Create(&user).Error; err != nil {
			return err
		}

		accountID, _ := uuid.NewV7()
		account := model.WalletAccount{
			ID:        accountID.String(),
			UserID:    user.ID,
			Balance:   0,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.db.Create(&account).Error; err != nil {
			return err
		}

		log.Printf("Seeded user %s with empty wallet", user.Username)
	}

	return nil
}
