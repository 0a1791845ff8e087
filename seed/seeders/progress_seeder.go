package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Vikash-Kumar001/wisestudent-sub002/model"
	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

// ProgressSeeder seeds completed games for the demo parent together with the
// matching wallet credits, so the seeded balance reconciles with the ledger.
type ProgressSeeder struct {
	db *gorm.DB
}

// NewProgressSeeder creates a new progress seeder
func NewProgressSeeder(db *gorm.DB) *ProgressSeeder {
	return &ProgressSeeder{db: db}
}

type seededGame struct {
	gameID      string
	gameIndex   int
	gameType    string
	totalLevels int
	reward      int
}

// SeedProgress marks a handful of games as completed for the demo parent and
// credits the tier reward for each. Safe to re-run.
func (s *ProgressSeeder) SeedProgress() error {
	games := []seededGame{
		{"parent-emotions-1", 1, shared.GameTypeParent, 5, 5},
		{"parent-emotions-2", 2, shared.GameTypeParent, 5, 5},
		{"parent-emotions-30", 30, shared.GameTypeParent, 6, 10},
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var account model.WalletAccount
		if err := tx.Where("user_id = ?", DemoParentID).First(&account).Error; err != nil {
			return err
		}

		for _, game := range games {
			var existing model.GameProgress
			err := tx.Where("user_id = ? AND game_id = ?", DemoParentID, game.gameID).
				First(&existing).Error
			if err == nil {
				log.Printf("Progress for %s already exists, skipping", game.gameID)
				continue
			}

			progressID, _ := uuid.NewV7()
			progress := model.GameProgress{
				ID:               progressID.String(),
				UserID:           DemoParentID,
				GameID:           game.gameID,
				GameIndex:        game.gameIndex,
				GameType:         game.gameType,
				LevelsCompleted:  game.totalLevels,
				TotalLevels:      game.totalLevels,
				TotalCoinsEarned: game.reward,
				FullyCompleted:   true,
				CreatedAt:        time.Now(),
				UpdatedAt:        time.Now(),
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}

			account.Balance += game.reward
			entryID, _ := uuid.NewV7()
			entry := model.WalletTransaction{
				ID:           entryID.String(),
				UserID:       DemoParentID,
				Amount:       game.reward,
				BalanceAfter: account.Balance,
				Reason:       shared.ReasonGameComplete + game.gameID,
				CreatedAt:    time.Now(),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			log.Printf("Seeded completion of %s (+%d CalmCoins)", game.gameID, game.reward)
		}

		account.UpdatedAt = time.Now()
		return tx.Save(&account).Error
	})
}
