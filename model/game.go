// model/game.go
package model

import "time"

// GameProgress tracks per (user, game) completion state. One row per pair,
// lazily created the first time a completion is reported.
type GameProgress struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	UserID           string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_game"`
	GameID           string    `json:"game_id" gorm:"not null;uniqueIndex:idx_user_game"`
	GameIndex        int       `json:"game_index" gorm:"not null"` // denormalized for audit; rewards recomputed at credit time
	GameType         string    `json:"game_type"`                  // teacher, parent
	LevelsCompleted  int       `json:"levels_completed" gorm:"default:0"`
	TotalLevels      int       `json:"total_levels" gorm:"default:0"`
	TotalCoinsEarned int       `json:"total_coins_earned" gorm:"default:0"`
	FullyCompleted   bool      `json:"fully_completed" gorm:"default:false"`
	ReplayUnlocked   bool      `json:"replay_unlocked" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// WalletAccount holds the authoritative CalmCoins balance. One row per user,
// created at registration. Balance never goes negative; it is only mutated
// through the wallet credit/debit primitives.
type WalletAccount struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Balance   int       `json:"balance" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WalletTransaction is the append-only history behind the balance. Every
// credit/debit carries a reason code sufficient to reconstruct the balance.
type WalletTransaction struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"not null;index"`
	Amount       int       `json:"amount" gorm:"not null"` // positive for credit, negative for debit
	BalanceAfter int       `json:"balance_after" gorm:"not null"`
	Reason       string    `json:"reason" gorm:"not null"` // e.g. credit:game-complete:<gameId>
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}
