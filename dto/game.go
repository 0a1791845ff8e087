package dto

import "time"

// ==================== GAME COMPLETION DTOs ====================

// CompleteGameRequest is what the client reports when a game's last round
// finishes. TotalCoins and IsReplay are advisory only; the server recomputes
// both from its own state before any coins move.
type CompleteGameRequest struct {
	GameID           string `json:"game_id" validate:"required" example:"teacher-education-2"`
	GameType         string `json:"game_type" validate:"omitempty,oneof=teacher parent" example:"teacher"`
	GameIndex        int    `json:"game_index" validate:"required,min=1" example:"2"`
	Score            int    `json:"score" validate:"min=0" example:"80"`
	LevelsCompleted  int    `json:"levels_completed" validate:"min=0" example:"5"`
	TotalLevels      int    `json:"total_levels" validate:"required,min=1" example:"5"`
	TotalCoins       int    `json:"total_coins" validate:"min=0" example:"5"` // informational, never credited
	IsFullCompletion bool   `json:"is_full_completion" example:"true"`
	IsReplay         bool   `json:"is_replay" example:"false"`
}

func (r CompleteGameRequest) Validate() error {
	return GetValidator().Struct(r)
}

type CompleteGameResponse struct {
	Success          bool   `json:"success"`
	GameID           string `json:"game_id"`
	CalmCoinsEarned  int    `json:"calm_coins_earned"`
	IsReplay         bool   `json:"is_replay"`
	ReplayUnlocked   bool   `json:"replay_unlocked"`
	AlreadyCompleted bool   `json:"already_completed,omitempty"`
	FullyCompleted   bool   `json:"fully_completed"`
	Balance          int    `json:"balance"`
}

// ==================== REPLAY UNLOCK DTOs ====================

type UnlockReplayRequest struct {
	GameIndex int `json:"game_index" validate:"required,min=1" example:"2"`
}

func (r UnlockReplayRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UnlockReplayResponse struct {
	Success    bool   `json:"success"`
	GameID     string `json:"game_id"`
	ReplayCost int    `json:"replay_cost"`
	Balance    int    `json:"balance"`
}

// ==================== PROGRESS DTOs ====================

type GameProgressResponse struct {
	GameID           string `json:"game_id"`
	LevelsCompleted  int    `json:"levels_completed"`
	TotalLevels      int    `json:"total_levels"`
	TotalCoinsEarned int    `json:"total_coins_earned"`
	FullyCompleted   bool   `json:"fully_completed"`
	ReplayUnlocked   bool   `json:"replay_unlocked"`
}

type GameProgressListResponse struct {
	Games []GameProgressResponse `json:"games"`
	Total int                    `json:"total"`
}

// GameCompletedEvent mirrors the payload the client rebroadcasts as a local
// DOM event so sibling views can refresh without a reload.
type GameCompletedEvent struct {
	UserID          string    `json:"user_id"`
	GameID          string    `json:"game_id"`
	FullyCompleted  bool      `json:"fully_completed"`
	IsReplay        bool      `json:"is_replay"`
	ReplayUnlocked  bool      `json:"replay_unlocked"`
	CalmCoinsEarned int       `json:"calm_coins_earned"`
	CompletedAt     time.Time `json:"completed_at"`
}
