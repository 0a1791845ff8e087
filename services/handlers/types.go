package handlers

import (
	"github.com/Vikash-Kumar001/wisestudent-sub002/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
}

type GameServiceInterface interface {
	CompleteGame(userID string, req dto.CompleteGameRequest) (*dto.CompleteGameResponse, error)
	UnlockReplay(userID, gameID string, gameIndex int) (*dto.UnlockReplayResponse, error)
	GetProgress(userID, gameID string) (*dto.GameProgressResponse, error)
	GetAllProgress(userID string) (*dto.GameProgressListResponse, error)
}

type WalletServiceInterface interface {
	GetWallet(userID string) (*dto.WalletResponse, error)
	GetHistory(userID string, page, limit int) (*dto.WalletHistoryResponse, error)
}
