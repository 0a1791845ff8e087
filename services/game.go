// services/game.go
package services

import (
	stdcontext "context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Vikash-Kumar001/wisestudent-sub002/dto"
	"github.com/Vikash-Kumar001/wisestudent-sub002/model"
	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

// GameService is the completion and replay-unlock boundary. All monetary
// amounts are recomputed here from the server-owned tier tables; the client's
// total_coins and is_replay fields are advisory only.
type GameService struct {
	context.DefaultService

	sqlSvc    *SqlService
	walletSvc *WalletService
	notifySvc *NotificationService
	cacheSvc  *RedisService

	// Serializes the read-modify-write of progress + wallet per user.
	// Two tabs finishing the same game race here, not in the database.
	userLocks sync.Map
}

const GAME_SVC = "game_svc"

// Reward and replay-cost tiers: blocks of 25 games share an amount.
// Game indexes run 1..100; anything outside is an integrity error.
const (
	gamesPerTier = 25
	maxGameIndex = 100
)

const progressCacheTTL = 5 * time.Minute

var (
	rewardTiers     = [4]int{5, 10, 15, 20}
	replayCostTiers = [4]int{2, 4, 6, 8}
)

func (svc GameService) Id() string {
	return GAME_SVC
}

func (svc *GameService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *GameService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	svc.walletSvc = svc.Service(WALLET_SVC).(*WalletService)
	svc.notifySvc = svc.Service(NOTIFICATION_SVC).(*NotificationService)
	svc.cacheSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

func (svc *GameService) lockUser(userID string) func() {
	mu, _ := svc.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

// RewardForGame returns the one-time completion reward for a game index.
func RewardForGame(gameIndex int) (int, error) {
	tier, err := tierFor(gameIndex)
	if err != nil {
		return 0, err
	}
	return rewardTiers[tier], nil
}

// ReplayCostForGame returns the replay unlock cost for a game index.
func ReplayCostForGame(gameIndex int) (int, error) {
	tier, err := tierFor(gameIndex)
	if err != nil {
		return 0, err
	}
	return replayCostTiers[tier], nil
}

func tierFor(gameIndex int) (int, error) {
	if gameIndex < 1 || gameIndex > maxGameIndex {
		return 0, shared.NewInvalidAmountError(
			fmt.Errorf("game index %d outside 1..%d", gameIndex, maxGameIndex),
			"Game index out of range")
	}
	return (gameIndex - 1) / gamesPerTier, nil
}

// CompleteGame records a client-reported completion. First completions credit
// the tiered reward exactly once; replays consume the paid unlock and credit
// nothing. The progress update and the wallet credit commit or roll back
// together.
func (svc *GameService) CompleteGame(userID string, req dto.CompleteGameRequest) (*dto.CompleteGameResponse, error) {
	unlock := svc.lockUser(userID)
	defer unlock()

	reward, err := RewardForGame(req.GameIndex)
	if err != nil {
		return nil, err
	}

	fullCompletion := req.IsFullCompletion || req.LevelsCompleted >= req.TotalLevels

	var resp *dto.CompleteGameResponse
	err = svc.sqlSvc.Transaction(func(tx *gorm.DB) error {
		progress, err := svc.sqlSvc.GetGameProgress(tx, userID, req.GameID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewInternalError(err, "Failed to load game progress")
			}
			progress, err = svc.newProgress(tx, userID, req)
			if err != nil {
				return err
			}
		}

		if !fullCompletion {
			resp, err = svc.partialProgress(tx, progress, req)
			return err
		}

		if !progress.FullyCompleted {
			resp, err = svc.firstCompletion(tx, progress, req, reward)
			return err
		}

		// Stored state says this game was already completed. The client's
		// replay flag only decides whether this is a consumed unlock, a
		// rejected locked replay, or a duplicate submission of the original
		// completion (dropped response, double-submit, second tab).
		if progress.ReplayUnlocked {
			resp, err = svc.replayCompletion(tx, progress, req)
			return err
		}

		if req.IsReplay {
			replaysRejectedTotal.Inc()
			return shared.NewReplayLockedError(
				fmt.Errorf("replay of %s without unlock", req.GameID))
		}

		resp, err = svc.duplicateCompletion(tx, progress)
		return err
	})
	if err != nil {
		return nil, err
	}

	svc.invalidateProgress(userID, req.GameID)
	if fullCompletion {
		svc.publishCompleted(userID, resp)
	}
	return resp, nil
}

// partialProgress records a mid-game checkpoint. Levels are a high-water
// mark; no flags flip and no coins move.
func (svc *GameService) partialProgress(tx *gorm.DB, progress *model.GameProgress, req dto.CompleteGameRequest) (*dto.CompleteGameResponse, error) {
	if !progress.FullyCompleted && req.LevelsCompleted > progress.LevelsCompleted {
		progress.LevelsCompleted = req.LevelsCompleted
		progress.TotalLevels = req.TotalLevels
		if err := svc.sqlSvc.UpdateGameProgress(tx, progress); err != nil {
			return nil, shared.NewInternalError(err, "Failed to save game progress")
		}
	}

	account, err := svc.sqlSvc.GetWalletAccount(tx, progress.UserID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load wallet account")
	}

	return &dto.CompleteGameResponse{
		Success:         true,
		GameID:          progress.GameID,
		CalmCoinsEarned: 0,
		FullyCompleted:  progress.FullyCompleted,
		ReplayUnlocked:  progress.ReplayUnlocked,
		Balance:         account.Balance,
	}, nil
}

func (svc *GameService) newProgress(tx *gorm.DB, userID string, req dto.CompleteGameRequest) (*model.GameProgress, error) {
	progressID, _ := uuid.NewV7()
	progress := &model.GameProgress{
		ID:          progressID.String(),
		UserID:      userID,
		GameID:      req.GameID,
		GameIndex:   req.GameIndex,
		GameType:    req.GameType,
		TotalLevels: req.TotalLevels,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := svc.sqlSvc.CreateGameProgress(tx, progress); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create game progress")
	}
	return progress, nil
}

func (svc *GameService) firstCompletion(tx *gorm.DB, progress *model.GameProgress, req dto.CompleteGameRequest, reward int) (*dto.CompleteGameResponse, error) {
	progress.LevelsCompleted = req.TotalLevels
	progress.TotalLevels = req.TotalLevels
	progress.FullyCompleted = true
	progress.ReplayUnlocked = false
	progress.TotalCoinsEarned += reward

	if err := svc.sqlSvc.UpdateGameProgress(tx, progress); err != nil {
		return nil, shared.NewInternalError(err, "Failed to save game progress")
	}

	account, err := svc.walletSvc.Credit(tx, progress.UserID, reward, shared.ReasonGameComplete+progress.GameID)
	if err != nil {
		return nil, err
	}

	gameCompletionsTotal.WithLabelValues("first").Inc()
	coinsCreditedTotal.Add(float64(reward))

	return &dto.CompleteGameResponse{
		Success:         true,
		GameID:          progress.GameID,
		CalmCoinsEarned: reward,
		IsReplay:        false,
		ReplayUnlocked:  false,
		FullyCompleted:  true,
		Balance:         account.Balance,
	}, nil
}

func (svc *GameService) replayCompletion(tx *gorm.DB, progress *model.GameProgress, req dto.CompleteGameRequest) (*dto.CompleteGameResponse, error) {
	// The unlock is single-use: consumed by this completion, no coins move.
	progress.ReplayUnlocked = false
	progress.LevelsCompleted = req.TotalLevels

	if err := svc.sqlSvc.UpdateGameProgress(tx, progress); err != nil {
		return nil, shared.NewInternalError(err, "Failed to save game progress")
	}

	account, err := svc.sqlSvc.GetWalletAccount(tx, progress.UserID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load wallet account")
	}

	gameCompletionsTotal.WithLabelValues("replay").Inc()

	return &dto.CompleteGameResponse{
		Success:         true,
		GameID:          progress.GameID,
		CalmCoinsEarned: 0,
		IsReplay:        true,
		ReplayUnlocked:  false,
		FullyCompleted:  true,
		Balance:         account.Balance,
	}, nil
}

// duplicateCompletion answers a retried first-completion call. Nothing is
// mutated; the response mirrors what the client would have seen had the
// original response arrived, minus the reward it already received.
func (svc *GameService) duplicateCompletion(tx *gorm.DB, progress *model.GameProgress) (*dto.CompleteGameResponse, error) {
	account, err := svc.sqlSvc.GetWalletAccount(tx, progress.UserID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load wallet account")
	}

	gameCompletionsTotal.WithLabelValues("duplicate").Inc()

	return &dto.CompleteGameResponse{
		Success:          true,
		GameID:           progress.GameID,
		CalmCoinsEarned:  0,
		IsReplay:         true,
		ReplayUnlocked:   false,
		AlreadyCompleted: true,
		FullyCompleted:   true,
		Balance:          account.Balance,
	}, nil
}

// UnlockReplay charges the tiered cost and re-enables play on a completed
// game. The debit and the flag flip share one transaction.
func (svc *GameService) UnlockReplay(userID, gameID string, gameIndex int) (*dto.UnlockReplayResponse, error) {
	unlock := svc.lockUser(userID)
	defer unlock()

	cost, err := ReplayCostForGame(gameIndex)
	if err != nil {
		return nil, err
	}

	var resp *dto.UnlockReplayResponse
	err = svc.sqlSvc.Transaction(func(tx *gorm.DB) error {
		progress, err := svc.sqlSvc.GetGameProgress(tx, userID, gameID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewGameNotCompletedError(err)
			}
			return shared.NewInternalError(err, "Failed to load game progress")
		}

		if !progress.FullyCompleted {
			return shared.NewGameNotCompletedError(
				fmt.Errorf("unlock of %s before completion", gameID))
		}

		if progress.ReplayUnlocked {
			// Already paid and not yet consumed; charging again would
			// burn coins on a retried request.
			account, err := svc.sqlSvc.GetWalletAccount(tx, userID)
			if err != nil {
				return shared.NewInternalError(err, "Failed to load wallet account")
			}
			resp = &dto.UnlockReplayResponse{
				Success:    true,
				GameID:     gameID,
				ReplayCost: 0,
				Balance:    account.Balance,
			}
			return nil
		}

		account, err := svc.walletSvc.Debit(tx, userID, cost, shared.ReasonReplayUnlock+gameID)
		if err != nil {
			return err
		}

		progress.ReplayUnlocked = true
		if err := svc.sqlSvc.UpdateGameProgress(tx, progress); err != nil {
			return shared.NewInternalError(err, "Failed to save game progress")
		}

		replayUnlocksTotal.Inc()
		coinsSpentTotal.Add(float64(cost))

		resp = &dto.UnlockReplayResponse{
			Success:    true,
			GameID:     gameID,
			ReplayCost: cost,
			Balance:    account.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	svc.invalidateProgress(userID, gameID)
	return resp, nil
}

// ==================== PROGRESS READS ====================

// GetProgress returns zero-value defaults for a game never attempted and
// never creates a record from a read. Hits on a short-lived cache first;
// writes invalidate it.
func (svc *GameService) GetProgress(userID, gameID string) (*dto.GameProgressResponse, error) {
	if cached := svc.cachedProgress(userID, gameID); cached != nil {
		return cached, nil
	}

	progress, err := svc.sqlSvc.GetGameProgress(nil, userID, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.GameProgressResponse{GameID: gameID}, nil
		}
		return nil, shared.NewInternalError(err, "Failed to get game progress")
	}

	resp := mapProgress(progress)
	svc.storeProgress(userID, gameID, resp)
	return resp, nil
}

func (svc *GameService) GetAllProgress(userID string) (*dto.GameProgressListResponse, error) {
	records, err := svc.sqlSvc.GetAllGameProgress(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list game progress")
	}

	games := make([]dto.GameProgressResponse, len(records))
	for i := range records {
		games[i] = *mapProgress(&records[i])
	}

	return &dto.GameProgressListResponse{
		Games: games,
		Total: len(games),
	}, nil
}

func mapProgress(progress *model.GameProgress) *dto.GameProgressResponse {
	return &dto.GameProgressResponse{
		GameID:           progress.GameID,
		LevelsCompleted:  progress.LevelsCompleted,
		TotalLevels:      progress.TotalLevels,
		TotalCoinsEarned: progress.TotalCoinsEarned,
		FullyCompleted:   progress.FullyCompleted,
		ReplayUnlocked:   progress.ReplayUnlocked,
	}
}

// ==================== PROGRESS CACHE ====================

func progressCacheKey(userID, gameID string) string {
	return fmt.Sprintf("progress:%s:%s", userID, gameID)
}

func (svc *GameService) cachedProgress(userID, gameID string) *dto.GameProgressResponse {
	if svc.cacheSvc == nil {
		return nil
	}

	ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), time.Second)
	defer cancel()

	var cached dto.GameProgressResponse
	found, err := svc.cacheSvc.GetJSON(ctx, progressCacheKey(userID, gameID), &cached)
	if err != nil || !found {
		return nil
	}
	return &cached
}

func (svc *GameService) storeProgress(userID, gameID string, resp *dto.GameProgressResponse) {
	if svc.cacheSvc == nil {
		return
	}

	ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), time.Second)
	defer cancel()

	if err := svc.cacheSvc.Set(ctx, progressCacheKey(userID, gameID), resp, progressCacheTTL); err != nil {
		log.WithError(err).Debug("Failed to cache game progress")
	}
}

func (svc *GameService) invalidateProgress(userID, gameID string) {
	if svc.cacheSvc == nil {
		return
	}

	ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), time.Second)
	defer cancel()

	if err := svc.cacheSvc.Delete(ctx, progressCacheKey(userID, gameID)); err != nil {
		log.WithError(err).Debug("Failed to invalidate progress cache")
	}
}

// publishCompleted runs outside the transaction; a failed notification is
// logged and swallowed, never surfaced to the caller.
func (svc *GameService) publishCompleted(userID string, resp *dto.CompleteGameResponse) {
	if svc.notifySvc == nil {
		return
	}

	event := dto.GameCompletedEvent{
		UserID:          userID,
		GameID:          resp.GameID,
		FullyCompleted:  resp.FullyCompleted,
		IsReplay:        resp.IsReplay,
		ReplayUnlocked:  resp.ReplayUnlocked,
		CalmCoinsEarned: resp.CalmCoinsEarned,
		CompletedAt:     time.Now(),
	}

	if err := svc.notifySvc.PublishGameCompleted(event); err != nil {
		log.WithError(err).WithField("game_id", resp.GameID).Warn("Failed to publish completion event")
	}
}
