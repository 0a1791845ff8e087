package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Vikash-Kumar001/wisestudent-sub002/dto"
	"github.com/Vikash-Kumar001/wisestudent-sub002/model"
	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

// newTestSql opens a per-test in-memory sqlite database. The shared cache
// keeps the database alive across the pooled connections gorm opens.
func newTestSql(t *testing.T) *SqlService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	svc := &SqlService{db: db}
	require.NoError(t, svc.Migrate())
	return svc
}

func newGameFixture(t *testing.T) (*GameService, *WalletService, *SqlService) {
	t.Helper()

	sqlSvc := newTestSql(t)
	walletSvc := &WalletService{sqlSvc: sqlSvc}
	gameSvc := &GameService{sqlSvc: sqlSvc, walletSvc: walletSvc}
	return gameSvc, walletSvc, sqlSvc
}

func openWallet(t *testing.T, walletSvc *WalletService, userID string) {
	t.Helper()
	_, err := walletSvc.CreateAccount(userID)
	require.NoError(t, err)
}

func completeReq(gameID string, gameIndex int) dto.CompleteGameRequest {
	return dto.CompleteGameRequest{
		GameID:           gameID,
		GameType:         shared.GameTypeTeacher,
		GameIndex:        gameIndex,
		Score:            80,
		LevelsCompleted:  5,
		TotalLevels:      5,
		IsFullCompletion: true,
	}
}

func requireKind(t *testing.T, err error, kind string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind)
}

func TestRewardAndReplayCostTiers(t *testing.T) {
	cases := []struct {
		gameIndex int
		reward    int
		cost      int
	}{
		{1, 5, 2},
		{25, 5, 2},
		{26, 10, 4},
		{50, 10, 4},
		{51, 15, 6},
		{75, 15, 6},
		{76, 20, 8},
		{100, 20, 8},
	}

	for _, tc := range cases {
		reward, err := RewardForGame(tc.gameIndex)
		require.NoError(t, err)
		require.Equal(t, tc.reward, reward, "reward for game %d", tc.gameIndex)

		cost, err := ReplayCostForGame(tc.gameIndex)
		require.NoError(t, err)
		require.Equal(t, tc.cost, cost, "replay cost for game %d", tc.gameIndex)
	}

	for _, gameIndex := range []int{0, -1, 101} {
		_, err := RewardForGame(gameIndex)
		requireKind(t, err, shared.KindInvalidAmount)

		_, err = ReplayCostForGame(gameIndex)
		requireKind(t, err, shared.KindInvalidAmount)
	}
}

func TestCompleteGameFirstCompletion(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	resp, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-30", 30))
	require.NoError(t, err)

	require.True(t, resp.Success)
	require.Equal(t, 10, resp.CalmCoinsEarned)
	require.Equal(t, 10, resp.Balance)
	require.True(t, resp.FullyCompleted)
	require.False(t, resp.IsReplay)
	require.False(t, resp.AlreadyCompleted)

	progress, err := sqlSvc.GetGameProgress(nil, "user-1", "teacher-education-30")
	require.NoError(t, err)
	require.True(t, progress.FullyCompleted)
	require.False(t, progress.ReplayUnlocked)
	require.Equal(t, 10, progress.TotalCoinsEarned)

	entries, total, err := sqlSvc.GetWalletTransactions("user-1", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, 10, entries[0].Amount)
	require.Equal(t, shared.ReasonGameComplete+"teacher-education-30", entries[0].Reason)
}

func TestCompleteGameRetryDoesNotDoubleCredit(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	first, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-2", 2))
	require.NoError(t, err)
	require.Equal(t, 5, first.CalmCoinsEarned)

	// Same request again, as a client retry after a dropped response.
	second, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-2", 2))
	require.NoError(t, err)
	require.True(t, second.Success)
	require.Equal(t, 0, second.CalmCoinsEarned)
	require.True(t, second.AlreadyCompleted)
	require.Equal(t, 5, second.Balance)

	_, total, err := sqlSvc.GetWalletTransactions("user-1", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestCompleteGameReplayWithoutUnlock(t *testing.T) {
	gameSvc, walletSvc, _ := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	_, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-2", 2))
	require.NoError(t, err)

	req := completeReq("teacher-education-2", 2)
	req.IsReplay = true
	_, err = gameSvc.CompleteGame("user-1", req)
	requireKind(t, err, shared.KindReplayLocked)

	wallet, err := walletSvc.GetWallet("user-1")
	require.NoError(t, err)
	require.Equal(t, 5, wallet.Balance)
}

func TestUnlockReplayFlow(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	_, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-30", 30))
	require.NoError(t, err)

	unlock, err := gameSvc.UnlockReplay("user-1", "teacher-education-30", 30)
	require.NoError(t, err)
	require.Equal(t, 4, unlock.ReplayCost)
	require.Equal(t, 6, unlock.Balance)

	progress, err := sqlSvc.GetGameProgress(nil, "user-1", "teacher-education-30")
	require.NoError(t, err)
	require.True(t, progress.ReplayUnlocked)

	// The paid unlock admits exactly one replay and credits nothing.
	req := completeReq("teacher-education-30", 30)
	req.IsReplay = true
	replay, err := gameSvc.CompleteGame("user-1", req)
	require.NoError(t, err)
	require.Equal(t, 0, replay.CalmCoinsEarned)
	require.True(t, replay.IsReplay)
	require.Equal(t, 6, replay.Balance)

	progress, err = sqlSvc.GetGameProgress(nil, "user-1", "teacher-education-30")
	require.NoError(t, err)
	require.False(t, progress.ReplayUnlocked)

	// Unlock consumed, replaying again requires another purchase.
	_, err = gameSvc.CompleteGame("user-1", req)
	requireKind(t, err, shared.KindReplayLocked)
}

func TestUnlockReplayRequiresCompletion(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	_, err := gameSvc.UnlockReplay("user-1", "teacher-education-2", 2)
	requireKind(t, err, shared.KindGameNotCompleted)

	// A partially played game is still locked for replay purchase.
	require.NoError(t, sqlSvc.CreateGameProgress(nil, &model.GameProgress{
		ID:              "progress-1",
		UserID:          "user-1",
		GameID:          "teacher-education-3",
		GameIndex:       3,
		LevelsCompleted: 2,
		TotalLevels:     5,
	}))

	_, err = gameSvc.UnlockReplay("user-1", "teacher-education-3", 3)
	requireKind(t, err, shared.KindGameNotCompleted)
}

func TestUnlockReplayRetryChargesOnce(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	_, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-2", 2))
	require.NoError(t, err)

	first, err := gameSvc.UnlockReplay("user-1", "teacher-education-2", 2)
	require.NoError(t, err)
	require.Equal(t, 2, first.ReplayCost)
	require.Equal(t, 3, first.Balance)

	second, err := gameSvc.UnlockReplay("user-1", "teacher-education-2", 2)
	require.NoError(t, err)
	require.Equal(t, 0, second.ReplayCost)
	require.Equal(t, 3, second.Balance)

	_, total, err := sqlSvc.GetWalletTransactions("user-1", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}

func TestUnlockReplayInsufficientBalance(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	require.NoError(t, sqlSvc.CreateGameProgress(nil, &model.GameProgress{
		ID:             "progress-1",
		UserID:         "user-1",
		GameID:         "teacher-education-2",
		GameIndex:      2,
		TotalLevels:    5,
		FullyCompleted: true,
	}))

	_, err := gameSvc.UnlockReplay("user-1", "teacher-education-2", 2)
	requireKind(t, err, shared.KindInsufficientBalance)

	// Nothing moved: balance intact, lock intact, no transaction appended.
	wallet, err := walletSvc.GetWallet("user-1")
	require.NoError(t, err)
	require.Equal(t, 0, wallet.Balance)

	progress, err := sqlSvc.GetGameProgress(nil, "user-1", "teacher-education-2")
	require.NoError(t, err)
	require.False(t, progress.ReplayUnlocked)

	_, total, err := sqlSvc.GetWalletTransactions("user-1", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
}

func TestConcurrentCompletionsCreditOnce(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	const workers = 8
	responses := make([]*dto.CompleteGameResponse, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = gameSvc.CompleteGame("user-1", completeReq("teacher-education-2", 2))
		}(i)
	}
	wg.Wait()

	credited := 0
	for i := range responses {
		require.NoError(t, errs[i])
		credited += responses[i].CalmCoinsEarned
	}
	require.Equal(t, 5, credited, "exactly one completion should credit the reward")

	wallet, err := walletSvc.GetWallet("user-1")
	require.NoError(t, err)
	require.Equal(t, 5, wallet.Balance)

	_, total, err := sqlSvc.GetWalletTransactions("user-1", 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestPartialProgressCheckpoint(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	req := completeReq("teacher-education-2", 2)
	req.LevelsCompleted = 3
	req.IsFullCompletion = false

	resp, err := gameSvc.CompleteGame("user-1", req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, 0, resp.CalmCoinsEarned)
	require.False(t, resp.FullyCompleted)

	progress, err := sqlSvc.GetGameProgress(nil, "user-1", "teacher-education-2")
	require.NoError(t, err)
	require.Equal(t, 3, progress.LevelsCompleted)
	require.False(t, progress.FullyCompleted)

	// A stale checkpoint never lowers the high-water mark.
	req.LevelsCompleted = 1
	_, err = gameSvc.CompleteGame("user-1", req)
	require.NoError(t, err)

	progress, err = sqlSvc.GetGameProgress(nil, "user-1", "teacher-education-2")
	require.NoError(t, err)
	require.Equal(t, 3, progress.LevelsCompleted)

	_, total, err := sqlSvc.GetWalletTransactions("user-1", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)

	// The eventual full completion still credits exactly once.
	full, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-2", 2))
	require.NoError(t, err)
	require.Equal(t, 5, full.CalmCoinsEarned)
	require.Equal(t, 5, full.Balance)
}

func TestGetProgressUnknownGame(t *testing.T) {
	gameSvc, _, sqlSvc := newGameFixture(t)

	resp, err := gameSvc.GetProgress("user-1", "teacher-education-9")
	require.NoError(t, err)
	require.Equal(t, "teacher-education-9", resp.GameID)
	require.False(t, resp.FullyCompleted)
	require.Equal(t, 0, resp.TotalCoinsEarned)

	// Reads never create rows.
	var count int64
	require.NoError(t, sqlSvc.Db().Model(&model.GameProgress{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestGetAllProgressOrderedByGameIndex(t *testing.T) {
	gameSvc, walletSvc, _ := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	_, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-40", 40))
	require.NoError(t, err)
	_, err = gameSvc.CompleteGame("user-1", completeReq("teacher-education-3", 3))
	require.NoError(t, err)

	list, err := gameSvc.GetAllProgress("user-1")
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	require.Equal(t, "teacher-education-3", list.Games[0].GameID)
	require.Equal(t, "teacher-education-40", list.Games[1].GameID)
}

// Full completion-unlock-replay-retry cycle against a single wallet.
func TestRewardLedgerScenario(t *testing.T) {
	gameSvc, walletSvc, sqlSvc := newGameFixture(t)
	openWallet(t, walletSvc, "user-1")

	first, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-2", 2))
	require.NoError(t, err)
	require.Equal(t, 5, first.Balance)

	time.Sleep(5 * time.Millisecond)

	unlock, err := gameSvc.UnlockReplay("user-1", "teacher-education-2", 2)
	require.NoError(t, err)
	require.Equal(t, 3, unlock.Balance)

	req := completeReq("teacher-education-2", 2)
	req.IsReplay = true
	replay, err := gameSvc.CompleteGame("user-1", req)
	require.NoError(t, err)
	require.Equal(t, 0, replay.CalmCoinsEarned)
	require.Equal(t, 3, replay.Balance)

	// Late duplicate of the original completion, after the replay cycle.
	dup, err := gameSvc.CompleteGame("user-1", completeReq("teacher-education-2", 2))
	require.NoError(t, err)
	require.True(t, dup.AlreadyCompleted)
	require.Equal(t, 3, dup.Balance)

	entries, total, err := sqlSvc.GetWalletTransactions("user-1", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, -2, entries[0].Amount)
	require.Equal(t, shared.ReasonReplayUnlock+"teacher-education-2", entries[0].Reason)
	require.Equal(t, 5, entries[1].Amount)
	require.Equal(t, shared.ReasonGameComplete+"teacher-education-2", entries[1].Reason)
}
