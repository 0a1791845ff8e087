package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

func newWalletFixture(t *testing.T) (*WalletService, *SqlService) {
	t.Helper()

	sqlSvc := newTestSql(t)
	walletSvc := &WalletService{sqlSvc: sqlSvc}
	return walletSvc, sqlSvc
}

func TestCreditAndDebit(t *testing.T) {
	walletSvc, _ := newWalletFixture(t)
	openWallet(t, walletSvc, "user-1")

	account, err := walletSvc.Credit(nil, "user-1", 10, shared.ReasonGameComplete+"game-a")
	require.NoError(t, err)
	require.Equal(t, 10, account.Balance)

	time.Sleep(5 * time.Millisecond)

	account, err = walletSvc.Debit(nil, "user-1", 4, shared.ReasonReplayUnlock+"game-a")
	require.NoError(t, err)
	require.Equal(t, 6, account.Balance)

	history, err := walletSvc.GetHistory("user-1", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, history.Total)

	// Newest first; every entry carries the running balance and reason.
	require.Equal(t, -4, history.Transactions[0].Amount)
	require.Equal(t, 6, history.Transactions[0].BalanceAfter)
	require.Equal(t, shared.ReasonReplayUnlock+"game-a", history.Transactions[0].Reason)

	require.Equal(t, 10, history.Transactions[1].Amount)
	require.Equal(t, 10, history.Transactions[1].BalanceAfter)
	require.Equal(t, shared.ReasonGameComplete+"game-a", history.Transactions[1].Reason)
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	walletSvc, _ := newWalletFixture(t)
	openWallet(t, walletSvc, "user-1")

	for _, amount := range []int{0, -5} {
		_, err := walletSvc.Credit(nil, "user-1", amount, "credit:test")
		requireKind(t, err, shared.KindInvalidAmount)
	}

	wallet, err := walletSvc.GetWallet("user-1")
	require.NoError(t, err)
	require.Equal(t, 0, wallet.Balance)
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	walletSvc, _ := newWalletFixture(t)
	openWallet(t, walletSvc, "user-1")

	for _, amount := range []int{0, -5} {
		_, err := walletSvc.Debit(nil, "user-1", amount, "debit:test")
		requireKind(t, err, shared.KindInvalidAmount)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	walletSvc, sqlSvc := newWalletFixture(t)
	openWallet(t, walletSvc, "user-1")

	_, err := walletSvc.Credit(nil, "user-1", 3, shared.ReasonGameComplete+"game-a")
	require.NoError(t, err)

	_, err = walletSvc.Debit(nil, "user-1", 4, shared.ReasonReplayUnlock+"game-a")
	requireKind(t, err, shared.KindInsufficientBalance)

	// The failed debit leaves no trace.
	wallet, err := walletSvc.GetWallet("user-1")
	require.NoError(t, err)
	require.Equal(t, 3, wallet.Balance)

	_, total, err := sqlSvc.GetWalletTransactions("user-1", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestGetWalletUnknownUser(t *testing.T) {
	walletSvc, _ := newWalletFixture(t)

	_, err := walletSvc.GetWallet("nobody")
	requireKind(t, err, shared.KindNotFound)
}

func TestGetHistoryPagination(t *testing.T) {
	walletSvc, _ := newWalletFixture(t)
	openWallet(t, walletSvc, "user-1")

	for i := 0; i < 3; i++ {
		_, err := walletSvc.Credit(nil, "user-1", 5, shared.ReasonGameComplete+"game-a")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	page1, err := walletSvc.GetHistory("user-1", 1, 2)
	require.NoError(t, err)
	require.Equal(t, 3, page1.Total)
	require.Len(t, page1.Transactions, 2)

	page2, err := walletSvc.GetHistory("user-1", 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, page2.Total)
	require.Len(t, page2.Transactions, 1)
}
