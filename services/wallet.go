// services/wallet.go
package services

import (
	"fmt"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Vikash-Kumar001/wisestudent-sub002/dto"
	"github.com/Vikash-Kumar001/wisestudent-sub002/model"
	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

// WalletService owns the CalmCoins balance. The only write paths are Credit
// and Debit; both append a transaction row with a reason code so the balance
// can always be reconstructed from history.
type WalletService struct {
	context.DefaultService

	sqlSvc *SqlService
}

const WALLET_SVC = "wallet_svc"

func (svc WalletService) Id() string {
	return WALLET_SVC
}

func (svc *WalletService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *WalletService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	return nil
}

// CreateAccount opens the wallet for a new user. Called once at registration.
func (svc *WalletService) CreateAccount(userID string) (*model.WalletAccount, error) {
	accountID, _ := uuid.NewV7()
	account := &model.WalletAccount{
		ID:        accountID.String(),
		UserID:    userID,
		Balance:   0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := svc.sqlSvc.CreateWalletAccount(account); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create wallet account")
	}
	return account, nil
}

// Credit adds amount to the user's balance inside the caller's transaction.
// A zero or negative amount is a programming error, not a user-facing failure.
func (svc *WalletService) Credit(tx *gorm.DB, userID string, amount int, reason string) (*model.WalletAccount, error) {
	if amount <= 0 {
		return nil, shared.NewInvalidAmountError(
			fmt.Errorf("credit of %d for %s", amount, reason), "Credit amount must be positive")
	}

	account, err := svc.sqlSvc.GetWalletAccount(tx, userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load wallet account")
	}

	account.Balance += amount
	if err := svc.sqlSvc.SaveWalletAccount(tx, account); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update wallet balance")
	}

	if err := svc.appendTransaction(tx, userID, amount, account.Balance, reason); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
		"reason":  reason,
		"balance": account.Balance,
	}).Info("Wallet credited")

	return account, nil
}

// Debit subtracts amount from the user's balance inside the caller's
// transaction. Fails with InsufficientBalance and no mutation when the
// balance does not cover the amount.
func (svc *WalletService) Debit(tx *gorm.DB, userID string, amount int, reason string) (*model.WalletAccount, error) {
	if amount <= 0 {
		return nil, shared.NewInvalidAmountError(
			fmt.Errorf("debit of %d for %s", amount, reason), "Debit amount must be positive")
	}

	account, err := svc.sqlSvc.GetWalletAccount(tx, userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load wallet account")
	}

	if account.Balance < amount {
		return nil, shared.NewInsufficientBalanceError(
			fmt.Errorf("balance %d < %d for %s", account.Balance, amount, reason))
	}

	account.Balance -= amount
	if err := svc.sqlSvc.SaveWalletAccount(tx, account); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update wallet balance")
	}

	if err := svc.appendTransaction(tx, userID, -amount, account.Balance, reason); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
		"reason":  reason,
		"balance": account.Balance,
	}).Info("Wallet debited")

	return account, nil
}

func (svc *WalletService) appendTransaction(tx *gorm.DB, userID string, amount, balanceAfter int, reason string) error {
	entryID, _ := uuid.NewV7()
	entry := &model.WalletTransaction{
		ID:           entryID.String(),
		UserID:       userID,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}

	if err := svc.sqlSvc.CreateWalletTransaction(tx, entry); err != nil {
		return shared.NewInternalError(err, "Failed to record wallet transaction")
	}
	return nil
}

// ==================== READ METHODS ====================

func (svc *WalletService) GetWallet(userID string) (*dto.WalletResponse, error) {
	account, err := svc.sqlSvc.GetWalletAccount(nil, userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Wallet account not found")
	}

	return &dto.WalletResponse{
		UserID:  userID,
		Balance: account.Balance,
	}, nil
}

func (svc *WalletService) GetHistory(userID string, page, limit int) (*dto.WalletHistoryResponse, error) {
	entries, total, err := svc.sqlSvc.GetWalletTransactions(userID, page, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to get wallet history")
	}

	transactions := make([]dto.WalletTransactionResponse, len(entries))
	for i, entry := range entries {
		transactions[i] = dto.WalletTransactionResponse{
			ID:           entry.ID,
			Amount:       entry.Amount,
			BalanceAfter: entry.BalanceAfter,
			Reason:       entry.Reason,
			CreatedAt:    entry.CreatedAt,
		}
	}

	return &dto.WalletHistoryResponse{
		Transactions: transactions,
		Total:        int(total),
		Page:         page,
		Limit:        limit,
	}, nil
}
