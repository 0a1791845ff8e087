package dto

import "time"

type WalletResponse struct {
	UserID  string `json:"user_id"`
	Balance int    `json:"balance"`
}

type WalletTransactionResponse struct {
	ID           string    `json:"id"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

type WalletHistoryResponse struct {
	Transactions []WalletTransactionResponse `json:"transactions"`
	Total        int                         `json:"total"`
	Page         int                         `json:"page"`
	Limit        int                         `json:"limit"`
}
