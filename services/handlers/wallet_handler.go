package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

type WalletHandler struct {
	walletSvc WalletServiceInterface
}

func NewWalletHandler(walletSvc WalletServiceInterface) *WalletHandler {
	return &WalletHandler{
		walletSvc: walletSvc,
	}
}

// @Summary Get wallet
// @Description Get the user's CalmCoins balance
// @Tags wallet
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.WalletResponse}
// @Router /api/v1/wallet [get]
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	wallet, err := h.walletSvc.GetWallet(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", wallet)
}

// @Summary Get wallet transactions
// @Description Get the append-only CalmCoins transaction history
// @Tags wallet
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} shared.Response{data=dto.WalletHistoryResponse}
// @Router /api/v1/wallet/transactions [get]
func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := h.walletSvc.GetHistory(userID, page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", history)
}
