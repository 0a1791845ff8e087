package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Vikash-Kumar001/wisestudent-sub002/dto"
	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

type GameHandler struct {
	gameSvc GameServiceInterface
}

func NewGameHandler(gameSvc GameServiceInterface) *GameHandler {
	return &GameHandler{
		gameSvc: gameSvc,
	}
}

// @Summary Get game progress
// @Description Get progress for a single game; returns zero-value defaults for a game never attempted
// @Tags game
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.GameProgressResponse}
// @Router /api/v1/game/progress/{gameId} [get]
func (h *GameHandler) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	gameID := c.Params("gameId")

	progress, err := h.gameSvc.GetProgress(userID, gameID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary List game progress
// @Description Get progress for every game the user has attempted
// @Tags game
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.GameProgressListResponse}
// @Router /api/v1/game/progress [get]
func (h *GameHandler) GetAllProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	progress, err := h.gameSvc.GetAllProgress(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary Complete a game
// @Description Record a game completion; credits the tiered CalmCoins reward on first completion only
// @Tags game
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param completeRequest body dto.CompleteGameRequest true "Completion report"
// @Success 200 {object} shared.Response{data=dto.CompleteGameResponse}
// @Router /api/v1/game/complete [post]
func (h *GameHandler) CompleteGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CompleteGameRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.gameSvc.CompleteGame(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Unlock replay
// @Description Pay the tiered cost to re-enable play on a completed game
// @Tags game
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param gameId path string true "Game ID"
// @Param unlockRequest body dto.UnlockReplayRequest true "Unlock request"
// @Success 200 {object} shared.Response{data=dto.UnlockReplayResponse}
// @Router /api/v1/game/unlock-replay/{gameId} [post]
func (h *GameHandler) UnlockReplay(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	gameID := c.Params("gameId")

	var req dto.UnlockReplayRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.gameSvc.UnlockReplay(userID, gameID, req.GameIndex)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}
