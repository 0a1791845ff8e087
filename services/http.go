package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	_ "github.com/Vikash-Kumar001/wisestudent-sub002/docs"
	"github.com/Vikash-Kumar001/wisestudent-sub002/services/handlers"
	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc   *AuthService
	gameSvc   *GameService
	walletSvc *WalletService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.gameSvc = svc.Service(GAME_SVC).(*GameService)
	svc.walletSvc = svc.Service(WALLET_SVC).(*WalletService)

	app := fiber.New(fiber.Config{
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware())

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	authHandler := handlers.NewAuthHandler(svc.authSvc)
	gameHandler := handlers.NewGameHandler(svc.gameSvc)
	walletHandler := handlers.NewWalletHandler(svc.walletSvc)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	auth := v1.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	game := v1.Group("/game", svc.authSvc.RequiredAuth())
	game.Get("/progress", gameHandler.GetAllProgress)
	game.Get("/progress/:gameId", gameHandler.GetProgress)
	game.Post("/complete", gameHandler.CompleteGame)
	game.Post("/unlock-replay/:gameId", gameHandler.UnlockReplay)

	wallet := v1.Group("/wallet", svc.authSvc.RequiredAuth())
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Get("/transactions", walletHandler.GetTransactions)

	svc.server = app

	log.Printf("HTTP server listening on :%d", svc.port)
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= 500 {
			log.WithError(appErr.Err).WithField("kind", appErr.Kind).Error("Request failed")
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, fiber.Map{
			"kind": appErr.Kind,
		})
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
