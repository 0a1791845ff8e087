// services/auth.go
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Vikash-Kumar001/wisestudent-sub002/dto"
	"github.com/Vikash-Kumar001/wisestudent-sub002/model"
	"github.com/Vikash-Kumar001/wisestudent-sub002/shared"
)

type AuthService struct {
	context.DefaultService

	sqlSvc    *SqlService
	jwtSvc    *JWTService
	walletSvc *WalletService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.walletSvc = svc.Service(WALLET_SVC).(*WalletService)
	return nil
}

// Register creates the account and opens its CalmCoins wallet. The wallet
// row exists from day one so completion credits never race account creation.
func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if _, err := svc.sqlSvc.GetUserByEmailOrUsername(req.Email); err == nil {
		return nil, shared.NewConflictError(errors.New("email taken"), "Email is already registered")
	}
	if _, err := svc.sqlSvc.GetUserByEmailOrUsername(req.Username); err == nil {
		return nil, shared.NewConflictError(errors.New("username taken"), "Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	role := req.Role
	if role == "" {
		role = shared.GameTypeParent
	}

	userID, _ := uuid.NewV7()
	user := &model.User{
		ID:        userID.String(),
		Email:     strings.ToLower(req.Email),
		Username:  req.Username,
		Password:  string(hash),
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := svc.sqlSvc.CreateUser(user); err != nil {
		if IsDuplicateKey(err) {
			return nil, shared.NewConflictError(err, "Email or username is already taken")
		}
		return nil, shared.NewInternalError(err, "Failed to create user")
	}

	account, err := svc.walletSvc.CreateAccount(user.ID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		Balance:  account.Balance,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.sqlSvc.GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
		}
		return nil, shared.NewInternalError(err, "Failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
	}

	tokenPair, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	if err := svc.sqlSvc.UpdateUserLastLogin(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return &dto.LoginResponse{
		UserID:      user.ID,
		Username:    user.Username,
		TokenPair:   *tokenPair,
		LastLoginAt: time.Now(),
	}, nil
}

// RequiredAuth guards the game and wallet routes; the verified user id ends
// up in c.Locals under shared.UserID.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if userID == "" {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}
