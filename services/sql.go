package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Vikash-Kumar001/wisestudent-sub002/model"
)

type SqlService struct {
	context.DefaultService
	db *gorm.DB

	driver   string
	database string
}

const SQL_SVC = "sql_svc"

func (ds SqlService) Id() string {
	return SQL_SVC
}

// Db Access to the raw gorm handle
func (ds SqlService) Db() *gorm.DB {
	return ds.db
}

func (ds *SqlService) Configure(ctx *context.Context) error {
	ds.driver = os.Getenv("DB_DRIVER")
	if ds.driver == "" {
		ds.driver = "postgres"
	}

	switch ds.driver {
	case "sqlite":
		ds.database = os.Getenv("DB_DATABASE")
		if ds.database == "" {
			ds.database = "wisestudent.db"
		}
	default:
		ds.database = os.Getenv("DATABASE_URL")
		if ds.database == "" {
			host := envOr("DB_HOST", "localhost")
			port := envOr("DB_PORT", "5432")
			user := envOr("DB_USER", "postgres")
			password := envOr("DB_PASSWORD", "postgres")
			dbname := envOr("DB_NAME", "wisestudent")
			sslmode := envOr("DB_SSLMODE", "disable")
			timezone := envOr("DB_TIMEZONE", "UTC")

			ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
				host, user, password, dbname, port, sslmode, timezone)
		}
	}

	return ds.DefaultService.Configure(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Start the service, open the connection and migrate any tables that have
// changed since last runtime. Postgres connections are retried with backoff
// so the service survives a slow database container.
func (ds *SqlService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ds.db, err = ds.open()
		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					break
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	if err = ds.Migrate(); err != nil {
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *SqlService) open() (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	}

	if ds.driver == "sqlite" {
		return gorm.Open(sqlite.Open(ds.database), cfg)
	}
	return gorm.Open(postgres.Open(ds.database), cfg)
}

func (ds *SqlService) Migrate() error {
	models := []interface{}{
		&model.User{},
		&model.GameProgress{},
		&model.WalletAccount{},
		&model.WalletTransaction{},
	}

	if err := ds.db.AutoMigrate(models...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}
	return nil
}

func (ds *SqlService) Shutdown() {
}

// Transaction runs fn inside a single database transaction. The progress
// update and the wallet mutation for an operation always go through here so
// they commit or roll back together.
func (ds *SqlService) Transaction(fn func(tx *gorm.DB) error) error {
	return ds.db.Transaction(fn)
}

// ==================== USER QUERIES ====================

func (ds *SqlService) CreateUser(user *model.User) error {
	return ds.db.Create(user).Error
}

func (ds *SqlService) GetUserByID(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *SqlService) GetUserByEmailOrUsername(identifier string) (*model.User, error) {
	var user model.User
	err := ds.db.Where("LOWER(email) = LOWER(?) OR LOWER(username) = LOWER(?)", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *SqlService) UpdateUserLastLogin(userID string) error {
	return ds.db.Model(&model.User{}).Where("id = ?", userID).
		Update("last_login", time.Now()).Error
}

// ==================== GAME PROGRESS QUERIES ====================

func (ds *SqlService) GetGameProgress(tx *gorm.DB, userID, gameID string) (*model.GameProgress, error) {
	if tx == nil {
		tx = ds.db
	}
	var progress model.GameProgress
	err := tx.Where("user_id = ? AND game_id = ?", userID, gameID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (ds *SqlService) GetAllGameProgress(userID string) ([]model.GameProgress, error) {
	var progress []model.GameProgress
	err := ds.db.Where("user_id = ?", userID).Order("game_index ASC").Find(&progress).Error
	return progress, err
}

func (ds *SqlService) CreateGameProgress(tx *gorm.DB, progress *model.GameProgress) error {
	if tx == nil {
		tx = ds.db
	}
	return tx.Create(progress).Error
}

func (ds *SqlService) UpdateGameProgress(tx *gorm.DB, progress *model.GameProgress) error {
	if tx == nil {
		tx = ds.db
	}
	progress.UpdatedAt = time.Now()
	return tx.Save(progress).Error
}

// ==================== WALLET QUERIES ====================

func (ds *SqlService) CreateWalletAccount(account *model.WalletAccount) error {
	return ds.db.Create(account).Error
}

func (ds *SqlService) GetWalletAccount(tx *gorm.DB, userID string) (*model.WalletAccount, error) {
	if tx == nil {
		tx = ds.db
	}
	var account model.WalletAccount
	if err := tx.Where("user_id = ?", userID).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (ds *SqlService) SaveWalletAccount(tx *gorm.DB, account *model.WalletAccount) error {
	if tx == nil {
		tx = ds.db
	}
	account.UpdatedAt = time.Now()
	return tx.Save(account).Error
}

func (ds *SqlService) CreateWalletTransaction(tx *gorm.DB, entry *model.WalletTransaction) error {
	if tx == nil {
		tx = ds.db
	}
	return tx.Create(entry).Error
}

func (ds *SqlService) GetWalletTransactions(userID string, page, limit int) ([]model.WalletTransaction, int64, error) {
	var entries []model.WalletTransaction
	var total int64

	q := ds.db.Model(&model.WalletTransaction{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error

	return entries, total, err
}

// IsDuplicateKey reports whether err came from a unique constraint. Used to
// turn a registration race into a conflict instead of a 500.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}
