package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/models"
)

var DB *gorm.DB

type Config struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	SSLMode  string
	TimeZone string
}

// ConnectPostgres opens the database with retries and runs migrations.
// TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey, which the notification manager relies on.
func ConnectPostgres(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode, cfg.TimeZone,
	)

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			sqlDB, poolErr := db.DB()
			if poolErr == nil {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
			}

			logger.Info("Connected to PostgreSQL successfully")

			if err := migrate(db); err != nil {
				return nil, err
			}
			return db, nil
		}

		logger.Warn("DB connection failed, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(time.Duration(i+1) * 2 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Client{},
		&models.Supplier{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.StockNotification{},
		&models.Return{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}

	// At most one unresolved notification per (product, kind). AutoMigrate
	// cannot express a partial index, so it is created here.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_open_stock_notification
		 ON stock_notifications (product_id, kind) WHERE NOT resolved`,
	).Error; err != nil {
		return fmt.Errorf("failed to create notification dedup index: %w", err)
	}
	return nil
}

func Connect(cfg Config, logger *zap.Logger) error {
	var err error
	DB, err = ConnectPostgres(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", zap.Error(err))
		return err
	}
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
