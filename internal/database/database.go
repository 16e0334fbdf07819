package database

import (
	"fmt"

	"github.com/designdesk/task-desk-api/internal/config"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Dialector picks the GORM driver configured by DB_DRIVER.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBDSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func Connect(cfg *config.Config, log *logrus.Logger) error {
	dialector, err := Dialector(cfg)
	if err != nil {
		return err
	}

	level := logger.Warn
	if cfg.GinMode == "debug" {
		level = logger.Info
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.WithField("driver", cfg.DBDriver).Info("Database connection established")
	return nil
}

func Migrate(log *logrus.Logger) error {
	log.Info("Running database migrations...")
	err := DB.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAttachment{},
		&models.TaskComment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(DB, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	log.Info("Database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
