package config

import (
	"fmt"
	"strings"

	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDatabase opens the database named by cfg.DatabaseURL.
// postgres:// and postgresql:// URLs use PostgreSQL; sqlite://, file: and :memory: use SQLite.
func ConnectDatabase(cfg *Config) error {
	dialector, err := Dialector(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if !cfg.IsDevelopment() {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// SQLite allows one writer; a single connection keeps transactions serialized.
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	DB = db
	logrus.WithField("driver", dialector.Name()).Info("Database connection established successfully")
	return nil
}

// Dialector picks the gorm driver for a database URL
func Dialector(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://")), nil
	case strings.HasPrefix(databaseURL, "file:"), databaseURL == ":memory:":
		return sqlite.Open(databaseURL), nil
	case databaseURL == "":
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", databaseURL)
}

// AutoMigrate creates or updates every table the API uses
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.CreatorProfile{},
		&models.BusinessProfile{},
		&models.Request{},
		&models.Message{},
	)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
