package repositories

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"filedepot/internal/config"
	"filedepot/internal/models"
)

// Connect opens the metadata database for the configured dialect and runs
// migrations. TranslateError is enabled so unique-constraint violations
// surface as gorm.ErrDuplicatedKey regardless of dialect; the tree layer
// relies on that for race resolution.
func Connect(cfg config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DatabaseDialect {
	case "sqlite", "sqlite3":
		db, err = gorm.Open(sqlite.Open(cfg.DatabaseDSN), gormConfig)
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", cfg.DatabaseDialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	if cfg.DatabaseDialect == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
	} else {
		// SQLite handles a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for all core tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.Session{},
		&models.Setting{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
