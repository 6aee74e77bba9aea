package config

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anonto42/nano-blog/internal/models"
)

// DB holds the database connection
type DB struct {
	Postgres *gorm.DB
	log      *zap.Logger
}

// InitDB connects to PostgreSQL and migrates the blog schema
func InitDB(cfg *Config, log *zap.Logger) (*DB, error) {
	level := logger.Warn
	if cfg.IsProduction() {
		level = logger.Error
	}
	postgresDB, err := gorm.Open(postgres.Open(cfg.PostgresUrl), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Ping the database to verify connection
	sqlDB, err := postgresDB.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	log.Info("connected to PostgreSQL")

	if err := Migrate(postgresDB); err != nil {
		return nil, fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Info("auto-migrations completed")

	return &DB{Postgres: postgresDB, log: log}, nil
}

// Migrate creates or updates the posts and comments tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Post{}, &models.Comment{})
}

// CloseDB closes the database connection
func (db *DB) CloseDB() {
	if db.Postgres == nil {
		return
	}
	sqlDB, err := db.Postgres.DB()
	if err != nil {
		db.log.Error("getting SQL DB from GORM", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		db.log.Error("closing PostgreSQL connection", zap.Error(err))
		return
	}
	db.log.Info("PostgreSQL connection closed")
}
