package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"user-crud-service/internal/adapter/db/postgres"
	"user-crud-service/internal/config"
	"user-crud-service/pkg/logger"
)

const sqliteScheme = "sqlite://"

// IsSQLite reports whether the database URL selects the embedded SQLite driver.
func IsSQLite(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, sqliteScheme)
}

func dialector(databaseURL string) (gorm.Dialector, error) {
	switch {
	case IsSQLite(databaseURL):
		return sqlite.Open(strings.TrimPrefix(databaseURL, sqliteScheme)), nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return pgdriver.Open(databaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme (want postgres://, postgresql:// or sqlite://)")
	}
}

// NewDatabase opens the record store pool described by cfg. An unreachable
// database is logged as a warning; requests fail until it comes back.
// SQLite databases get the users table created from the gorm model.
func NewDatabase(ctx context.Context, cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	dial, err := dialector(cfg.DB.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:               logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level),
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpen, maxIdle := cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns
	if IsSQLite(cfg.DB.URL) {
		// SQLite allows one writer, and each connection to :memory: is a separate database
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DB.ConnMaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DB.PingTimeoutSeconds)*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		l.Warn("database is not reachable, continuing without it", zap.Error(err))
	} else {
		l.Info("database connected successfully",
			zap.Int("max_open_conns", maxOpen),
			zap.Int("max_idle_conns", maxIdle),
			zap.Int("conn_max_lifetime_seconds", cfg.DB.ConnMaxLifetime),
			zap.Int("conn_max_idle_time_seconds", cfg.DB.ConnMaxIdleTime),
		)
	}

	if IsSQLite(cfg.DB.URL) {
		if err := postgres.AutoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}

	return db, nil
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
