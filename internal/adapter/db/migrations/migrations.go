// Package migrations applies the embedded PostgreSQL schema migrations.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

// Action is a migration command.
type Action string

const (
	Up      Action = "up"
	Down    Action = "down"
	Version Action = "version"
)

// ParseAction validates a migration command name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Up, Down, Version:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported migration action %q (want up, down or version)", s)
	}
}

// Run executes action against the PostgreSQL database at databaseURL.
func Run(databaseURL string, action Action, log *zap.Logger) error {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn("failed to close migrate instance", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	switch action {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	case Version:
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			log.Info("no migration applied")
			return nil
		}
		if verr != nil {
			return verr
		}
		log.Info("migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migration to apply", zap.String("action", string(action)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", action, err)
	}

	log.Info("migration completed", zap.String("action", string(action)))
	return nil
}
