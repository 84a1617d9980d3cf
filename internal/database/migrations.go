package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// ApplyMigrations brings the note archive schema up to date from the SQL
// files under migrationsPath. An already-current schema is not an error.
func ApplyMigrations(databaseURL, migrationsPath string, logger *logrus.Logger) error {
	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("Schema already up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}

	if version, dirty, err := m.Version(); err == nil {
		logger.WithFields(logrus.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("Schema migrated")
	}
	return nil
}

func closeMigrate(m *migrate.Migrate, logger *logrus.Logger) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.WithError(sourceErr).Warn("Closing migration source failed")
	}
	if dbErr != nil {
		logger.WithError(dbErr).Warn("Closing migration database failed")
	}
}
