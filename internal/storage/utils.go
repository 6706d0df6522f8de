package storage

import (
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"

	"github.com/joshuahsieh24/enviroGovernment/internal/log"
	"github.com/joshuahsieh24/enviroGovernment/pkg/storage"
)

// InitStore connects to postgres and applies pending migrations before
// handing the store to the caller.
func InitStore(connStr, migrationsPath string) (storage.Store, error) {
	if err := runMigrations(connStr, migrationsPath); err != nil {
		return nil, errors.Wrap(err, "running migrations")
	}
	store, err := NewPostgresStore(connStr)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	return store, nil
}

func runMigrations(connStr, migrationsPath string) error {
	logger := log.GetLogger()
	m, err := migrate.New(migrationsPath, connStr)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	logger.Infof("migrations up to date")
	return nil
}
