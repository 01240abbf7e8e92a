package postgres

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aussiebroadwan/contacts/internal/contacts/store/drivers/postgres/migrations"
)

// ApplyMigrations brings the schema up to date from the embedded migrations.
func (s *Store) ApplyMigrations() error {
	driver, err := pgxmigrate.WithInstance(s.DB().DB, &pgxmigrate.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
