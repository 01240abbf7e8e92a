// Package postgres is the store driver for PostgreSQL, through the pgx
// database/sql adapter.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/contacts/internal/contacts/store/drivers/sqlrepo"
)

// uniqueViolation is SQLSTATE unique_violation.
const uniqueViolation = "23505"

type Store struct {
	*sqlrepo.Store
}

// NewStore connects to url (postgres://...) and checks the connection.
func NewStore(ctx context.Context, url string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return NewFromDB(db), nil
}

// NewFromDB wraps an already opened pool, e.g. one backed by sqlmock.
func NewFromDB(db *sqlx.DB) *Store {
	return &Store{Store: sqlrepo.New(db, sqlrepo.Dialect{IsUniqueViolation: isUniqueViolation})}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
