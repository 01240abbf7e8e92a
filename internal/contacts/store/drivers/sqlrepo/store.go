// Package sqlrepo holds the SQL repositories shared by the sqlite and
// postgres drivers. Queries are written with '?' placeholders and rebound
// for the connection's driver.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/contacts/internal/contacts/store"
)

// Dialect is what differs between the drivers at the query level.
type Dialect struct {
	// IsUniqueViolation reports whether err is a unique/primary key conflict.
	IsUniqueViolation func(error) bool

	// Lower names the SQL function that case-folds a column for search. It
	// must fold the same way as strings.ToLower; empty means LOWER.
	Lower string
}

func (d Dialect) lower() string {
	if d.Lower == "" {
		return "LOWER"
	}
	return d.Lower
}

// Store implements everything of store.Store except ApplyMigrations, which
// each driver provides with its own embedded migrations.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

func New(db *sqlx.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d}
}

// DB exposes the pool for migrations.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Users() store.Users       { return &usersRepo{ext: s.db, d: s.dialect} }
func (s *Store) Contacts() store.Contacts { return &contactsRepo{ext: s.db, d: s.dialect} }
func (s *Store) RefreshTokens() store.RefreshTokens {
	return &refreshTokensRepo{ext: s.db, d: s.dialect}
}
func (s *Store) ConsumedTokens() store.ConsumedTokens {
	return &consumedTokensRepo{ext: s.db, d: s.dialect}
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, dialect: s.dialect}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type txStore struct {
	tx      *sqlx.Tx
	dialect Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                         { return nil } // the pool outlives the tx
func (t *txStore) Ping(context.Context) error           { return nil }
func (t *txStore) ApplyMigrations() error               { return nil } // applied before any tx is opened
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users       { return &usersRepo{ext: t.tx, d: t.dialect} }
func (t *txStore) Contacts() store.Contacts { return &contactsRepo{ext: t.tx, d: t.dialect} }
func (t *txStore) RefreshTokens() store.RefreshTokens {
	return &refreshTokensRepo{ext: t.tx, d: t.dialect}
}
func (t *txStore) ConsumedTokens() store.ConsumedTokens {
	return &consumedTokensRepo{ext: t.tx, d: t.dialect}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (d Dialect) mapConflict(err error) error {
	if err != nil && d.IsUniqueViolation != nil && d.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// requireOne turns an UPDATE/DELETE that matched nothing into ErrNotFound.
func requireOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
