// Package sqlite is the default store driver, backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aussiebroadwan/contacts/internal/contacts/store/drivers/sqlrepo"
)

// lowerFunc folds text like strings.ToLower. SQLite's built-in LOWER only
// folds ASCII.
const lowerFunc = "unicode_lower"

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	err := sqlite.RegisterDeterministicScalarFunction(lowerFunc, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
	if err != nil {
		panic(fmt.Sprintf("sqlite: register %s: %v", lowerFunc, err))
	}
}

// pragmas are applied by modernc on every new connection.
const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

type Store struct {
	*sqlrepo.Store
}

// NewStore opens the database file at path (":memory:" for tests) with WAL,
// a busy timeout and foreign keys enforced. path may be a plain file name or
// a "file:" URI that already carries query parameters.
func NewStore(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}

	if path == ":memory:" {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{Store: sqlrepo.New(db, sqlrepo.Dialect{
		IsUniqueViolation: isUniqueViolation,
		Lower:             lowerFunc,
	})}, nil
}

func dsn(path string) string {
	switch {
	case path == ":memory:":
		path = "file::memory:"
	case !strings.HasPrefix(path, "file:"):
		path = "file:" + path
	}
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
