package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers (sqlite, postgres)
// implement it. Repositories hang off the store rather than being passed
// around separately so a transaction can only be opened from the top.
type Store interface {
	Users() Users
	Contacts() Contacts
	RefreshTokens() RefreshTokens
	ConsumedTokens() ConsumedTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or
	// Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches the lower-cased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u. Duplicate email or username is ErrAlreadyExists,
	// decided by the unique indexes.
	CreateUser(ctx context.Context, u domain.User) error

	// MarkVerified sets verified and bumps updated_at.
	MarkVerified(ctx context.Context, id string, at time.Time) error

	// UpdateRoleByEmail changes the role and returns the updated user.
	UpdateRoleByEmail(ctx context.Context, email string, role domain.Role, at time.Time) (domain.User, error)

	UpdateAvatarURL(ctx context.Context, id, url string, at time.Time) error

	// UpdatePassword stores a new hash and records when it changed.
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error

	// IsEmpty reports whether no user exists.
	IsEmpty(ctx context.Context) (bool, error)
}

// Contacts is owner scoped throughout: a contact owned by someone else
// behaves exactly like a missing one.
type Contacts interface {
	CreateContact(ctx context.Context, c domain.Contact) error
	GetContact(ctx context.Context, ownerID, id string) (domain.Contact, error)

	// UpdateContact overwrites every mutable field of c (matched by owner and
	// id) and bumps updated_at.
	UpdateContact(ctx context.Context, c domain.Contact) error

	DeleteContact(ctx context.Context, ownerID, id string) error

	// ListContacts returns up to limit contacts with id > after, ordered by id.
	ListContacts(ctx context.Context, ownerID, after string, limit int) ([]domain.Contact, error)

	// SearchContacts is ListContacts filtered by a case-insensitive substring
	// match on first name, last name or email. An empty query matches all.
	SearchContacts(ctx context.Context, ownerID, query, after string, limit int) ([]domain.Contact, error)

	// ListContactsByBirthday returns contacts whose birthday month/day (as
	// month*100+day) is one of monthDays.
	ListContactsByBirthday(ctx context.Context, ownerID string, monthDays []int) ([]domain.Contact, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked; ErrNotFound when no such token.
	RevokeRefreshToken(ctx context.Context, hash string, at time.Time) error

	// RevokeAllUserRefreshTokens is used on password reset.
	RevokeAllUserRefreshTokens(ctx context.Context, userID string, at time.Time) error

	// DeleteExpiredRefreshTokens removes rows expired before now.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// ConsumedTokens is the ledger of redeemed single-use tokens.
type ConsumedTokens interface {
	// ConsumeToken records t; ErrAlreadyExists when its jti is already there.
	ConsumeToken(ctx context.Context, t domain.ConsumedToken) error

	DeleteExpiredConsumedTokens(ctx context.Context, now time.Time) (int64, error)
}
