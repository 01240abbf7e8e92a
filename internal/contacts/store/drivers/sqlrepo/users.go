package sqlrepo

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

const userColumns = `id, email, username, password_hash, role, verified, avatar_url,
	password_changed_at, created_at, updated_at`

type userRow struct {
	ID                string         `db:"id"`
	Email             string         `db:"email"`
	Username          string         `db:"username"`
	PasswordHash      string         `db:"password_hash"`
	Role              string         `db:"role"`
	Verified          bool           `db:"verified"`
	AvatarURL         sql.NullString `db:"avatar_url"`
	PasswordChangedAt sql.NullTime   `db:"password_changed_at"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r userRow) domain() domain.User {
	u := domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		Verified:     r.Verified,
		AvatarURL:    r.AvatarURL.String,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.PasswordChangedAt.Valid {
		t := r.PasswordChangedAt.Time.UTC()
		u.PasswordChangedAt = &t
	}
	return u
}

type usersRepo struct {
	ext sqlx.ExtContext
	d   Dialect
}

func (r *usersRepo) get(ctx context.Context, where string, arg any) (domain.User, error) {
	var row userRow
	q := r.ext.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where)
	if err := sqlx.GetContext(ctx, r.ext, &row, q, arg); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.domain(), nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.get(ctx, `email = ?`, strings.ToLower(email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	var changed sql.NullTime
	if u.PasswordChangedAt != nil {
		changed = sql.NullTime{Time: u.PasswordChangedAt.UTC(), Valid: true}
	}

	_, err := r.ext.ExecContext(ctx, r.ext.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, strings.ToLower(u.Email), u.Username, u.PasswordHash, string(u.Role), u.Verified,
		nullString(u.AvatarURL), changed, u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return r.d.mapConflict(err)
}

func (r *usersRepo) MarkVerified(ctx context.Context, id string, at time.Time) error {
	return requireOne(r.ext.ExecContext(ctx,
		r.ext.Rebind(`UPDATE users SET verified = ?, updated_at = ? WHERE id = ?`),
		true, at.UTC(), id,
	))
}

func (r *usersRepo) UpdateRoleByEmail(
	ctx context.Context,
	email string,
	role domain.Role,
	at time.Time,
) (domain.User, error) {
	email = strings.ToLower(email)
	err := requireOne(r.ext.ExecContext(ctx,
		r.ext.Rebind(`UPDATE users SET role = ?, updated_at = ? WHERE email = ?`),
		string(role), at.UTC(), email,
	))
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUserByEmail(ctx, email)
}

func (r *usersRepo) UpdateAvatarURL(ctx context.Context, id, url string, at time.Time) error {
	return requireOne(r.ext.ExecContext(ctx,
		r.ext.Rebind(`UPDATE users SET avatar_url = ?, updated_at = ? WHERE id = ?`),
		nullString(url), at.UTC(), id,
	))
}

func (r *usersRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	return requireOne(r.ext.ExecContext(ctx,
		r.ext.Rebind(`UPDATE users SET password_hash = ?, password_changed_at = ?, updated_at = ? WHERE id = ?`),
		hash, at.UTC(), at.UTC(), id,
	))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.ext, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return false, err
	}
	return n == 0, nil
}
