package sqlrepo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

type refreshTokenRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type refreshTokensRepo struct {
	ext sqlx.ExtContext
	d   Dialect
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.ext.ExecContext(ctx, r.ext.Rebind(`
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt.UTC(), t.Revoked, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	return r.d.mapConflict(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var row refreshTokenRow
	q := r.ext.Rebind(`
		SELECT id, user_id, token_hash, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens WHERE token_hash = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &row, q, hash); err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return domain.RefreshToken{
		ID:        row.ID,
		UserID:    row.UserID,
		TokenHash: row.TokenHash,
		ExpiresAt: row.ExpiresAt.UTC(),
		Revoked:   row.Revoked,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string, at time.Time) error {
	return requireOne(r.ext.ExecContext(ctx,
		r.ext.Rebind(`UPDATE refresh_tokens SET revoked = ?, updated_at = ? WHERE token_hash = ?`),
		true, at.UTC(), hash,
	))
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(ctx context.Context, userID string, at time.Time) error {
	_, err := r.ext.ExecContext(ctx,
		r.ext.Rebind(`UPDATE refresh_tokens SET revoked = ?, updated_at = ? WHERE user_id = ? AND revoked = ?`),
		true, at.UTC(), userID, false,
	)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.ext.ExecContext(ctx,
		r.ext.Rebind(`DELETE FROM refresh_tokens WHERE expires_at < ?`), now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type consumedTokensRepo struct {
	ext sqlx.ExtContext
	d   Dialect
}

func (r *consumedTokensRepo) ConsumeToken(ctx context.Context, t domain.ConsumedToken) error {
	_, err := r.ext.ExecContext(ctx, r.ext.Rebind(`
		INSERT INTO consumed_tokens (jti, purpose, user_id, expires_at, consumed_at)
		VALUES (?, ?, ?, ?, ?)`),
		t.JTI, t.Purpose, t.UserID, t.ExpiresAt.UTC(), t.ConsumedAt.UTC(),
	)
	return r.d.mapConflict(err)
}

func (r *consumedTokensRepo) DeleteExpiredConsumedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.ext.ExecContext(ctx,
		r.ext.Rebind(`DELETE FROM consumed_tokens WHERE expires_at < ?`), now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
