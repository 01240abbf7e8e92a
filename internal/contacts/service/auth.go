package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/cryptox"
	"github.com/aussiebroadwan/contacts/pkg/idx"
	"github.com/aussiebroadwan/contacts/pkg/jwtx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// RegisterInput is a self-service sign up.
type RegisterInput struct {
	Email    string `field:"email"    validate:"required,email,max=254"`
	Username string `field:"username" validate:"required,min=3,max=32,username"`
	Password string `field:"password" validate:"required,min=8,max=128"`
}

type newPasswordInput struct {
	Password string `field:"new_password" validate:"required,min=8,max=128"`
}

// AuthService owns the account lifecycle: registration, email
// verification, login, refresh/logout and password reset.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
	Mail   EmailSender
	Cache  *ProfileCache

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration
	ResetTTL   time.Duration

	// VerifyURL and ResetURL are the link bases mailed to users; the token
	// is appended as the "token" query parameter.
	VerifyURL string
	ResetURL  string

	Now func() time.Time
}

// Register creates an unverified user and mails a verification link. The
// insert and the dispatch share a transaction, so a failed dispatch leaves
// no account behind.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrConflict
			}
			return err
		}
		return s.sendVerification(ctx, u)
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

// VerifyEmail redeems a verification token. Verification tokens are not
// tracked, so replaying one before it expires is a successful no-op.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.Tokens.Verify(token, jwtx.PurposeEmailVerification)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown subject", ErrUnauthenticated)
		}
		return err
	}
	if u.Verified {
		return nil
	}

	if err := s.Store.Users().MarkVerified(ctx, u.ID, s.now()); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, u.ID)

	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", u.ID))
	return nil
}

// ResendVerification mails a fresh verification link. Unknown and already
// verified addresses succeed silently so the endpoint does not reveal which
// accounts exist.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.Verified {
		return nil
	}
	return s.sendVerification(ctx, u)
}

var verifyPassword = cryptox.VerifyPassword

// unknownUserHash is checked against when a login names no account, so
// the reply costs one argon2 run either way.
var unknownUserHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("unknown-user")
	if err != nil {
		panic(fmt.Sprintf("service: hash placeholder password: %v", err))
	}
	return h
})

// Login exchanges credentials for a session token and a refresh token.
// Only verified users may log in. The freshly loaded profile overwrites
// the cache entry, so a new login always reflects the stored role.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = verifyPassword(password, unknownUserHash())
			l.Info("login for unknown email")
			return domain.TokenPair{}, ErrUnauthenticated
		}
		return domain.TokenPair{}, err
	}

	if err := verifyPassword(password, u.PasswordHash); err != nil {
		l.Info("login with wrong password", slog.String("user_id", u.ID))
		return domain.TokenPair{}, ErrUnauthenticated
	}
	if !u.Verified {
		return domain.TokenPair{}, ErrNotVerified
	}

	pair, err := s.issuePair(ctx, s.Store.RefreshTokens(), u.ID, s.now())
	if err != nil {
		return domain.TokenPair{}, err
	}
	s.Cache.Set(ctx, u.Profile())

	l.Info("user logged in", slog.String("user_id", u.ID))
	return pair, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued in the same transaction.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, ErrUnauthenticated
	}
	now := s.now()
	hash := cryptox.HashOpaqueToken(refreshToken)

	var pair domain.TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnauthenticated
			}
			return err
		}
		if rt.Revoked || !now.Before(rt.ExpiresAt) {
			return ErrUnauthenticated
		}

		if _, err := tx.Users().GetUserByID(ctx, rt.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnauthenticated
			}
			return err
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, hash, now); err != nil {
			return err
		}

		pair, err = s.issuePair(ctx, tx.RefreshTokens(), rt.UserID, now)
		return err
	})
	if err != nil {
		return domain.TokenPair{}, err
	}
	return pair, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.HashOpaqueToken(refreshToken), s.now())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// RequestPasswordReset mails a reset link. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	tok, err := s.Tokens.Issue(u.ID, jwtx.PurposePasswordReset, s.ResetTTL)
	if err != nil {
		return err
	}
	if err := s.Mail.SendPasswordReset(ctx, u.Email, withToken(s.ResetURL, tok)); err != nil {
		l.Error("failed to send password reset email", slog.String("user_id", u.ID), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrEmailDispatch, err)
	}

	l.Info("password reset requested", slog.String("user_id", u.ID))
	return nil
}

// ResetPassword redeems a reset token exactly once. It replaces the hash,
// revokes every refresh token of the user and drops the cached profile;
// session tokens issued before the change stop authenticating.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validateInput(newPasswordInput{Password: newPassword}); err != nil {
		return err
	}

	claims, err := s.Tokens.Verify(token, jwtx.PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if claims.ID == "" {
		return fmt.Errorf("%w: reset token without jti", ErrUnauthenticated)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, claims.Subject); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnauthenticated
			}
			return err
		}

		err := tx.ConsumedTokens().ConsumeToken(ctx, domain.ConsumedToken{
			JTI:        claims.ID,
			Purpose:    claims.Purpose,
			UserID:     claims.Subject,
			ExpiresAt:  claims.ExpiresAtTime(),
			ConsumedAt: now,
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("%w: reset token already used", ErrUnauthenticated)
			}
			return err
		}

		if err := tx.Users().UpdatePassword(ctx, claims.Subject, hash, now); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, claims.Subject, now)
	})
	if err != nil {
		return err
	}

	s.Cache.Invalidate(ctx, claims.Subject)
	slogx.FromContext(ctx).Info("password reset", slog.String("user_id", claims.Subject))
	return nil
}

func (s *AuthService) sendVerification(ctx context.Context, u domain.User) error {
	tok, err := s.Tokens.Issue(u.ID, jwtx.PurposeEmailVerification, s.VerifyTTL)
	if err != nil {
		return err
	}
	if err := s.Mail.SendVerification(ctx, u.Email, withToken(s.VerifyURL, tok)); err != nil {
		slogx.FromContext(ctx).Error("failed to send verification email",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", ErrEmailDispatch, err)
	}
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, repo store.RefreshTokens, userID string, now time.Time) (domain.TokenPair, error) {
	access, err := s.Tokens.Issue(userID, jwtx.PurposeSession, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	opaque, err := cryptox.NewOpaqueToken()
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = repo.CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.HashOpaqueToken(opaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: opaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func (s *AuthService) now() time.Time { return clock(s.Now) }

// withToken appends token to base as the "token" query parameter.
func withToken(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
