package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/jwtx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// Guard resolves session tokens into principals.
type Guard struct {
	Tokens *TokenService
	Store  store.Store
	Cache  *ProfileCache
}

// Authenticate verifies a session token and resolves its subject, first
// from the profile cache and then from the store (populating the cache).
// Every failure is ErrUnauthenticated wrapping the cause.
func (g *Guard) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, ErrUnauthenticated
	}

	claims, err := g.Tokens.Verify(token, jwtx.PurposeSession)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	profile, err := g.resolve(ctx, claims.Subject)
	if err != nil {
		return domain.Principal{}, err
	}

	// Sessions minted before the last password change are dead. iat has
	// second precision, so compare at that granularity.
	if profile.PasswordChangedAt != nil &&
		claims.IssuedAtTime().Before(profile.PasswordChangedAt.Truncate(time.Second)) {
		return domain.Principal{}, fmt.Errorf("%w: token predates password change", ErrUnauthenticated)
	}

	return domain.NewPrincipal(profile), nil
}

func (g *Guard) resolve(ctx context.Context, userID string) (domain.Profile, error) {
	if p, ok := g.Cache.Get(ctx, userID); ok {
		return p, nil
	}

	u, err := g.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, fmt.Errorf("%w: unknown subject", ErrUnauthenticated)
		}
		slogx.FromContext(ctx).Error("failed to load user", slog.String("user_id", userID), slog.Any("error", err))
		return domain.Profile{}, err
	}

	p := u.Profile()
	g.Cache.Set(ctx, p)
	return p, nil
}
