package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/pkg/cachex"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// ProfileCache fronts profile lookups with a TTL cache (cache-aside). A
// cached profile may lag the store by up to TTL; nothing refreshes it early
// except an explicit Invalidate.
//
// Cache failures never fail a request: they are logged and treated as a
// miss so the store stays the source of truth. A nil Cache disables caching.
type ProfileCache struct {
	Cache cachex.Cache
	TTL   time.Duration
}

func profileKey(userID string) string { return "user:" + userID }

// Get returns the cached profile for userID, if present and decodable.
func (c *ProfileCache) Get(ctx context.Context, userID string) (domain.Profile, bool) {
	if c == nil || c.Cache == nil {
		return domain.Profile{}, false
	}
	l := slogx.FromContext(ctx)

	raw, ok, err := c.Cache.Get(ctx, profileKey(userID))
	if err != nil {
		l.Warn("profile cache read failed", slog.String("user_id", userID), slog.Any("error", err))
		return domain.Profile{}, false
	}
	if !ok {
		return domain.Profile{}, false
	}

	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		l.Warn("discarding undecodable cached profile", slog.String("user_id", userID), slog.Any("error", err))
		return domain.Profile{}, false
	}
	return p, true
}

// Set stores p for TTL.
func (c *ProfileCache) Set(ctx context.Context, p domain.Profile) {
	if c == nil || c.Cache == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.Cache.Set(ctx, profileKey(p.ID), raw, c.TTL); err != nil {
		slogx.FromContext(ctx).Warn("profile cache write failed", slog.String("user_id", p.ID), slog.Any("error", err))
	}
}

// Invalidate drops the cached profile of userID.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.Cache == nil {
		return
	}
	if err := c.Cache.Delete(ctx, profileKey(userID)); err != nil {
		slogx.FromContext(ctx).Warn("profile cache invalidate failed", slog.String("user_id", userID), slog.Any("error", err))
	}
}
