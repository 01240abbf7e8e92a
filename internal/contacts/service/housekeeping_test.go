package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/pkg/cryptox"
	"github.com/aussiebroadwan/contacts/pkg/idx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

func TestHousekeeping_Cleanup(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u := e.verifiedUser(t, "ada@example.com", "ada")
	now := e.Clock.Now()

	expired := domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: cryptox.HashOpaqueToken("old"),
		ExpiresAt: now.Add(-time.Minute), CreatedAt: now, UpdatedAt: now,
	}
	live := domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: cryptox.HashOpaqueToken("live"),
		ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, e.Store.RefreshTokens().CreateRefreshToken(ctx, expired))
	require.NoError(t, e.Store.RefreshTokens().CreateRefreshToken(ctx, live))
	require.NoError(t, e.Store.ConsumedTokens().ConsumeToken(ctx, domain.ConsumedToken{
		JTI: "gone", Purpose: "password_reset", UserID: u.ID, ExpiresAt: now.Add(-time.Minute), ConsumedAt: now,
	}))
	require.NoError(t, e.Memory.Set(ctx, "user:stale", []byte("{}"), time.Second))

	e.Clock.Advance(2 * time.Second)
	hk := NewHousekeepingService(e.Store, e.Memory, slogx.Discard(), 0)
	hk.Now = e.Clock.Now
	require.Equal(t, time.Hour, hk.Interval)
	hk.Cleanup(ctx)

	_, err := e.Store.RefreshTokens().GetRefreshTokenByHash(ctx, expired.TokenHash)
	require.Error(t, err)
	_, err = e.Store.RefreshTokens().GetRefreshTokenByHash(ctx, live.TokenHash)
	require.NoError(t, err)

	// The jti is free again once its row is gone.
	require.NoError(t, e.Store.ConsumedTokens().ConsumeToken(ctx, domain.ConsumedToken{
		JTI: "gone", Purpose: "password_reset", UserID: u.ID, ExpiresAt: now.Add(time.Hour), ConsumedAt: now,
	}))
	require.Zero(t, e.Memory.Len())
}

func TestHousekeeping_RunStopsWithContext(t *testing.T) {
	e := newTestEnv(t)
	hk := NewHousekeepingService(e.Store, nil, slogx.Discard(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hk.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("housekeeping did not stop after cancel")
	}
}
