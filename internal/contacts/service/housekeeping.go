package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/cachex"
)

// HousekeepingService prunes rows that can never be used again: expired
// refresh tokens and consumed reset tokens past their expiry. With the
// in-memory cache it also sweeps expired profile entries, which Memory
// otherwise only drops on read.
type HousekeepingService struct {
	Store    store.Store
	Cache    cachex.Cache
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(st store.Store, cache cachex.Cache, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{Store: st, Cache: cache, Logger: logger, Interval: interval}
}

// Run cleans up once, then every Interval until ctx is cancelled.
func (s *HousekeepingService) Run(ctx context.Context) {
	s.Logger.Info("housekeeping started", "interval", s.Interval)
	defer s.Logger.Info("housekeeping stopped")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		s.Cleanup(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cleanup makes one pass. A failing step is logged and does not stop the
// others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := clock(s.Now)
	attrs := make([]any, 0, 6)

	if n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now); err != nil {
		s.Logger.Error("prune refresh tokens", "error", err)
	} else {
		attrs = append(attrs, "refresh_tokens", n)
	}

	if n, err := s.Store.ConsumedTokens().DeleteExpiredConsumedTokens(ctx, now); err != nil {
		s.Logger.Error("prune consumed tokens", "error", err)
	} else {
		attrs = append(attrs, "consumed_tokens", n)
	}

	if m, ok := s.Cache.(*cachex.Memory); ok {
		attrs = append(attrs, "cache_entries", m.Sweep())
	}

	s.Logger.Info("housekeeping pass", attrs...)
}
