package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/cryptox"
	"github.com/aussiebroadwan/contacts/pkg/idx"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService creates the first admin of an empty system.
type BootstrapService struct {
	Store store.Store
	Token string // pre-configured bootstrap token; empty disables bootstrap
	Now   func() time.Time
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates a verified admin when no user exists yet and token
// matches the configured one. It returns the new user's id.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (string, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, _ := s.IsBootstrapped(ctx); bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", ErrBootstrapAlready
	}

	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return "", ErrBootstrapUnauthorized
	}

	in := RegisterInput{
		Email:    normalizeEmail(req.Email),
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}
	if err := validateInput(in); err != nil {
		return "", err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return "", err
	}

	now := clock(s.Now)
	admin := domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The emptiness check is repeated inside the transaction so two racing
	// bootstraps cannot both succeed.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			l.Error("failed to create admin user", slog.String("admin_user_id", admin.ID), slog.Any("error", err))
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", admin.ID))
	return admin.ID, nil
}

// clock reads now, or the wall clock when now is nil, in UTC.
func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
