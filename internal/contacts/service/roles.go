package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

type RolesService struct {
	Store store.Store
	Now   func() time.Time
}

// ChangeRole sets the role of the user with the given email. Only admins
// may call it. The target's cached profile is left alone and may report the
// previous role until its entry expires.
func (s *RolesService) ChangeRole(ctx context.Context, p domain.Principal, email, role string) (domain.User, error) {
	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return domain.User{}, err
	}

	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.User{}, invalid("role", "must be one of user, admin")
	}
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, invalid("email", "required")
	}

	u, err := s.Store.Users().UpdateRoleByEmail(ctx, email, r, clock(s.Now))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("role changed",
		slog.String("target_user_id", u.ID),
		slog.String("role", string(r)),
	)
	return u, nil
}
