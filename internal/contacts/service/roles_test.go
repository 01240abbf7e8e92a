package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.admin(t)
	e.verifiedUser(t, "ada@example.com", "ada")
	_, user := e.login(t, "ada@example.com")

	_, err := e.Roles.ChangeRole(ctx, user, "root@example.com", "user")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = e.Roles.ChangeRole(ctx, admin, "ada@example.com", "superuser")
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.Roles.ChangeRole(ctx, admin, "ghost@example.com", "admin")
	require.ErrorIs(t, err, ErrNotFound)

	u, err := e.Roles.ChangeRole(ctx, admin, "ADA@example.com", "admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)

	stored, err := e.Store.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, stored.Role)
}
