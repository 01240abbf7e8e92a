package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClaims("user-1", PurposeSession, "contacts", 30*time.Minute, now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "contacts", c.Issuer)
	require.Equal(t, PurposeSession, c.Purpose)
	require.Equal(t, now, c.IssuedAtTime())
	require.Equal(t, now.Add(30*time.Minute), c.ExpiresAtTime())
	require.NotEmpty(t, c.ID)

	other := NewClaims("user-1", PurposeSession, "contacts", time.Minute, now)
	require.NotEqual(t, c.ID, other.ID, "jti must be unique per token")
}

func TestClaims_ValidateIssuer(t *testing.T) {
	c := Claims{}
	c.Issuer = "contacts"

	require.NoError(t, c.ValidateIssuer("contacts"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("someone-else"), ErrIssuer)
}

func TestClaims_ValidatePurpose(t *testing.T) {
	c := Claims{Purpose: PurposeEmailVerification}

	require.NoError(t, c.ValidatePurpose(PurposeEmailVerification))
	require.ErrorIs(t, c.ValidatePurpose(PurposeSession), ErrPurposeMismatch)
}

func TestClaims_ValidateExpiryAt(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClaims("u", PurposeSession, "", time.Hour, now)

	require.NoError(t, c.ValidateExpiryAt(now))
	require.NoError(t, c.ValidateExpiryAt(now.Add(time.Hour)))
	require.ErrorIs(t, c.ValidateExpiryAt(now.Add(time.Hour+time.Second)), ErrExpired)
	require.ErrorIs(t, c.ValidateExpiryAt(now.Add(-time.Second)), ErrNotYetValid)

	require.ErrorIs(t, (&Claims{}).ValidateExpiryAt(now), ErrInvalidClaim)
}
