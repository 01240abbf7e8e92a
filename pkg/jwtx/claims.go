package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token minted for one purpose is never accepted for
// another, so a verification link cannot be replayed as a session.
const (
	PurposeSession           = "session"
	PurposeEmailVerification = "email_verification"
	PurposePasswordReset     = "password_reset"
)

// Claims is the claim set carried by every token the service mints.
type Claims struct {
	jwt.RegisteredClaims

	// Purpose discriminates session tokens from single-use flow tokens.
	Purpose string `json:"purpose"`
}

// NewClaims builds claims for subject valid from now until now+ttl.
func NewClaims(subject, purpose, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Purpose: purpose,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidatePurpose checks the purpose tag.
func (c *Claims) ValidatePurpose(expected string) error {
	if c.Purpose != expected {
		return ErrPurposeMismatch
	}
	return nil
}

// ValidateExpiryAt ensures the token hasn't expired (exp) and isn't used
// before nbf, judged at now.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// IssuedAtTime returns iat, or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns exp, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
