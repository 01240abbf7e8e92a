// Package jwtx signs and verifies the compact JWTs handed out by the
// contacts service: access tokens, email verification links and password
// reset links. All of them share Claims and differ only in Purpose.
package jwtx

import "errors"

type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier checks signature, issuer and expiry. Purpose is left to the
// caller, which knows what kind of token it asked for.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrUnsupported  = errors.New("jwtx: unsupported algorithm")
	ErrWeakSecret   = errors.New("jwtx: signing secret too short")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")

	// ErrPurposeMismatch rejects, for example, a reset token presented as
	// an access token.
	ErrPurposeMismatch = errors.New("jwtx: purpose mismatch")
)
