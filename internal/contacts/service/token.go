package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/contacts/pkg/jwtx"
)

// TokenService mints and checks the signed tokens of every flow. The
// Verifier carries its own clock for expiry; Now stamps new tokens.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	Now      func() time.Time
}

// Issue signs a token for subject with the given purpose, valid for ttl.
func (s *TokenService) Issue(subject, purpose string, ttl time.Duration) (string, error) {
	claims := jwtx.NewClaims(subject, purpose, s.Issuer, ttl, s.now())
	tok, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return tok, nil
}

// Verify checks signature, issuer and expiry, then the purpose. Errors are
// the jwtx sentinels (ErrInvalidSig, ErrExpired, ErrPurposeMismatch, ...).
func (s *TokenService) Verify(token, purpose string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if err := claims.ValidatePurpose(purpose); err != nil {
		return jwtx.Claims{}, err
	}
	if claims.Subject == "" {
		return jwtx.Claims{}, jwtx.ErrInvalidClaim
	}
	return claims, nil
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
