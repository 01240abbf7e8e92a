package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest shared secret NewHMAC accepts.
const MinSecretLength = 32

// HMAC signs and verifies tokens with a shared secret (HS256, HS384, HS512).
// It implements both Signer and Verifier.
type HMAC struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	issuer string
	now    func() time.Time
}

// NewHMAC creates an HMAC signer/verifier. An empty alg defaults to HS256.
// Tokens are only accepted when they carry the same issuer (if non-empty).
func NewHMAC(alg string, secret []byte, issuer string) (*HMAC, error) {
	var method *jwt.SigningMethodHMAC
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, alg)
	}

	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	return &HMAC{
		method: method,
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the clock used for expiry checks.
func (h *HMAC) WithClock(now func() time.Time) *HMAC {
	h.now = now
	return h
}

func (h *HMAC) Alg() string { return h.method.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (h *HMAC) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(h.method, claims).SignedString(h.secret)
}

// Verify checks the signature first, then issuer and expiry against the
// configured clock. Signature failures (including a foreign algorithm) are
// reported as ErrInvalidSig, never as expiry.
func (h *HMAC) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{h.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		}
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryAt(h.now()); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
