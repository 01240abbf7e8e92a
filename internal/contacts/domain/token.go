package domain

import "time"

// RefreshToken is the stored half of an opaque refresh token. Only the
// fingerprint is persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConsumedToken records a single-use signed token (by jti) so it cannot be
// redeemed twice before it expires.
type ConsumedToken struct {
	JTI        string
	Purpose    string
	UserID     string
	ExpiresAt  time.Time
	ConsumedAt time.Time
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}
