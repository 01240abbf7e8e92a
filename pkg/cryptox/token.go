package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// OpaqueTokenBytes is the entropy of refresh tokens, one-off bootstrap
// tokens and generated development secrets.
const OpaqueTokenBytes = 32

var tokenEncoding = base64.RawURLEncoding

// NewOpaqueToken returns OpaqueTokenBytes of randomness, base64url encoded
// without padding (43 characters).
func NewOpaqueToken() (string, error) {
	var buf [OpaqueTokenBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return tokenEncoding.EncodeToString(buf[:]), nil
}

// HashOpaqueToken is the form an opaque token is stored in. Lookups hash
// the presented token and compare digests.
func HashOpaqueToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenEncoding.EncodeToString(sum[:])
}
