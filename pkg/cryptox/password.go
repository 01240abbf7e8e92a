package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrPasswordMismatch is returned by VerifyPassword when the password is wrong.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrInvalidHash is wrapped by VerifyPassword when the stored hash is unusable.
	ErrInvalidHash = errors.New("invalid hash format")
)

// HashPassword generates a PHC-format Argon2id hash string including salt and parameters.
// The process-wide pepper is appended to the password before hashing.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id hash.
// It returns ErrPasswordMismatch for a wrong password and an error wrapping
// ErrInvalidHash when encodedHash cannot be parsed.
func VerifyPassword(password, encodedHash string) error {
	p, err := parsePHC(encodedHash)
	if err != nil {
		return err
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		p.salt,
		p.iterations,
		p.memory,
		p.parallelism,
		uint32(len(p.hash)), // #nosec G115 - If this overflows we have bigger problems
	)

	if subtle.ConstantTimeCompare(computed, p.hash) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

type phcParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// parsePHC splits $argon2id$v=19$m=X,t=Y,p=Z$salt$hash into its parameters.
func parsePHC(encoded string) (phcParams, error) {
	var p phcParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, fmt.Errorf("%w: expected 6 parts", ErrInvalidHash)
	}
	if parts[1] != "argon2id" {
		return p, fmt.Errorf("%w: not argon2id", ErrInvalidHash)
	}
	if parts[2] != "v=19" {
		return p, fmt.Errorf("%w: wrong version", ErrInvalidHash)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, fmt.Errorf("%w: failed to parse parameters: %v", ErrInvalidHash, err)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, fmt.Errorf("%w: failed to decode salt: %v", ErrInvalidHash, err)
	}
	if p.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, fmt.Errorf("%w: failed to decode hash: %v", ErrInvalidHash, err)
	}
	if len(p.hash) == 0 {
		return p, fmt.Errorf("%w: empty hash", ErrInvalidHash)
	}

	return p, nil
}

// GeneratePassword returns a random 16 character alphanumeric password. The
// admin CLI uses it when an operator asks for a generated credential.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
