package app

import (
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/contacts/pkg/cryptox"
	"github.com/aussiebroadwan/contacts/pkg/jwtx"
)

// ErrMissingSecret is returned outside dev when SECRET_KEY is not set.
var ErrMissingSecret = errors.New("SECRET_KEY is required outside the dev environment")

// InitSigner builds the HMAC signer/verifier shared by every token purpose.
//
// In dev an unset SECRET_KEY is replaced by a random one, so every restart
// invalidates all outstanding tokens. Other environments must configure a
// key of at least jwtx.MinSecretLength bytes.
func InitSigner(cfg Config, logger *slog.Logger) (*jwtx.HMAC, error) {
	secret := cfg.SecretKey
	if secret == "" {
		if !cfg.IsDev() {
			return nil, ErrMissingSecret
		}

		generated, err := cryptox.NewOpaqueToken()
		if err != nil {
			return nil, err
		}
		secret = generated
		logger.Warn("SECRET_KEY not set, using an ephemeral key; tokens will not survive a restart")
	}

	return jwtx.NewHMAC(cfg.TokenAlgorithm, []byte(secret), cfg.TokenIssuer)
}
