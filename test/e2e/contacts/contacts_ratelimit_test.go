package contacts_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
)

// TestRateLimit_Me checks the default strict profile (5 per minute) on the
// profile endpoint.
func TestRateLimit_Me(t *testing.T) {
	s := startService(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "5",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "5",
	})
	ctx := context.Background()
	session := s.signup(t, "ada@example.com", "ada")

	for range 5 {
		_, err := session.Me(ctx)
		require.NoError(t, err)
	}

	_, err := session.Me(ctx)
	var apiErr *contactsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected an API error, got %v", err)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, contactsdk.ErrorCodeRateLimited, apiErr.Code)
}
