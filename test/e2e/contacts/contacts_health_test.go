package contacts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s := startService(t, nil)
	ctx := context.Background()

	live, err := s.Client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.NotEmpty(t, live.Version)

	ready, err := s.Client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Cache)
}
