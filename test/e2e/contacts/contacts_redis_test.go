package contacts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedisCache runs the service against a Redis profile cache on a
// shared Docker network.
func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Remove(ctx) })

	redis, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          "redis:7-alpine",
			ExposedPorts:   []string{"6379/tcp"},
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"redis"}},
			WaitingFor:     wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redis.Terminate(ctx) })

	s := startService(t, map[string]string{
		"CACHE_BACKEND": "redis",
		"REDIS_URL":     "redis://redis:6379/0",
	}, func(req *testcontainers.ContainerRequest) {
		req.Networks = []string{nw.Name}
	})

	ready, err := s.Client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Cache)

	session := s.signup(t, "ada@example.com", "ada")
	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", me.Email)

	// Served from the cache the second time round.
	again, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, me.ID, again.ID)
}
