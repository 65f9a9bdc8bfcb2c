//go:build integration

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"animalsquad/internal/auth"
	"animalsquad/internal/cache"
)

// setupRedis starts a Redis testcontainer and returns a connected cache client.
func setupRedis(t *testing.T) *cache.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := cache.New(endpoint, "", 0)
	t.Cleanup(func() { _ = client.Close() })
	require.Eventually(t, func() bool { return client.Ping(ctx) == nil }, 30*time.Second, time.Second)
	return client
}

func TestTokenStore(t *testing.T) {
	client := setupRedis(t)
	store := auth.NewTokenStore(client)
	ctx := context.Background()

	t.Run("refresh token lifecycle", func(t *testing.T) {
		require.NoError(t, store.StoreRefreshToken(ctx, "fido1", "refresh-1", time.Minute))

		raw, err := client.Get(ctx, "RT:fido1")
		require.NoError(t, err)
		assert.Equal(t, "refresh-1", string(raw))

		got, err := store.GetRefreshToken(ctx, "fido1")
		require.NoError(t, err)
		assert.Equal(t, "refresh-1", got)

		require.NoError(t, store.DeleteRefreshToken(ctx, "fido1"))
		got, err = store.GetRefreshToken(ctx, "fido1")
		require.NoError(t, err)
		assert.Empty(t, got)

		// Deleting an absent key is a no-op.
		assert.NoError(t, store.DeleteRefreshToken(ctx, "fido1"))
	})

	t.Run("refresh token expires", func(t *testing.T) {
		require.NoError(t, store.StoreRefreshToken(ctx, "rex", "refresh-2", time.Second))
		assert.Eventually(t, func() bool {
			got, err := store.GetRefreshToken(ctx, "rex")
			return err == nil && got == ""
		}, 5*time.Second, 200*time.Millisecond)
	})

	t.Run("access token blacklist", func(t *testing.T) {
		revoked, err := store.IsAccessTokenBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, store.BlacklistAccessToken(ctx, "jti-1", time.Minute))

		revoked, err = store.IsAccessTokenBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		raw, err := client.Get(ctx, "blacklist:access_token:jti-1")
		require.NoError(t, err)
		assert.NotNil(t, raw)
	})
}
