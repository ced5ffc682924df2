//go:build integration

package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return host + ":" + port.Port()
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, IdleTimeout: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	session := models.NewTastingSession("s1")
	session.Profile.LikedTags = []string{"citrus"}
	session.RecordTasted("ipa-sol")
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"citrus"}, got.Profile.LikedTags)
	assert.True(t, got.HasTasted("ipa-sol"))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestRedisStoreIdleExpiry(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, IdleTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, models.NewTastingSession("s1")))
	time.Sleep(1500 * time.Millisecond)

	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
