package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

func fixtureBeers() []models.Beer {
	ibu := 18
	return []models.Beer{
		{ID: "lager-clara", Name: "Lager Clara", Style: "Lager", ABV: 4.2, IBU: &ibu},
	}
}

func TestStoreGetServesFreshSnapshotWithoutRefetch(t *testing.T) {
	var calls atomic.Int32
	fetcher := FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		calls.Add(1)
		return fixtureBeers(), nil
	})
	store := NewStore(StoreConfig{TTL: time.Hour}, fetcher, zap.NewNop())

	snap, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceLive, snap.Source)
	assert.Len(t, snap.Beers, 1)

	for i := 0; i < 5; i++ {
		_, err := store.Get(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load(), "fresh snapshot is served from memory")
}

func TestStoreFallsBackToCachedOnFetchFailure(t *testing.T) {
	var fail atomic.Bool
	fetcher := FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		if fail.Load() {
			return nil, fmt.Errorf("connection refused")
		}
		return fixtureBeers(), nil
	})
	store := NewStore(StoreConfig{TTL: time.Hour}, fetcher, zap.NewNop())

	_, err := store.Get(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	snap, err := store.Refresh(context.Background())
	require.ErrorIs(t, err, apperrors.ErrFetchFailed)
	assert.Equal(t, models.SourceCached, snap.Source, "prior snapshot served as fallback")
	assert.Len(t, snap.Beers, 1)

	// The stored snapshot is intact for later reads.
	current, ok := store.Current()
	require.True(t, ok)
	assert.Len(t, current.Beers, 1)
}

func TestStoreColdStartFailureIsNoData(t *testing.T) {
	fetcher := FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		return nil, fmt.Errorf("connection refused")
	})
	store := NewStore(StoreConfig{TTL: time.Hour}, fetcher, zap.NewNop())

	snap, err := store.Get(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNoDataAvailable)
	assert.Empty(t, snap.Beers)
}

func TestStoreEmptySuccessReplacesSnapshot(t *testing.T) {
	var empty atomic.Bool
	fetcher := FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		if empty.Load() {
			return []models.Beer{}, nil
		}
		return fixtureBeers(), nil
	})
	store := NewStore(StoreConfig{TTL: time.Hour}, fetcher, zap.NewNop())

	_, err := store.Get(context.Background())
	require.NoError(t, err)

	empty.Store(true)
	snap, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Beers, "a successful empty fetch is a valid snapshot")
	assert.Equal(t, models.SourceLive, snap.Source)
}

func TestStoreDiskCacheSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	fetcher := FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		return fixtureBeers(), nil
	})
	store := NewStore(StoreConfig{TTL: time.Hour, CacheDir: dir}, fetcher, zap.NewNop())
	_, err := store.Get(context.Background())
	require.NoError(t, err)

	// A new store with a failing fetcher finds the persisted snapshot and
	// serves it as stale fallback.
	failing := FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		return nil, fmt.Errorf("site down")
	})
	restarted := NewStore(StoreConfig{TTL: time.Nanosecond, CacheDir: dir}, failing, zap.NewNop())

	snap, err := restarted.Get(context.Background())
	require.ErrorIs(t, err, apperrors.ErrFetchFailed)
	assert.Equal(t, models.SourceCached, snap.Source)
	assert.Len(t, snap.Beers, 1)
}

func TestStoreRefreshAfterTTLExpiry(t *testing.T) {
	var calls atomic.Int32
	fetcher := FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		calls.Add(1)
		return fixtureBeers(), nil
	})
	store := NewStore(StoreConfig{TTL: 50 * time.Millisecond}, fetcher, zap.NewNop())

	_, err := store.Get(context.Background())
	require.NoError(t, err)
	time.Sleep(80 * time.Millisecond)

	_, err = store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "stale snapshot triggers a refetch")
}
