package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

const cacheFileName = "beer_catalog.json"

// StoreConfig holds catalog store settings.
type StoreConfig struct {
	// TTL is the freshness threshold; a snapshot older than this triggers
	// a refresh on the next Get.
	TTL time.Duration

	// FetchTimeout bounds a refresh call to the external fetcher. The
	// store never holds its lock while waiting on the fetcher.
	FetchTimeout time.Duration

	// CacheDir persists the last good snapshot across restarts.
	// Empty disables disk persistence.
	CacheDir string
}

// Store holds the current catalog snapshot and implements the cache/TTL/
// fallback policy. Snapshots are replaced atomically under the lock, so a
// concurrent reader sees either the old snapshot entirely or the new one
// entirely, never a mix.
type Store struct {
	cfg     StoreConfig
	fetcher Fetcher
	logger  *zap.Logger

	mu       sync.RWMutex
	snapshot *models.CatalogSnapshot

	// refreshMu serializes refreshes so concurrent stale reads trigger a
	// single fetch. It is never held together with mu during the fetch.
	refreshMu sync.Mutex
}

// NewStore creates a catalog store. If a disk cache from a previous run
// exists it is loaded as the initial (possibly stale) snapshot.
func NewStore(cfg StoreConfig, fetcher Fetcher, logger *zap.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}

	s := &Store{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.Named("catalog"),
	}
	s.loadDiskCache()
	return s
}

// Get returns the current snapshot if its age is below the freshness
// threshold; otherwise it attempts a refresh. A refresh failure is
// reported alongside the fallback snapshot via the wrapped error
// (apperrors.ErrFetchFailed or apperrors.ErrNoDataAvailable).
func (s *Store) Get(ctx context.Context) (models.CatalogSnapshot, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap != nil && snap.Age(time.Now()) < s.cfg.TTL {
		return *snap, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	s.mu.RLock()
	snap = s.snapshot
	s.mu.RUnlock()
	if snap != nil && snap.Source == models.SourceLive && snap.Age(time.Now()) < s.cfg.TTL {
		return *snap, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh invokes the external fetcher regardless of snapshot age. On
// success the stored snapshot is replaced wholesale (source "live"). On
// failure the prior snapshot is retained and returned with source "cached"
// together with ErrFetchFailed; if no snapshot has ever been fetched, an
// empty catalog is returned with ErrNoDataAvailable.
func (s *Store) Refresh(ctx context.Context) (models.CatalogSnapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.refreshLocked(ctx)
}

// refreshLocked performs the fetch and snapshot replacement. Caller holds
// refreshMu.
func (s *Store) refreshLocked(ctx context.Context) (models.CatalogSnapshot, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	beers, err := s.fetcher.Fetch(fetchCtx)
	if err != nil {
		if snap != nil {
			s.logger.Warn("Catalog fetch failed, serving cached snapshot",
				zap.Int("beers", len(snap.Beers)),
				zap.Duration("age", snap.Age(time.Now())),
				zap.Error(err))
			stale := *snap
			stale.Source = models.SourceCached
			return stale, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
		}
		s.logger.Error("Catalog fetch failed with no cached snapshot", zap.Error(err))
		return models.CatalogSnapshot{
			Beers:     []models.Beer{},
			FetchedAt: time.Now(),
			Source:    models.SourceCached,
		}, fmt.Errorf("%w: %v", apperrors.ErrNoDataAvailable, err)
	}

	// A successful fetch with zero entries is a valid snapshot: the source
	// may legitimately list no beers. It replaces the prior cache.
	fresh := &models.CatalogSnapshot{
		Beers:     beers,
		FetchedAt: time.Now(),
		Source:    models.SourceLive,
	}

	s.mu.Lock()
	s.snapshot = fresh
	s.mu.Unlock()

	s.persistDiskCache(fresh)
	s.logger.Info("Catalog snapshot replaced",
		zap.Int("beers", len(beers)))
	return *fresh, nil
}

// Current returns the stored snapshot without triggering a refresh.
// The second result is false if nothing has been fetched yet.
func (s *Store) Current() (models.CatalogSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return models.CatalogSnapshot{}, false
	}
	return *s.snapshot, true
}

// loadDiskCache restores the last persisted snapshot, marked "cached".
func (s *Store) loadDiskCache() {
	if s.cfg.CacheDir == "" {
		return
	}
	path := filepath.Join(s.cfg.CacheDir, cacheFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read catalog disk cache", zap.Error(err))
		}
		return
	}

	var snap models.CatalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("Discarding corrupt catalog disk cache", zap.Error(err))
		return
	}
	snap.Source = models.SourceCached

	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()

	s.logger.Info("Loaded catalog disk cache",
		zap.Int("beers", len(snap.Beers)),
		zap.Duration("age", snap.Age(time.Now())))
}

// persistDiskCache writes the snapshot for stale fallback across restarts.
func (s *Store) persistDiskCache(snap *models.CatalogSnapshot) {
	if s.cfg.CacheDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.CacheDir, 0o755); err != nil {
		s.logger.Warn("Failed to create cache dir", zap.Error(err))
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("Failed to encode catalog cache", zap.Error(err))
		return
	}
	path := filepath.Join(s.cfg.CacheDir, cacheFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warn("Failed to write catalog disk cache", zap.Error(err))
	}
}
