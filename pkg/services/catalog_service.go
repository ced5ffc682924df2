// Package services holds the engine's business logic: catalog access,
// preference folding, compatibility scoring, ranking, tasting order,
// pairings, and sales assistance. Services depend on interfaces and return
// models; transport concerns stay in handlers and mcp.
package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/catalog"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// CatalogService exposes the beer catalog to the rest of the engine.
type CatalogService interface {
	// List returns the current snapshot, refreshing it when stale. When the
	// refresh fails, the returned snapshot is the cached fallback and err
	// wraps apperrors.ErrFetchFailed (or ErrNoDataAvailable when no snapshot
	// has ever been fetched).
	List(ctx context.Context) (models.CatalogSnapshot, error)

	// GetBeer returns one catalog entry by id, or apperrors.ErrNotFound.
	GetBeer(ctx context.Context, id string) (*models.Beer, error)

	// GetBeerDetails returns the enriched view of one beer.
	GetBeerDetails(ctx context.Context, id string) (*models.BeerDetails, error)

	// Refresh forces a fetch regardless of snapshot age.
	Refresh(ctx context.Context) (models.CatalogSnapshot, error)
}

type catalogService struct {
	store    *catalog.Store
	pairings PairingService
	logger   *zap.Logger
}

// NewCatalogService creates a catalog service over the snapshot store.
// The pairing service enriches beer details; it may be nil in tests.
func NewCatalogService(store *catalog.Store, pairings PairingService, logger *zap.Logger) CatalogService {
	return &catalogService{
		store:    store,
		pairings: pairings,
		logger:   logger.Named("catalog-service"),
	}
}

var _ CatalogService = (*catalogService)(nil)

func (s *catalogService) List(ctx context.Context) (models.CatalogSnapshot, error) {
	return s.store.Get(ctx)
}

func (s *catalogService) GetBeer(ctx context.Context, id string) (*models.Beer, error) {
	snap, err := s.store.Get(ctx)
	if err != nil && len(snap.Beers) == 0 {
		return nil, err
	}

	if beer, ok := snap.FindByID(id); ok {
		return beer, nil
	}

	// Accept a beer name where an id was expected; the LLM frequently
	// passes the display name back.
	if beer, ok := snap.FindByID(catalog.Slug(id)); ok {
		return beer, nil
	}
	for i := range snap.Beers {
		if strings.EqualFold(snap.Beers[i].Name, id) {
			return &snap.Beers[i], nil
		}
	}

	return nil, fmt.Errorf("%w: beer %q", apperrors.ErrNotFound, id)
}

func (s *catalogService) GetBeerDetails(ctx context.Context, id string) (*models.BeerDetails, error) {
	beer, err := s.GetBeer(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &models.BeerDetails{
		Beer:         *beer,
		TastingNotes: beer.Description,
	}
	if s.pairings != nil {
		for _, suggestion := range s.pairings.PairingsFor(*beer) {
			details.FoodPairings = append(details.FoodPairings, suggestion.Food)
		}
	}
	return details, nil
}

func (s *catalogService) Refresh(ctx context.Context) (models.CatalogSnapshot, error) {
	snap, err := s.store.Refresh(ctx)
	if err != nil {
		s.logger.Warn("Forced catalog refresh failed",
			zap.String("source", snap.Source),
			zap.Error(err))
	}
	return snap, err
}
