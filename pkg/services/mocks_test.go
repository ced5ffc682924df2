package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/catalog"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

func intPtr(v int) *int { return &v }

// testBeers is the fixture catalog used across service tests.
func testBeers() []models.Beer {
	return []models.Beer{
		{ID: "ipa-sol", Name: "IPA Sol", Style: "IPA", ABV: 6.5, IBU: intPtr(60),
			Description: "Resinous citrus hops over a dry malt base"},
		{ID: "lager-clara", Name: "Lager Clara", Style: "Lager", ABV: 4.0, IBU: intPtr(15),
			Description: "Crisp and clean with a soft grain finish"},
		{ID: "stout-noche", Name: "Stout Noche", Style: "Imperial Stout", ABV: 8.0, IBU: intPtr(45),
			Description: "Roasted coffee and chocolate, full body"},
	}
}

// stubCatalog implements CatalogService over a fixed snapshot.
type stubCatalog struct {
	beers   []models.Beer
	listErr error
}

var _ CatalogService = (*stubCatalog)(nil)

func (s *stubCatalog) List(ctx context.Context) (models.CatalogSnapshot, error) {
	return models.CatalogSnapshot{
		Beers:     s.beers,
		FetchedAt: time.Now(),
		Source:    models.SourceLive,
	}, s.listErr
}

func (s *stubCatalog) GetBeer(ctx context.Context, id string) (*models.Beer, error) {
	for i := range s.beers {
		if s.beers[i].ID == id || strings.EqualFold(s.beers[i].Name, id) {
			return &s.beers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: beer %q", apperrors.ErrNotFound, id)
}

func (s *stubCatalog) GetBeerDetails(ctx context.Context, id string) (*models.BeerDetails, error) {
	beer, err := s.GetBeer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.BeerDetails{Beer: *beer, TastingNotes: beer.Description}, nil
}

func (s *stubCatalog) Refresh(ctx context.Context) (models.CatalogSnapshot, error) {
	return s.List(ctx)
}

// newTestStore builds a real snapshot store over a fixed beer list, for
// services that depend on catalog.Store directly.
func newTestStore(beers []models.Beer) *catalog.Store {
	fetcher := catalog.FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		return beers, nil
	})
	return catalog.NewStore(catalog.StoreConfig{TTL: time.Hour}, fetcher, zap.NewNop())
}

// likedEvent is a shorthand for building feedback fixtures.
func likedEvent(beerID string, tags ...string) models.FeedbackEvent {
	return models.NewFeedbackEvent(beerID, models.StepTaste, models.PolarityLiked, tags, "")
}

func dislikedEvent(beerID string, tags ...string) models.FeedbackEvent {
	return models.NewFeedbackEvent(beerID, models.StepTaste, models.PolarityDisliked, tags, "")
}
