package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// abvNearEqual is the ABV difference below which two beers are considered
// equally strong for tasting-order purposes, letting IBU decide instead.
const abvNearEqual = 0.3

// RecommendationService ranks tasted beers against the preference profile
// and plans the tasting order over the remaining catalog.
type RecommendationService interface {
	// PredictFavorite ranks every evaluated beer by compatibility with the
	// session profile, best first. Requires at least two evaluated beers,
	// otherwise apperrors.ErrInsufficientData.
	PredictFavorite(ctx context.Context, session *models.TastingSession) (*models.RankingResult, error)

	// SuggestNext returns the next untasted beer in tasting order, or
	// apperrors.ErrAllTasted when the catalog is exhausted.
	SuggestNext(ctx context.Context, session *models.TastingSession) (*models.Beer, error)

	// TastingOrder returns the catalog sorted lightest to most intense.
	TastingOrder(ctx context.Context) ([]models.Beer, error)
}

type recommendationService struct {
	catalog CatalogService
	logger  *zap.Logger
}

// NewRecommendationService creates a recommendation service over the catalog.
func NewRecommendationService(catalog CatalogService, logger *zap.Logger) RecommendationService {
	return &recommendationService{
		catalog: catalog,
		logger:  logger.Named("recommendations"),
	}
}

var _ RecommendationService = (*recommendationService)(nil)

// Rank scores each beer against the profile and orders the result descending
// by score. The sort is stable over the input order, so tied scores keep the
// order the beers were tasted in. Each input beer appears exactly once.
func Rank(profile *models.PreferenceProfile, tasted []models.Beer) models.RankingResult {
	ranking := make([]models.RankedBeer, 0, len(tasted))
	for _, beer := range tasted {
		score, matched := Score(profile, &beer)
		ranking = append(ranking, models.RankedBeer{
			Beer:              beer,
			Score:             score,
			MatchedAttributes: matched,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})

	result := models.RankingResult{Ranking: ranking}
	if top := result.Top(); top != nil && len(top.MatchedAttributes) == 0 {
		result.LowConfidence = true
	}
	return result
}

func (s *recommendationService) PredictFavorite(ctx context.Context, session *models.TastingSession) (*models.RankingResult, error) {
	if session.EvaluatedCount() < minEvaluationsForAnalysis {
		return nil, fmt.Errorf("%w: %d of %d required beers evaluated",
			apperrors.ErrInsufficientData, session.EvaluatedCount(), minEvaluationsForAnalysis)
	}

	snap, err := s.catalog.List(ctx)
	if err != nil && len(snap.Beers) == 0 {
		return nil, err
	}

	// Evaluated beers in tasting order; beers that have dropped out of the
	// catalog since they were tasted are skipped.
	tasted := make([]models.Beer, 0, len(session.Tasted))
	for _, id := range session.Tasted {
		if len(session.Events[id]) == 0 {
			continue
		}
		if beer, ok := snap.FindByID(id); ok {
			tasted = append(tasted, *beer)
		}
	}

	result := Rank(&session.Profile, tasted)
	if result.LowConfidence {
		s.logger.Info("Prediction has no attribute support",
			zap.String("session_id", session.ID),
			zap.Int("evaluated", len(tasted)))
	}
	return &result, nil
}

func (s *recommendationService) SuggestNext(ctx context.Context, session *models.TastingSession) (*models.Beer, error) {
	ordered, err := s.TastingOrder(ctx)
	if err != nil {
		return nil, err
	}

	for i := range ordered {
		if !session.HasTasted(ordered[i].ID) {
			return &ordered[i], nil
		}
	}
	return nil, apperrors.ErrAllTasted
}

func (s *recommendationService) TastingOrder(ctx context.Context) ([]models.Beer, error) {
	snap, err := s.catalog.List(ctx)
	if err != nil && len(snap.Beers) == 0 {
		return nil, err
	}
	return OrderForTasting(snap.Beers), nil
}

// OrderForTasting sorts beers lightest to most intense so earlier pours do
// not blunt the palate for later ones. ABV ascending is the primary key;
// when two beers are within 0.3% ABV of each other, lower IBU goes first.
// Remaining ties keep styles grouped by their first occurrence in the input,
// and the sort is stable, so the order is deterministic for a given catalog.
func OrderForTasting(beers []models.Beer) []models.Beer {
	ordered := make([]models.Beer, len(beers))
	copy(ordered, beers)

	styleFirst := make(map[string]int)
	for i, b := range beers {
		key := strings.ToLower(b.Style)
		if _, ok := styleFirst[key]; !ok {
			styleFirst[key] = i
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if math.Abs(a.ABV-b.ABV) > abvNearEqual {
			return a.ABV < b.ABV
		}
		ia, ib := ibuOrZero(a.IBU), ibuOrZero(b.IBU)
		if ia != ib {
			return ia < ib
		}
		return styleFirst[strings.ToLower(a.Style)] < styleFirst[strings.ToLower(b.Style)]
	})
	return ordered
}

func ibuOrZero(ibu *int) int {
	if ibu == nil {
		return 0
	}
	return *ibu
}
