package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

func newTestRecommendationService(beers []models.Beer) RecommendationService {
	return NewRecommendationService(&stubCatalog{beers: beers}, zap.NewNop())
}

func TestOrderForTastingLightestFirst(t *testing.T) {
	beers := []models.Beer{
		{ID: "stout", Name: "Stout", Style: "Stout", ABV: 8.0, IBU: intPtr(45)},
		{ID: "lager", Name: "Lager", Style: "Lager", ABV: 4.0, IBU: intPtr(15)},
		{ID: "ipa", Name: "IPA", Style: "IPA", ABV: 6.5, IBU: intPtr(60)},
	}

	ordered := OrderForTasting(beers)
	ids := make([]string, len(ordered))
	for i, b := range ordered {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"lager", "ipa", "stout"}, ids)
}

func TestOrderForTastingNearEqualABVUsesIBU(t *testing.T) {
	beers := []models.Beer{
		{ID: "hoppy", Name: "Hoppy", Style: "Pale Ale", ABV: 5.2, IBU: intPtr(40)},
		{ID: "mild", Name: "Mild", Style: "Amber", ABV: 5.0, IBU: intPtr(20)},
	}

	ordered := OrderForTasting(beers)
	assert.Equal(t, "mild", ordered[0].ID, "within 0.3%% ABV the lower IBU goes first")
	assert.Equal(t, "hoppy", ordered[1].ID)
}

func TestOrderForTastingIsDeterministicAndComplete(t *testing.T) {
	beers := testBeers()
	first := OrderForTasting(beers)
	second := OrderForTasting(beers)
	assert.Equal(t, first, second)
	assert.Len(t, first, len(beers))

	seen := make(map[string]bool)
	for _, b := range first {
		assert.False(t, seen[b.ID], "beer appears once")
		seen[b.ID] = true
	}
}

func TestRankStableDescendingWithTieBreak(t *testing.T) {
	profile := models.PreferenceProfile{PreferredStyles: []string{"IPA"}}
	// Tasting order: lager first, stout second, ipa last.
	tasted := []models.Beer{
		{ID: "lager", Name: "Lager", Style: "Lager", ABV: 4.0, IBU: intPtr(15)},
		{ID: "stout", Name: "Stout", Style: "Stout", ABV: 8.0, IBU: intPtr(45)},
		{ID: "ipa", Name: "IPA", Style: "IPA", ABV: 6.5, IBU: intPtr(60)},
	}

	result := Rank(&profile, tasted)
	require.Len(t, result.Ranking, 3)

	assert.Equal(t, "ipa", result.Ranking[0].Beer.ID)
	assert.InDelta(t, 0.7, result.Ranking[0].Score, 1e-9)
	assert.False(t, result.LowConfidence)

	// Lager and stout tie at 0.5; tasting order breaks the tie.
	assert.Equal(t, "lager", result.Ranking[1].Beer.ID)
	assert.Equal(t, "stout", result.Ranking[2].Beer.ID)
}

func TestRankEmptyProfileIsLowConfidence(t *testing.T) {
	result := Rank(&models.PreferenceProfile{}, testBeers())
	require.Len(t, result.Ranking, 3)
	assert.True(t, result.LowConfidence)
	for _, rb := range result.Ranking {
		assert.Equal(t, 0.5, rb.Score)
		assert.Empty(t, rb.MatchedAttributes)
	}
	// Order falls back to tasting order.
	assert.Equal(t, "ipa-sol", result.Ranking[0].Beer.ID)
}

func TestPredictFavoriteRequiresTwoEvaluations(t *testing.T) {
	svc := newTestRecommendationService(testBeers())
	session := models.NewTastingSession("s1")

	_, err := svc.PredictFavorite(context.Background(), session)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData)

	session.RecordTasted("ipa-sol")
	session.Events["ipa-sol"] = []models.FeedbackEvent{likedEvent("ipa-sol", "citrus")}
	_, err = svc.PredictFavorite(context.Background(), session)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
}

func TestPredictFavoriteRanksEvaluatedBeers(t *testing.T) {
	svc := newTestRecommendationService(testBeers())
	session := models.NewTastingSession("s1")
	session.Profile = models.PreferenceProfile{PreferredStyles: []string{"IPA"}}

	session.RecordTasted("lager-clara")
	session.Events["lager-clara"] = []models.FeedbackEvent{dislikedEvent("lager-clara")}
	session.RecordTasted("ipa-sol")
	session.Events["ipa-sol"] = []models.FeedbackEvent{likedEvent("ipa-sol")}
	session.RecordTasted("stout-noche") // tasted but never evaluated

	result, err := svc.PredictFavorite(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, result.Ranking, 2, "unevaluated beers are excluded")
	assert.Equal(t, "ipa-sol", result.Top().Beer.ID)
	assert.Contains(t, result.Top().MatchedAttributes, "style:IPA")
}

func TestSuggestNextSkipsTasted(t *testing.T) {
	svc := newTestRecommendationService(testBeers())
	session := models.NewTastingSession("s1")

	beer, err := svc.SuggestNext(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "lager-clara", beer.ID, "lightest beer first")

	session.RecordTasted("lager-clara")
	beer, err = svc.SuggestNext(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "ipa-sol", beer.ID)

	session.RecordTasted("ipa-sol")
	session.RecordTasted("stout-noche")
	_, err = svc.SuggestNext(context.Background(), session)
	assert.ErrorIs(t, err, apperrors.ErrAllTasted)
}
