package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// Bucket dimension names used in dimension-prefixed attribute tags.
// A tag like "bitterness:high" is a bucket statement, not a flavor note;
// "style:ipa" is an explicit style statement.
const (
	dimBitterness = "bitterness"
	dimAlcohol    = "alcohol"
	dimBody       = "body"
	dimStyle      = "style"
)

// minEvaluationsForAnalysis is the evaluated-beer threshold below which
// preference analysis reports insufficient data.
const minEvaluationsForAnalysis = 2

// PreferenceService folds feedback events into a session's preference
// profile and answers analysis queries over it.
type PreferenceService interface {
	// RecordFeedback validates the event, appends it to the session log,
	// and folds it into the profile. Returns the updated profile and any
	// conflicts resolved by the most-recent-wins policy. The caller
	// persists the session afterwards.
	RecordFeedback(ctx context.Context, session *models.TastingSession, event models.FeedbackEvent) (*models.PreferenceProfile, []models.Conflict, error)

	// AnalyzePreferences returns the session's profile, or
	// apperrors.ErrInsufficientData when fewer than two beers have been
	// evaluated.
	AnalyzePreferences(ctx context.Context, session *models.TastingSession) (*models.PreferenceProfile, error)
}

type preferenceService struct {
	catalog CatalogService
	logger  *zap.Logger
}

// NewPreferenceService creates a preference service backed by the catalog
// for beer-to-style resolution.
func NewPreferenceService(catalog CatalogService, logger *zap.Logger) PreferenceService {
	return &preferenceService{
		catalog: catalog,
		logger:  logger.Named("preferences"),
	}
}

var _ PreferenceService = (*preferenceService)(nil)

func (s *preferenceService) RecordFeedback(ctx context.Context, session *models.TastingSession, event models.FeedbackEvent) (*models.PreferenceProfile, []models.Conflict, error) {
	if err := event.Validate(); err != nil {
		return nil, nil, err
	}

	beer, err := s.catalog.GetBeer(ctx, event.BeerID)
	if err != nil {
		return nil, nil, fmt.Errorf("record feedback for %q: %w", event.BeerID, err)
	}

	session.RecordTasted(beer.ID)
	session.Events[beer.ID] = append(session.Events[beer.ID], event)

	profile, conflicts := FoldEvent(session.Profile, event, beer.Style)
	session.Profile = profile
	session.Touch()

	if len(conflicts) > 0 {
		for _, c := range conflicts {
			s.logger.Info("Preference updated, most recent statement wins",
				zap.String("session_id", session.ID),
				zap.String("tag", c.Tag),
				zap.String("from", c.From),
				zap.String("to", c.To))
		}
	}

	return &session.Profile, conflicts, nil
}

func (s *preferenceService) AnalyzePreferences(ctx context.Context, session *models.TastingSession) (*models.PreferenceProfile, error) {
	if session.EvaluatedCount() < minEvaluationsForAnalysis {
		return nil, fmt.Errorf("%w: %d of %d required beers evaluated",
			apperrors.ErrInsufficientData, session.EvaluatedCount(), minEvaluationsForAnalysis)
	}
	profile := session.Profile
	return &profile, nil
}

// FoldEvent folds one feedback event into a copy of the profile and returns
// the updated profile together with the conflicts the fold resolved.
//
// The liked and disliked tag sets stay disjoint: a tag restated under the
// opposite polarity is moved, not duplicated, and the transition is recorded
// as a Conflict. Style preferences are only revised by explicit style
// statements ("style:<name>" tags); a disliked beer never poisons a style
// marked preferred earlier. Bucket dimensions track statement counts and
// resolve to the mode, breaking ties toward the most recent statement.
func FoldEvent(profile models.PreferenceProfile, event models.FeedbackEvent, beerStyle string) (models.PreferenceProfile, []models.Conflict) {
	p := profile.Clone()

	var conflicts []models.Conflict

	for _, tag := range event.Tags {
		dim, value, isBucket := splitBucketTag(tag)
		if isBucket {
			if dim == dimStyle {
				conflicts = append(conflicts, foldStyleStatement(&p, value, event.Polarity)...)
			} else {
				foldBucketStatement(&p, dim, value)
			}
			continue
		}

		switch event.Polarity {
		case models.PolarityLiked:
			if removeString(&p.DislikedTags, tag) {
				conflicts = append(conflicts, models.Conflict{
					Tag: tag, From: models.PolarityDisliked, To: models.PolarityLiked,
				})
			}
			appendUnique(&p.LikedTags, tag)
		case models.PolarityDisliked:
			if removeString(&p.LikedTags, tag) {
				conflicts = append(conflicts, models.Conflict{
					Tag: tag, From: models.PolarityLiked, To: models.PolarityDisliked,
				})
			}
			appendUnique(&p.DislikedTags, tag)
		}
	}

	// A liked evaluation marks the beer's style preferred. Dislikes do not
	// unmark it: only an explicit style statement revises styles.
	if event.Polarity == models.PolarityLiked && beerStyle != "" {
		appendUniqueFold(&p.PreferredStyles, beerStyle)
	}

	return p, conflicts
}

// splitBucketTag recognizes dimension-prefixed tags ("bitterness:high").
func splitBucketTag(tag string) (dim, value string, ok bool) {
	parts := strings.SplitN(tag, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	dim = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	switch dim {
	case dimBitterness, dimAlcohol, dimBody, dimStyle:
		return dim, value, value != ""
	}
	return "", "", false
}

// foldStyleStatement applies an explicit style statement.
func foldStyleStatement(p *models.PreferenceProfile, style, polarity string) []models.Conflict {
	switch polarity {
	case models.PolarityLiked:
		appendUniqueFold(&p.PreferredStyles, style)
	case models.PolarityDisliked:
		if removeStringFold(&p.PreferredStyles, style) {
			return []models.Conflict{{
				Tag: dimStyle + ":" + strings.ToLower(style),
				From: models.PolarityLiked, To: models.PolarityDisliked,
			}}
		}
	}
	return nil
}

// foldBucketStatement records one bucket vote and recomputes the mode.
// Each statement gets its own recency stamp, so two values stated in the
// same event still resolve deterministically: the later one wins the tie.
func foldBucketStatement(p *models.PreferenceProfile, dim, value string) {
	if !validBucketValue(dim, value) {
		return
	}
	p.FoldSeq++
	if p.BucketVotes == nil {
		p.BucketVotes = make(map[string]map[string]int)
	}
	if p.BucketRecency == nil {
		p.BucketRecency = make(map[string]map[string]int)
	}
	if p.BucketVotes[dim] == nil {
		p.BucketVotes[dim] = make(map[string]int)
	}
	if p.BucketRecency[dim] == nil {
		p.BucketRecency[dim] = make(map[string]int)
	}

	p.BucketVotes[dim][value]++
	p.BucketRecency[dim][value] = p.FoldSeq

	mode := bucketMode(p.BucketVotes[dim], p.BucketRecency[dim])
	switch dim {
	case dimBitterness:
		p.Bitterness = mode
	case dimAlcohol:
		p.AlcoholTolerance = mode
	case dimBody:
		p.Body = mode
	}
}

// bucketMode returns the most-voted value; ties break toward the value
// stated most recently.
func bucketMode(votes, recency map[string]int) string {
	best := ""
	for value, count := range votes {
		if best == "" {
			best = value
			continue
		}
		switch {
		case count > votes[best]:
			best = value
		case count == votes[best] && recency[value] > recency[best]:
			best = value
		}
	}
	return best
}

func validBucketValue(dim, value string) bool {
	switch dim {
	case dimBitterness:
		return value == models.BitternessLow || value == models.BitternessMedium || value == models.BitternessHigh
	case dimAlcohol:
		return value == models.StrengthLight || value == models.StrengthModerate || value == models.StrengthStrong
	case dimBody:
		return value == models.BodyLight || value == models.BodyMedium || value == models.BodyFull
	}
	return false
}

func appendUnique(list *[]string, s string) {
	for _, v := range *list {
		if v == s {
			return
		}
	}
	*list = append(*list, s)
}

// appendUniqueFold appends case-insensitively (styles keep catalog casing).
func appendUniqueFold(list *[]string, s string) {
	for _, v := range *list {
		if strings.EqualFold(v, s) {
			return
		}
	}
	*list = append(*list, s)
}

func removeString(list *[]string, s string) bool {
	for i, v := range *list {
		if v == s {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

func removeStringFold(list *[]string, s string) bool {
	for i, v := range *list {
		if strings.EqualFold(v, s) {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
