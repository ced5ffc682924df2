package services

import (
	"strings"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// Compatibility scoring weights. Every score starts at the neutral midpoint
// and moves by these fixed deltas, then clamps to [0,1]. An empty profile
// therefore scores every beer exactly at the midpoint.
const (
	neutralScore     = 0.5
	styleWeight      = 0.2
	bitternessWeight = 0.1
	alcoholWeight    = 0.1
	flavorTagWeight  = 0.05
)

// Score computes the compatibility of a beer with a preference profile.
// It returns a value in [0,1] together with the names of the profile
// attributes that contributed positively. Disliked flavor tags lower the
// score but never appear in the matched list.
//
// The function is pure: same profile and beer always give the same result.
func Score(profile *models.PreferenceProfile, beer *models.Beer) (float64, []string) {
	score := neutralScore
	var matched []string

	if profile == nil || profile.IsEmpty() {
		return neutralScore, nil
	}

	for _, style := range profile.PreferredStyles {
		if strings.EqualFold(style, beer.Style) {
			score += styleWeight
			matched = append(matched, "style:"+beer.Style)
			break
		}
	}

	if profile.Bitterness != "" {
		if bucket := beer.BitternessBucket(); bucket == profile.Bitterness {
			score += bitternessWeight
			matched = append(matched, "bitterness:"+bucket)
		}
	}

	if profile.AlcoholTolerance != "" {
		if beer.StrengthBucket() == profile.AlcoholTolerance {
			score += alcoholWeight
			matched = append(matched, "alcohol:"+beer.StrengthBucket())
		}
	}

	haystack := strings.ToLower(beer.Name + " " + beer.Style + " " + beer.Description)
	for _, tag := range profile.LikedTags {
		if strings.Contains(haystack, strings.ToLower(tag)) {
			score += flavorTagWeight
			matched = append(matched, "flavor:"+tag)
		}
	}
	for _, tag := range profile.DislikedTags {
		if strings.Contains(haystack, strings.ToLower(tag)) {
			score -= flavorTagWeight
		}
	}

	return clamp01(score), matched
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
