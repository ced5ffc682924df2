package models

// RankedBeer is one entry of a ranking: a tasted beer, its compatibility
// score, and the profile attributes that justified the score.
type RankedBeer struct {
	Beer              Beer     `json:"beer"`
	Score             float64  `json:"score"`
	MatchedAttributes []string `json:"matched_attributes,omitempty"`
}

// RankingResult orders every tasted beer exactly once, descending by score.
// Ties break by tasting order, so results are deterministic.
type RankingResult struct {
	Ranking []RankedBeer `json:"ranking"`

	// LowConfidence is set when the top candidate has no matched
	// attributes: the ranking is still valid but no correlation between
	// stated preferences and any beer was found.
	LowConfidence bool `json:"low_confidence"`
}

// Top returns the highest-ranked beer, or nil for an empty ranking.
func (r *RankingResult) Top() *RankedBeer {
	if len(r.Ranking) == 0 {
		return nil
	}
	return &r.Ranking[0]
}

// FoodSuggestion pairs a food with the reason the pairing works.
type FoodSuggestion struct {
	Food        string `json:"food"`
	Explanation string `json:"explanation"`
}
